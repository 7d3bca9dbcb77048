package session

import (
	"time"

	"github.com/antoniostano/fitbot/internal/fitment"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// OfferParts is the pending offer made after a how-to answer.
const OfferParts = "parts"

// PendingOfferTTL bounds how long an open yes/no offer stays answerable.
const PendingOfferTTL = 10 * time.Minute

// Turn is one chat message kept in the bounded history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PendingOffer is an open follow-up question awaiting a yes/no.
type PendingOffer struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Session holds per-conversation state.
type Session struct {
	ID                      string          `json:"session_id"`
	History                 []Turn          `json:"history"`
	Vehicle                 fitment.Profile `json:"vehicle"`
	AskedFitmentOnce        bool            `json:"asked_fitment_once"`
	LastFitmentAskAt        time.Time       `json:"last_fitment_ask_at"`
	OfferedUpsellAfterHowTo bool            `json:"offered_upsell_after_how_to"`
	PendingOffer            *PendingOffer   `json:"pending_offer,omitempty"`
	StartedAt               time.Time       `json:"started_at"`
	LastActivityAt          time.Time       `json:"last_activity_at"`
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:             id,
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// AppendTurn adds a turn and evicts the oldest ones beyond capacity.
func (s *Session) AppendTurn(role Role, content string, capacity int) {
	s.History = append(s.History, Turn{Role: role, Content: content})
	if capacity > 0 && len(s.History) > capacity {
		drop := len(s.History) - capacity
		kept := make([]Turn, capacity)
		copy(kept, s.History[drop:])
		s.History = kept
	}
}

// MergeVehicle fills unknown vehicle fields from partial and returns the result.
func (s *Session) MergeVehicle(partial fitment.Profile) fitment.Profile {
	s.Vehicle = s.Vehicle.Merge(partial)
	return s.Vehicle
}

// ResetVehicle forgets the vehicle and re-arms the one-time fitment question.
func (s *Session) ResetVehicle() {
	s.Vehicle = fitment.Profile{}
	s.AskedFitmentOnce = false
	s.LastFitmentAskAt = time.Time{}
}

// ApplyVehicle merges what was read from text into the profile. When text
// describes a materially different vehicle the profile is reset first.
func (s *Session) ApplyVehicle(text string, partial fitment.Profile) (fitment.Profile, bool) {
	reset := false
	if fitment.IsVehicleChange(text) && s.Vehicle.Conflicts(partial) {
		s.ResetVehicle()
		reset = true
	}
	return s.MergeVehicle(partial), reset
}

// MarkFitmentAsked records that a fitment question went out at now.
func (s *Session) MarkFitmentAsked(now time.Time) {
	s.AskedFitmentOnce = true
	s.LastFitmentAskAt = now
}

// AskCoolingDown reports whether the last fitment question is younger than cooldown.
func (s *Session) AskCoolingDown(now time.Time, cooldown time.Duration) bool {
	if s.LastFitmentAskAt.IsZero() {
		return false
	}
	return now.Sub(s.LastFitmentAskAt) < cooldown
}

// OpenOffer returns the pending offer if it has not expired.
func (s *Session) OpenOffer(now time.Time) *PendingOffer {
	if s.PendingOffer == nil {
		return nil
	}
	if now.Sub(s.PendingOffer.At) > PendingOfferTTL {
		return nil
	}
	return s.PendingOffer
}

func clone(s *Session) *Session {
	c := *s
	if s.History != nil {
		c.History = append([]Turn(nil), s.History...)
	}
	if s.PendingOffer != nil {
		po := *s.PendingOffer
		c.PendingOffer = &po
	}
	return &c
}
