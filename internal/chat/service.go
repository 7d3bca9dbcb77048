// Package chat runs one chat turn through vehicle extraction, the fitment gate,
// the model call and the link and formatting stages.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/antoniostano/fitbot/internal/affiliate"
	"github.com/antoniostano/fitbot/internal/brain"
	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/gate"
	"github.com/antoniostano/fitbot/internal/memory"
	"github.com/antoniostano/fitbot/internal/observability"
	"github.com/antoniostano/fitbot/internal/session"
)

// ErrMissingSessionID is returned when a turn arrives without a session id.
var ErrMissingSessionID = session.ErrMissingID

type Decision string

const (
	DecisionAsk      Decision = "ask"
	DecisionProceed  Decision = "proceed"
	DecisionFallback Decision = "fallback"
	DecisionInvalid  Decision = "invalid"
)

const (
	FallbackReply     = "Sorry, I couldn't pull up recommendations just now. Could you share your truck's year, make, and model again so I can make sure the parts fit?"
	EmptyMessageReply = "What can I help you find for your truck? Tell me the part you're after along with the year, make, and model."
	upsellOffer       = "Want me to pull up parts that fit your truck for this job?"
)

// Transcript writes are best effort and bounded separately from the turn.
const transcriptTimeout = 2 * time.Second

type TurnRequest struct {
	SessionID string
	Message   string
	Country   string
}

type TurnResponse struct {
	SessionID    string          `json:"session_id"`
	Reply        string          `json:"reply"`
	Decision     Decision        `json:"decision"`
	Vehicle      fitment.Profile `json:"vehicle"`
	Links        int             `json:"links"`
	VehicleReset bool            `json:"vehicle_reset,omitempty"`
}

type Options struct {
	Sessions     *session.Manager
	Brain        brain.Adapter
	Gate         *gate.Gate
	Marketplaces *affiliate.Resolver
	// Transcripts is optional.
	Transcripts memory.Store
	Metrics     *observability.Metrics
	Logger      zerolog.Logger
	MaxLinks    int
}

type Service struct {
	sessions     *session.Manager
	brain        brain.Adapter
	gate         *gate.Gate
	marketplaces *affiliate.Resolver
	transcripts  memory.Store
	metrics      *observability.Metrics
	log          zerolog.Logger
	maxLinks     int
}

func NewService(opts Options) *Service {
	s := &Service{
		sessions:     opts.Sessions,
		brain:        opts.Brain,
		gate:         opts.Gate,
		marketplaces: opts.Marketplaces,
		transcripts:  opts.Transcripts,
		metrics:      opts.Metrics,
		log:          opts.Logger.With().Str("component", "chat").Logger(),
		maxLinks:     opts.MaxLinks,
	}
	if s.gate == nil {
		s.gate = gate.New(gate.DefaultCooldown)
	}
	if s.marketplaces == nil {
		s.marketplaces = affiliate.NewResolver(affiliate.ResolverConfig{})
	}
	if s.brain == nil {
		s.brain = brain.NewMockAdapter()
	}
	if s.maxLinks <= 0 {
		s.maxLinks = affiliate.DefaultMaxItems
	}
	return s
}

// HandleTurn answers one user message. Model failures become FallbackReply;
// errors are only returned for a missing session id, caller cancellation or a
// session store failure.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		return TurnResponse{}, ErrMissingSessionID
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		s.metrics.ObserveTurn(string(DecisionInvalid))
		return TurnResponse{SessionID: id, Reply: EmptyMessageReply, Decision: DecisionInvalid}, nil
	}

	started := time.Now()
	resp := TurnResponse{SessionID: id}
	var transcript []memory.TurnRecord

	err := s.sessions.Do(ctx, id, func(sess *session.Session) error {
		s.metrics.ObserveTurnStage(observability.StageSessionWait, time.Since(started))
		now := s.sessions.Now()
		limit := s.sessions.HistoryLimit()

		gateStart := time.Now()
		vehicle, reset := sess.ApplyVehicle(msg, fitment.Extract(msg))
		if reset {
			s.metrics.ObserveVehicleReset()
		}
		d := s.gate.Decide(sess, msg, now)
		s.metrics.ObserveTurnStage(observability.StageGate, time.Since(gateStart))

		resp.VehicleReset = reset
		sess.AppendTurn(session.RoleUser, msg, limit)

		if d.Action == gate.ActionAsk {
			sess.AppendTurn(session.RoleAssistant, d.Question, limit)
			resp.Reply = d.Question
			resp.Decision = DecisionAsk
			resp.Vehicle = sess.Vehicle
			transcript = s.records(id, msg, d.Question, resp, now)
			return nil
		}

		text, err := s.complete(ctx, sess, d)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Str("session_id", id).Str("provider", s.brain.Name()).Msg("brain call failed")
			s.metrics.ObserveTurnIndicator("fallback_reply")
			sess.AppendTurn(session.RoleAssistant, FallbackReply, limit)
			resp.Reply = FallbackReply
			resp.Decision = DecisionFallback
			resp.Vehicle = sess.Vehicle
			transcript = s.records(id, msg, FallbackReply, resp, now)
			return nil
		}

		reply, links := s.render(msg, text, vehicle, req.Country)

		var extra []string
		if d.FollowUp != "" {
			extra = append(extra, d.FollowUp)
		}
		if links == 0 && d.Intent == gate.IntentInformational && gate.IsHowTo(msg) && !sess.OfferedUpsellAfterHowTo {
			sess.OfferedUpsellAfterHowTo = true
			sess.PendingOffer = &session.PendingOffer{Type: session.OfferParts, At: now}
			extra = append(extra, upsellOffer)
		}
		if len(extra) > 0 {
			tail := strings.Join(extra, "\n")
			reply = joinLines(reply, tail)
			text = joinLines(text, tail)
		}

		// History keeps the plain model text so later prompts carry no markup.
		sess.AppendTurn(session.RoleAssistant, text, limit)
		resp.Reply = reply
		resp.Decision = DecisionProceed
		resp.Vehicle = sess.Vehicle
		resp.Links = links
		transcript = s.records(id, msg, reply, resp, now)
		return nil
	})
	if err != nil {
		return TurnResponse{}, err
	}

	s.metrics.ObserveTurn(string(resp.Decision))
	s.metrics.AddLinks(resp.Links)
	s.metrics.ObserveTurnStage(observability.StageTurnTotal, time.Since(started))
	s.log.Info().
		Str("session_id", id).
		Str("decision", string(resp.Decision)).
		Int("links", resp.Links).
		Bool("vehicle_reset", resp.VehicleReset).
		Msg("turn handled")

	s.saveTranscript(ctx, transcript)
	return resp, nil
}

func (s *Service) complete(ctx context.Context, sess *session.Session, d gate.Decision) (string, error) {
	req := brain.Request{
		SessionID: sess.ID,
		System:    systemPrompt(sess.Vehicle, d),
		History:   toMessages(sess.History),
		Vehicle:   sess.Vehicle.Vehicle(),
	}
	start := time.Now()
	out, err := s.brain.Complete(ctx, req)
	if err == nil && strings.TrimSpace(out.Text) == "" {
		err = brain.ErrEmptyReply
	}
	elapsed := time.Since(start)
	s.metrics.ObserveBrain(s.brain.Name(), elapsed, err)
	s.metrics.ObserveTurnStage(observability.StageBrain, elapsed)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

func (s *Service) records(id, userText, reply string, resp TurnResponse, at time.Time) []memory.TurnRecord {
	if s.transcripts == nil {
		return nil
	}
	vehicle := resp.Vehicle.Vehicle()
	user := memory.NewRecord(id, string(session.RoleUser), userText, at)
	user.Vehicle = vehicle
	assistant := memory.NewRecord(id, string(session.RoleAssistant), reply, at.Add(time.Millisecond))
	assistant.Decision = string(resp.Decision)
	assistant.Vehicle = vehicle
	return []memory.TurnRecord{user, assistant}
}

func (s *Service) saveTranscript(ctx context.Context, records []memory.TurnRecord) {
	if s.transcripts == nil || len(records) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), transcriptTimeout)
	defer cancel()
	for _, r := range records {
		if err := s.transcripts.SaveTurn(ctx, r); err != nil {
			s.log.Warn().Err(err).Str("session_id", r.SessionID).Msg("transcript write failed")
			return
		}
	}
}

func toMessages(history []session.Turn) []brain.Message {
	out := make([]brain.Message, 0, len(history))
	for _, t := range history {
		role := brain.RoleUser
		if t.Role == session.RoleAssistant {
			role = brain.RoleAssistant
		}
		out = append(out, brain.Message{Role: role, Content: t.Content})
	}
	return out
}

func joinLines(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

// Provider names the completion adapter in use.
func (s *Service) Provider() string { return s.brain.Name() }
