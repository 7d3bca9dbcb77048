// Package gate decides whether a turn needs a fitment question before the model runs.
package gate

import (
	"time"

	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/session"
)

type Action string

const (
	ActionAsk     Action = "ask"
	ActionProceed Action = "proceed"
)

const DefaultCooldown = 150 * time.Second

const openFitmentQuestion = "Great! What's the year, make, and model of your truck? That way I only point you to parts that fit."

// Decision is the outcome of one gate evaluation.
type Decision struct {
	Action   Action
	Intent   Intent
	Question string
	Missing  []string
	// FollowUp is a soft question appended after the answer.
	FollowUp string
	// AcceptedOffer is the pending offer type the user just said yes to.
	AcceptedOffer string
}

type Gate struct {
	cooldown time.Duration
}

func New(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown}
}

// Decide evaluates message against s, whose vehicle profile has already been
// merged for this turn. It records any question it emits on s.
func (g *Gate) Decide(s *session.Session, message string, now time.Time) Decision {
	intent := Classify(message)
	missing := s.Vehicle.MissingCore()
	d := Decision{Action: ActionProceed, Intent: intent, Missing: missing}

	if intent == IntentAffirmation {
		if offer := s.OpenOffer(now); offer != nil {
			d.AcceptedOffer = offer.Type
		}
		s.PendingOffer = nil
		if len(missing) > 0 && !s.AskCoolingDown(now, g.cooldown) {
			s.MarkFitmentAsked(now)
			d.Action = ActionAsk
			d.Question = openFitmentQuestion
		}
		return d
	}

	if len(missing) == 0 || intent != IntentBuying || s.AskedFitmentOnce {
		return d
	}

	s.MarkFitmentAsked(now)
	if len(missing) >= 2 {
		d.Action = ActionAsk
		d.Question = targetedQuestion(s.Vehicle, missing)
		return d
	}
	d.FollowUp = "If you share your truck's " + missing[0] + ", I can double-check fitment for these."
	return d
}

func targetedQuestion(known fitment.Profile, missing []string) string {
	fields := fitment.JoinFields(missing)
	if v := known.Vehicle(); v != "" {
		return "Got it, a " + v + ". What's the " + fields + "? I want to make sure the parts I suggest actually fit."
	}
	return "Happy to help you pick. What's the " + fields + " of your truck? I want to make sure the parts I suggest actually fit."
}
