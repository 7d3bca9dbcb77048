package chat

import (
	"strings"

	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/gate"
	"github.com/antoniostano/fitbot/internal/session"
)

const basePrompt = "You are a friendly truck parts assistant. Keep answers short and practical. " +
	"When you recommend parts, name specific products and brands. " +
	"Do not include links or URLs; links are added for you."

func systemPrompt(v fitment.Profile, d gate.Decision) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if desc := v.Describe(); desc != "" {
		b.WriteString("\nThe user's truck: " + desc + ". Only suggest parts that fit it.")
	}
	if missing := v.MissingCore(); len(missing) > 0 && d.Intent == gate.IntentBuying {
		b.WriteString("\nFitment is not confirmed: the user has not shared the truck's " + fitment.JoinFields(missing) +
			". Say that fit depends on it, but do not ask again.")
	}
	if d.AcceptedOffer == session.OfferParts {
		b.WriteString("\nThe user just accepted your offer to suggest parts for the job discussed above. Recommend specific parts for it.")
	}
	return b.String()
}
