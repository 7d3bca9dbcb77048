package gate

import (
	"strings"

	"github.com/antoniostano/fitbot/internal/signals"
	"github.com/antoniostano/fitbot/internal/textrule"
)

type Intent string

const (
	IntentAffirmation   Intent = "affirmation"
	IntentBuying        Intent = "buying"
	IntentInformational Intent = "informational"
	IntentGeneral       Intent = "general"
)

var affirmationRules = textrule.Table{
	textrule.R("affirmation", `^\s*(?:yes|yeah|yea|yep|yup|sure|ok|okay|please|absolutely|definitely|of course|sounds good|go ahead|let's do it|do it|y)(?:[\s,]+(?:please|thanks|thank you|sure))?[\s!.,]*$`),
}

var informationalRules = textrule.Table{
	textrule.R("why", `^\s*(?:so\s+|hey\s*,?\s*)?(?:why|how come)\b`),
	textrule.R("how-to", `^\s*(?:so\s+|hey\s*,?\s*)?how\s+(?:do|does|can|should|would|to|often|long|is|are)\b`),
	textrule.R("what-is", `^\s*(?:so\s+|hey\s*,?\s*)?what(?:\s+(?:is|are|causes|does|do|happens)|'s\s+the\s+difference)\b`),
	textrule.R("explain", `^\s*(?:explain|tell me about|is it (?:ok|safe|normal|bad))\b`),
	textrule.R("diagnose", `\b(?:noise|squeal|squeak|grind(?:ing)?|vibrat\w*|warp\w*|leak\w*|won't|doesn't|shaking)\b`),
}

var purchaseRules = textrule.Table{
	textrule.R("superlative", `\b(?:best|top|recommended)\b`),
	textrule.R("recommend", `\b(?:recommend\w*|suggest\w*|options?|alternatives?)\b`),
	textrule.R("buy", `\b(?:buy|buying|purchase|order|shop\w*|get\s+(?:a|an|some|new)|looking\s+for|in\s+the\s+market)\b`),
	textrule.R("price", `\b(?:price\w*|cost\w*|cheap\w*|afford\w*|budget|deal\w*)\b`),
	textrule.R("fitment", `\b(?:fits?|fitment|compatible|compatibility|will\s+\w+\s+work\s+(?:on|with))\b`),
	textrule.R("which", `\b(?:which|what)\s+(?:\w+\s+){0,3}(?:should|would|do)\s+(?:i|you)\s+(?:get|buy|go\s+with|choose|pick|recommend)\b`),
	textrule.R("need", `\b(?:need|want)\s+(?:a|an|some|new)\b`),
	textrule.R("upgrade", `\b(?:upgrade\w*|replace\s+(?:my|the)|replacement)\b`),
}

// Classify labels message intent. Product mention plus purchase language or no
// informational framing is buying; how/why questions stay informational.
func Classify(message string) Intent {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return IntentGeneral
	}
	if affirmationRules.Matches(msg) {
		return IntentAffirmation
	}
	product := len(signals.DetectCategories(msg)) > 0 || len(signals.DetectBrands(msg)) > 0
	purchase := purchaseRules.Matches(msg)
	informational := informationalRules.Matches(msg)

	switch {
	case product && (purchase || !informational):
		return IntentBuying
	case informational:
		return IntentInformational
	default:
		return IntentGeneral
	}
}

// IsHowTo reports whether message asks how to do or fix something.
func IsHowTo(message string) bool {
	m, ok := informationalRules.First(strings.TrimSpace(message))
	return ok && m.Tag == "how-to"
}
