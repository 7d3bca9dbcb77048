// Package affiliate turns detected product signals into marketplace search links.
package affiliate

import (
	"strings"

	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/signals"
)

const DefaultMaxItems = 6

// QueryItem pairs the phrase shown in the reply with its vehicle-qualified search.
type QueryItem struct {
	Display string `json:"display"`
	Query   string `json:"query"`
}

// BuildQueryItems unions the signals of the user message and the model reply.
// User signals come first. Items are deduplicated case-insensitively, items
// contained in a longer item are dropped, and the result is capped at limit.
func BuildQueryItems(userText, modelText string, vehicle fitment.Profile, limit int) []QueryItem {
	if limit <= 0 {
		limit = DefaultMaxItems
	}

	var displays []string
	seen := make(map[string]struct{})
	for _, text := range []string{userText, modelText} {
		for _, sig := range signals.Detect(text) {
			key := strings.ToLower(sig.Display)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			displays = append(displays, sig.Display)
		}
	}

	prefix := vehicle.Vehicle()
	out := make([]QueryItem, 0, min(limit, len(displays)))
	for _, d := range displays {
		if len(out) == limit {
			break
		}
		if containedInLonger(d, displays) {
			continue
		}
		q := d
		if prefix != "" {
			q = prefix + " " + d
		}
		out = append(out, QueryItem{Display: d, Query: q})
	}
	return out
}

func containedInLonger(d string, all []string) bool {
	lower := strings.ToLower(d)
	for _, other := range all {
		if len(other) <= len(d) {
			continue
		}
		if strings.Contains(strings.ToLower(other), lower) {
			return true
		}
	}
	return false
}
