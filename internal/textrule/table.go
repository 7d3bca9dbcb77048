// Package textrule evaluates ordered pattern tables against free text.
package textrule

import (
	"regexp"
	"strings"
)

// Rule maps a pattern to the tag it stands for.
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
}

// Match is a single rule hit.
type Match struct {
	Tag   string
	Text  string
	Start int
	End   int
}

// Table is evaluated in declaration order; earlier rules win ties.
type Table []Rule

// R compiles a case-insensitive rule. Panics on a bad pattern, like regexp.MustCompile.
func R(tag, pattern string) Rule {
	return Rule{Tag: tag, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// CaseSensitive compiles a rule that only matches the exact casing given.
func CaseSensitive(tag, pattern string) Rule {
	return Rule{Tag: tag, Pattern: regexp.MustCompile(pattern)}
}

// Words builds a rule matching any of the given phrases on word boundaries.
// Internal whitespace in a phrase tolerates any whitespace run.
func Words(tag string, phrases ...string) Rule {
	alts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.Fields(p)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		alts = append(alts, strings.Join(parts, `\s+`))
	}
	return Bounded(tag, `(?:`+strings.Join(alts, "|")+`)`)
}

// Bounded compiles a case-insensitive rule whose core must not touch a letter or
// digit on either side. The core is reported as the match.
func Bounded(tag, core string) Rule {
	return R(tag, `(?:^|[^\p{L}\p{N}])(`+core+`)(?:$|[^\p{L}\p{N}])`)
}

// Find returns the first hit of r in text.
func (r Rule) Find(text string) (Match, bool) {
	return find(r, text)
}

// First returns the earliest rule (in table order) that matches text.
func (t Table) First(text string) (Match, bool) {
	for _, r := range t {
		if m, ok := find(r, text); ok {
			return m, true
		}
	}
	return Match{}, false
}

// All returns one match per distinct tag, ordered by table position.
func (t Table) All(text string) []Match {
	var out []Match
	seen := make(map[string]struct{}, len(t))
	for _, r := range t {
		if _, dup := seen[r.Tag]; dup {
			continue
		}
		if m, ok := find(r, text); ok {
			seen[r.Tag] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// Tags is All reduced to tag names.
func (t Table) Tags(text string) []string {
	matches := t.All(text)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Tag)
	}
	return out
}

// Matches reports whether any rule hits.
func (t Table) Matches(text string) bool {
	_, ok := t.First(text)
	return ok
}

func find(r Rule, text string) (Match, bool) {
	if r.Pattern == nil {
		return Match{}, false
	}
	loc := r.Pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Match{}, false
	}
	// Prefer the first capture group so boundary guards are excluded from the hit.
	start, end := loc[0], loc[1]
	if len(loc) >= 4 && loc[2] >= 0 {
		start, end = loc[2], loc[3]
	}
	return Match{Tag: r.Tag, Text: text[start:end], Start: start, End: end}, true
}
