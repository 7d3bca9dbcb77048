package linkify

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antoniostano/fitbot/internal/textrule"
)

// Item is a phrase to link and its destination.
type Item struct {
	Name string
	URL  string
}

var (
	boldPattern = regexp.MustCompile(`\*\*([^*\n]+?)\*\*|__([^_\n]+?)__`)
	// A star glued to a letter or digit on its left is arithmetic or a part
	// number, not emphasis.
	italicPattern = regexp.MustCompile(`(^|[^\p{L}\p{N}*])\*([^*\s](?:[^*\n]*?[^*\s])?)\*`)
	headerPattern = regexp.MustCompile(`(?m)^[ \t]{0,3}(?:#{1,6}[ \t]+)+`)
	fencePattern  = regexp.MustCompile("(?m)^[ \\t]*```[^\\n]*\\n?")
	tickPattern   = regexp.MustCompile("`+")
)

var stopTokens = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "for": {}, "with": {}, "of": {},
	"in": {}, "on": {}, "to": {}, "by": {}, "your": {}, "my": {}, "new": {}, "best": {},
}

// Largest number of extra words tolerated between the leading tokens and the
// final token of a name.
const maxGapWords = 5

// StripMarkup removes bold, italic, header and code markers from text outside
// link markup. Markdown images become their alt text. Links are left as they are.
// Stripping its own output changes nothing.
func StripMarkup(text string) string {
	spans := unwrapImages(Split(text))
	before := ""
	for i := range spans {
		if spans[i].Protected {
			before = contextOf(linkText(spans[i].Text), before)
			continue
		}
		spans[i].Text = stripPlain(spans[i].Text, before)
		before = contextOf(spans[i].Text, before)
	}
	return Join(spans)
}

// contextOf reduces the text preceding a plain span to the one character the
// strip patterns can see: a line start, a word character, or anything else.
func contextOf(text, prev string) string {
	if text == "" {
		return prev
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	switch {
	case r == '\n':
		return "\n"
	case r == '*' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return "a"
	default:
		return ">"
	}
}

// stripPlain strips s until it stops changing; every pass that changes s
// shortens it. before is prepended while matching so line-start and
// word-boundary checks see what precedes s.
func stripPlain(s, before string) string {
	for {
		next := stripOnce(before + s)[len(before):]
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	s = fencePattern.ReplaceAllString(s, "")
	s = tickPattern.ReplaceAllString(s, "")
	s = headerPattern.ReplaceAllString(s, "")
	s = boldPattern.ReplaceAllString(s, "$1$2")
	s = italicPattern.ReplaceAllString(s, "$1$2")
	return s
}

// Inject strips superficial markup and wraps the first plain-text occurrence of
// each item in an anchor. Items whose URL or name is already linked are skipped,
// so running Inject on its own output changes nothing. It returns the rewritten
// text and the number of anchors added.
func Inject(text string, items []Item) (string, int) {
	text = StripMarkup(text)
	added := 0
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" || strings.TrimSpace(it.URL) == "" {
			continue
		}
		// Re-split so anchors added for earlier items are protected too.
		spans := Split(text)
		if alreadyLinked(spans, name, it.URL) {
			continue
		}
		next, ok := wrapFirst(spans, name, it.URL)
		if !ok {
			continue
		}
		text = Join(next)
		added++
	}
	return text, added
}

// Anchor renders the link markup used for injected items.
func Anchor(text, url string) string {
	return `<a href="` + html.EscapeString(url) + `" target="_blank" rel="nofollow sponsored noopener">` + text + `</a>`
}

func alreadyLinked(spans []Span, name, url string) bool {
	href := `"` + html.EscapeString(url) + `"`
	target := "(" + url + ")"
	lowerName := strings.ToLower(name)
	for _, s := range spans {
		if !s.Protected {
			continue
		}
		if strings.Contains(s.Text, href) || strings.Contains(s.Text, target) {
			return true
		}
		if strings.Contains(strings.ToLower(linkText(s.Text)), lowerName) {
			return true
		}
	}
	return false
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func linkText(markup string) string {
	if strings.HasPrefix(markup, "[") {
		if end := strings.Index(markup, "]("); end > 0 {
			return markup[1:end]
		}
	}
	return tagPattern.ReplaceAllString(markup, "")
}

func wrapFirst(spans []Span, name, url string) ([]Span, bool) {
	for _, rule := range matchRules(name) {
		for i, s := range spans {
			if s.Protected {
				continue
			}
			m, ok := rule.Find(s.Text)
			if !ok {
				continue
			}
			out := make([]Span, 0, len(spans)+2)
			out = append(out, spans[:i]...)
			if m.Start > 0 {
				out = append(out, Span{Text: s.Text[:m.Start]})
			}
			out = append(out, Span{Text: Anchor(m.Text, url), Protected: true})
			if m.End < len(s.Text) {
				out = append(out, Span{Text: s.Text[m.End:]})
			}
			out = append(out, spans[i+1:]...)
			return out, true
		}
	}
	return nil, false
}

// matchRules returns the ordered-token rule (when the name has at least two
// significant tokens) followed by the exact-phrase rule.
func matchRules(name string) []textrule.Rule {
	var rules []textrule.Rule
	if core := tokenCore(name); core != "" {
		rules = append(rules, textrule.Bounded("tokens", core))
	}
	return append(rules, textrule.Words("phrase", name))
}

// tokenCore keeps the first two significant tokens adjacent and lets a few words
// sit before the final significant token, so "Rough Country Lift Kit" still hits
// "Rough Country 3.5 Inch Lift Kit".
func tokenCore(name string) string {
	var sig []string
	for _, tok := range strings.Fields(name) {
		tok = strings.Trim(tok, ".,;:!?\"()")
		if tok == "" {
			continue
		}
		if _, stop := stopTokens[strings.ToLower(tok)]; stop {
			continue
		}
		sig = append(sig, regexp.QuoteMeta(tok))
	}
	switch {
	case len(sig) < 2:
		return ""
	case len(sig) == 2:
		return sig[0] + `\s+` + sig[1]
	default:
		return sig[0] + `\s+` + sig[1] + `(?:\s+[^\s<>]+){0,` + strconv.Itoa(maxGapWords) + `}?\s+` + sig[len(sig)-1]
	}
}
