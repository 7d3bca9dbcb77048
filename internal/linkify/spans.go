// Package linkify wraps product mentions in affiliate anchors without touching
// link markup that is already present.
package linkify

import (
	"regexp"
	"strings"
)

// Existing HTML anchors, markdown links and markdown images.
var protectedPattern = regexp.MustCompile(`(?is)<a\b[^>]*>.*?</a>|!?\[[^\]\n]*\]\([^)\s]+\)`)

var imagePattern = regexp.MustCompile(`^!\[([^\]\n]*)\]`)

// Span is a run of text. Protected spans are link markup and are never rewritten.
type Span struct {
	Text      string
	Protected bool
}

// Split cuts text into alternating plain and protected spans. Joining the
// spans gives back text unchanged.
func Split(text string) []Span {
	var out []Span
	last := 0
	for _, loc := range protectedPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Span{Text: text[last:loc[0]]})
		}
		out = append(out, Span{Text: text[loc[0]:loc[1]], Protected: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Span{Text: text[last:]})
	}
	return out
}

// Join concatenates spans back into text.
func Join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Mask reports, per byte of text, whether the byte sits inside protected markup.
func Mask(text string) []bool {
	mask := make([]bool, len(text))
	for _, loc := range protectedPattern.FindAllStringIndex(text, -1) {
		for i := loc[0]; i < loc[1]; i++ {
			mask[i] = true
		}
	}
	return mask
}

// unwrapImages turns markdown images into their alt text, which is plain
// prose and may be linked.
func unwrapImages(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected {
			if m := imagePattern.FindStringSubmatch(s.Text); m != nil {
				s = Span{Text: m[1]}
			}
		}
		if n := len(out); n > 0 && !s.Protected && !out[n-1].Protected {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
