// Package format reflows model prose into short bulleted lines for chat display.
package format

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antoniostano/fitbot/internal/linkify"
)

const Bullet = "• "

var (
	listItemPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d{1,2}[.)])\s+`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+["')\]]*\s+`)
	blankLines      = regexp.MustCompile(`\n{2,}`)
)

// ToLines splits text into one sentence per bulleted line. Text that already
// carries list markup keeps its line grouping and only has its bullets unified.
// Sentences are never broken inside link markup.
func ToLines(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}
	lines := strings.Split(blankLines.ReplaceAllString(text, "\n"), "\n")

	if hasListMarkup(lines) {
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, bulleted(l))
			}
		}
		return strings.Join(out, "\n")
	}

	var out []string
	for _, l := range lines {
		for _, s := range splitSentences(strings.TrimSpace(l)) {
			out = append(out, bulleted(s))
		}
	}
	return strings.Join(out, "\n")
}

func hasListMarkup(lines []string) bool {
	for _, l := range lines {
		if listItemPattern.MatchString(l) {
			return true
		}
	}
	return false
}

func bulleted(line string) string {
	if loc := listItemPattern.FindStringIndex(line); loc != nil {
		return Bullet + line[loc[1]:]
	}
	return Bullet + line
}

func splitSentences(line string) []string {
	if line == "" {
		return nil
	}
	mask := linkify.Mask(line)
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		if mask[loc[0]] || loc[1] >= len(line) || !opensSentence(line[loc[1]:]) {
			continue
		}
		if s := strings.TrimSpace(line[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(line[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func opensSentence(rest string) bool {
	if strings.HasPrefix(rest, "<a ") || strings.HasPrefix(rest, "[") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}
