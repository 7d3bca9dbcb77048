// Package policy holds the data-handling rules applied before chat text is stored.
package policy

import (
	"regexp"
	"unicode"
)

type redactor struct {
	pattern *regexp.Regexp
	marker  string
	// accept filters candidate matches; nil accepts all.
	accept func(string) bool
}

// Order matters: VINs and card numbers go before phones so their digit runs
// are not classified as phone numbers.
var redactors = []redactor{
	{pattern: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), marker: "[REDACTED_EMAIL]"},
	{pattern: regexp.MustCompile(`(?i)\b[A-HJ-NPR-Z0-9]{17}\b`), marker: "[REDACTED_VIN]", accept: mixedAlnum},
	{pattern: regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), marker: "[REDACTED_CARD]"},
	{pattern: regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`), marker: "[REDACTED_PHONE]"},
}

// RedactPII masks emails, VINs, card numbers and phone numbers.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	for _, r := range redactors {
		next := r.pattern.ReplaceAllStringFunc(out, func(m string) string {
			if r.accept != nil && !r.accept(m) {
				return m
			}
			return r.marker
		})
		changed = changed || next != out
		out = next
	}
	return out, changed
}

func mixedAlnum(s string) bool {
	letter, digit := false, false
	for _, c := range s {
		letter = letter || unicode.IsLetter(c)
		digit = digit || unicode.IsDigit(c)
	}
	return letter && digit
}
