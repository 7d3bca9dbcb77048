// Package signals finds product categories, brands and product names in text.
package signals

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antoniostano/fitbot/internal/fitment"
)

type Kind string

const (
	KindCategory      Kind = "category"
	KindBrand         Kind = "brand"
	KindProductPhrase Kind = "productPhrase"
)

// Signal is one detected product mention.
type Signal struct {
	Kind    Kind   `json:"kind"`
	Display string `json:"display"`
}

const (
	minPhraseTokens = 2
	maxPhraseTokens = 7
)

var phrasePattern = regexp.MustCompile(`[A-Z][A-Za-z0-9'&+-]*(?: (?:[A-Z][A-Za-z0-9'&+-]*|[0-9][A-Za-z0-9.+-]*|&)){1,6}`)

// DetectCategories returns the category terms mentioned in text, in vocabulary order.
func DetectCategories(text string) []string {
	return categoryRules.Tags(text)
}

// DetectBrands returns the catalogued brands mentioned in text, in vocabulary order.
func DetectBrands(text string) []string {
	return brandRules.Tags(text)
}

// HarvestProductPhrases returns capitalized runs that survive the product filters,
// in order of appearance.
func HarvestProductPhrases(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, loc := range phrasePattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isWordRune(lastRune(text[:loc[0]])) {
			continue
		}
		phrase, ok := cleanPhrase(text[loc[0]:loc[1]])
		if !ok || !isProductPhrase(phrase) {
			continue
		}
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

// Detect returns every signal in text: categories, then brands, then product phrases.
func Detect(text string) []Signal {
	var out []Signal
	for _, c := range DetectCategories(text) {
		out = append(out, Signal{Kind: KindCategory, Display: c})
	}
	for _, b := range DetectBrands(text) {
		out = append(out, Signal{Kind: KindBrand, Display: b})
	}
	for _, p := range HarvestProductPhrases(text) {
		out = append(out, Signal{Kind: KindProductPhrase, Display: p})
	}
	return out
}

func cleanPhrase(raw string) (string, bool) {
	tokens := strings.Fields(raw)
	for len(tokens) > 0 {
		if _, filler := leadingFiller[strings.ToLower(tokens[0])]; !filler {
			break
		}
		tokens = tokens[1:]
	}
	if len(tokens) > 0 {
		last := strings.TrimRight(tokens[len(tokens)-1], ".-+'")
		if last == "" {
			tokens = tokens[:len(tokens)-1]
		} else {
			tokens[len(tokens)-1] = last
		}
	}
	if len(tokens) < minPhraseTokens || len(tokens) > maxPhraseTokens {
		return "", false
	}
	if !startsUpper(tokens[0]) {
		return "", false
	}
	return strings.Join(tokens, " "), true
}

func isProductPhrase(phrase string) bool {
	if _, stop := phraseStoplist[strings.ToLower(phrase)]; stop {
		return false
	}
	tokens := strings.Fields(phrase)
	hasProductToken, hasMixed, hasAmp := false, false, false
	for _, tok := range tokens {
		lower := strings.ToLower(strings.Trim(tok, ".,;:!?'"))
		if _, ok := productTokens[lower]; ok {
			hasProductToken = true
		}
		if isMixedAlnum(tok) {
			hasMixed = true
		}
		if strings.Contains(tok, "&") {
			hasAmp = true
		}
	}
	if looksLikeVehicle(phrase, hasProductToken) {
		return false
	}
	return hasProductToken || hasMixed || hasAmp
}

// looksLikeVehicle flags runs such as "2020 Ford" or "Toyota Tacoma" and bare
// model/trim names like "Tacoma SR5".
func looksLikeVehicle(phrase string, hasProductToken bool) bool {
	p := fitment.Extract(phrase)
	if p.Make != "" && (p.Year != "" || p.Model != "") {
		return true
	}
	return (p.Model != "" || p.Trim != "") && !hasProductToken
}

func isMixedAlnum(tok string) bool {
	letter, digit := false, false
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func startsUpper(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsUpper(r)
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
