package fitment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antoniostano/fitbot/internal/textrule"
)

const (
	minYear = 1990
	maxYear = 2030
)

var (
	yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

	bedFeetInchesPattern = regexp.MustCompile(`(?i)(?:^|[^\d.])([4-9])\s*(?:'|ft\b|feet\b|foot\b)\s*-?\s*(\d{1,2})\s*(?:"|''|in\b|inch(?:es)?\b)`)
	// A feet mark followed by a digit is a feet-and-inches length, never whole feet.
	bedNumericPattern = regexp.MustCompile(`(?i)(?:^|[^\d.])([4-9](?:\.\d{1,2})?)\s*(?:-?\s*(?:ft|feet|foot)\b|'(?:$|[^\d]))`)

	enginePattern = regexp.MustCompile(`(?i)\b(\d\.\d)\s*-?\s*(?:l|liters?|litres?)\b(?:\s+(ecoboost|hemi|duramax|power\s*stroke|cummins|coyote|v6|v8|turbo))?`)

	engineFamilies = map[string]string{
		"ecoboost":    "EcoBoost",
		"hemi":        "HEMI",
		"duramax":     "Duramax",
		"powerstroke": "Power Stroke",
		"cummins":     "Cummins",
		"coyote":      "Coyote",
		"v6":          "V6",
		"v8":          "V8",
		"turbo":       "Turbo",
	}
)

var makeRules = textrule.Table{
	textrule.R("Ram", `\b(?:dodge\s+)?ram\s*(?:1500|2500|3500)\b|\bdodge\s+ram\b`),
	textrule.Words("Ford", "ford"),
	textrule.Words("Chevrolet", "chevrolet", "chevy"),
	textrule.Words("GMC", "gmc"),
	textrule.Words("Toyota", "toyota"),
	textrule.Words("Nissan", "nissan"),
	textrule.Words("Honda", "honda"),
	textrule.Words("Jeep", "jeep"),
	textrule.Words("Dodge", "dodge"),
	textrule.Words("Subaru", "subaru"),
	textrule.Words("Hyundai", "hyundai"),
	textrule.Words("Kia", "kia"),
	textrule.Words("Mazda", "mazda"),
	textrule.Words("Volkswagen", "volkswagen", "vw"),
	textrule.Words("Isuzu", "isuzu"),
	textrule.Words("Mitsubishi", "mitsubishi"),
	textrule.Words("Rivian", "rivian"),
	textrule.Words("Tesla", "tesla"),
}

// Most specific variants come first so "Silverado 2500HD" beats "Silverado".
var modelRules = textrule.Table{
	textrule.R("F-150", `\bf\s?-?\s?150\b`),
	textrule.R("F-250", `\bf\s?-?\s?250\b`),
	textrule.R("F-350", `\bf\s?-?\s?350\b`),
	textrule.R("F-450", `\bf\s?-?\s?450\b`),
	textrule.R("Silverado 2500HD", `\bsilverado\s*2500\s*hd\b`),
	textrule.R("Silverado 1500", `\bsilverado\s*1500\b`),
	textrule.Words("Silverado", "silverado"),
	textrule.R("Sierra 2500HD", `\bsierra\s*2500\s*hd\b`),
	textrule.R("Sierra 1500", `\bsierra\s*1500\b`),
	textrule.Words("Sierra", "sierra"),
	textrule.R("1500", `\bram\s*1500\b`),
	textrule.R("2500", `\bram\s*2500\b`),
	textrule.R("3500", `\bram\s*3500\b`),
	textrule.Words("Tacoma", "tacoma"),
	textrule.Words("Tundra", "tundra"),
	textrule.Words("4Runner", "4runner", "4 runner"),
	textrule.Words("Colorado", "colorado"),
	textrule.Words("Canyon", "canyon"),
	textrule.Words("Ranger", "ranger"),
	textrule.Words("Maverick", "maverick"),
	textrule.Words("Bronco", "bronco"),
	textrule.Words("Frontier", "frontier"),
	textrule.Words("Titan", "titan"),
	textrule.Words("Gladiator", "gladiator"),
	textrule.Words("Wrangler", "wrangler"),
	textrule.Words("Ridgeline", "ridgeline"),
	textrule.Words("Santa Cruz", "santa cruz"),
	textrule.Words("Dakota", "dakota"),
	textrule.Words("Tahoe", "tahoe"),
	textrule.Words("Suburban", "suburban"),
	textrule.Words("Yukon", "yukon"),
	textrule.Words("R1T", "r1t"),
	textrule.Words("Cybertruck", "cybertruck"),
}

var trimRules = textrule.Table{
	textrule.Words("King Ranch", "king ranch"),
	textrule.Words("TRD Pro", "trd pro"),
	textrule.Words("TRD Off-Road", "trd off-road", "trd off road"),
	textrule.Words("TRD Sport", "trd sport"),
	textrule.Words("High Country", "high country"),
	textrule.Words("Trail Boss", "trail boss"),
	textrule.Words("Big Horn", "big horn", "bighorn"),
	textrule.Words("Pro-4X", "pro-4x", "pro4x"),
	textrule.Words("XLT", "xlt"),
	textrule.Words("Lariat", "lariat"),
	textrule.Words("Platinum", "platinum"),
	textrule.Words("Raptor", "raptor"),
	textrule.Words("Tremor", "tremor"),
	textrule.Words("SR5", "sr5"),
	textrule.Words("ZR2", "zr2"),
	textrule.Words("Denali", "denali"),
	textrule.Words("AT4", "at4"),
	textrule.Words("Laramie", "laramie"),
	textrule.Words("Longhorn", "longhorn"),
	textrule.Words("Rebel", "rebel"),
	textrule.Words("Tradesman", "tradesman"),
	textrule.Words("Rubicon", "rubicon"),
	textrule.Words("Sahara", "sahara"),
	textrule.Words("LTZ", "ltz"),
	textrule.Words("RST", "rst"),
	textrule.CaseSensitive("Limited", `\bLimited\b`),
	textrule.CaseSensitive("SLT", `\bSLT\b`),
	textrule.CaseSensitive("SLE", `\bSLE\b`),
	textrule.CaseSensitive("STX", `\bSTX\b`),
	textrule.CaseSensitive("LT", `\bLT\b`),
	textrule.CaseSensitive("SR", `\bSR\b`),
	textrule.CaseSensitive("XL", `\bXL\b`),
	textrule.CaseSensitive("WT", `\bWT\b`),
}

var bedRules = textrule.Table{
	textrule.Words("5.5 ft", "short bed", "shortbed", "short box"),
	textrule.Words("6.5 ft", "standard bed", "standard box", "std bed"),
	textrule.Words("8 ft", "long bed", "longbed", "long box"),
}

// Extract returns the fields it can read from text. Anything it is unsure about stays empty.
func Extract(text string) Profile {
	text = strings.TrimSpace(text)
	if text == "" {
		return Profile{}
	}
	var p Profile
	p.Year = extractYear(text)
	if m, ok := makeRules.First(text); ok {
		p.Make = m.Tag
	}
	if m, ok := modelRules.First(text); ok {
		p.Model = m.Tag
	}
	if p.Model == "F-150" && p.Make == "" {
		p.Make = "Ford"
	}
	if m, ok := trimRules.First(text); ok {
		p.Trim = m.Tag
	}
	p.Bed = extractBed(text)
	p.Engine = extractEngine(text)
	return p
}

// ExtractYear returns the model year in text: an in-range four digit number
// directly followed by a make or model, else the first in-range number.
func ExtractYear(text string) string {
	return extractYear(text)
}

// ExtractMake returns the canonical make named in text, if any.
func ExtractMake(text string) string {
	if m, ok := makeRules.First(text); ok {
		return m.Tag
	}
	return ""
}

func extractYear(text string) string {
	first := ""
	for _, loc := range yearPattern.FindAllStringSubmatchIndex(text, -1) {
		y := text[loc[2]:loc[3]]
		n, err := strconv.Atoi(y)
		if err != nil || n < minYear || n > maxYear {
			continue
		}
		if startsWithVehicle(text[loc[3]:]) {
			return y
		}
		if first == "" {
			first = y
		}
	}
	return first
}

// startsWithVehicle reports whether a make or model opens rest, ignoring
// leading spaces and dashes.
func startsWithVehicle(rest string) bool {
	for _, t := range []textrule.Table{makeRules, modelRules} {
		for _, r := range t {
			if m, ok := r.Find(rest); ok && strings.TrimLeft(rest[:m.Start], " \t-") == "" {
				return true
			}
		}
	}
	return false
}

func extractBed(text string) string {
	if m := bedFeetInchesPattern.FindStringSubmatch(text); m != nil {
		if in, err := strconv.Atoi(m[2]); err == nil && in < 12 {
			return m[1] + `'` + m[2] + `"`
		}
		return ""
	}
	if m := bedNumericPattern.FindStringSubmatch(text); m != nil {
		return m[1] + " ft"
	}
	if m, ok := bedRules.First(text); ok {
		return m.Tag
	}
	return ""
}

func extractEngine(text string) string {
	m := enginePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	out := m[1] + "L"
	if fam := strings.ToLower(strings.Join(strings.Fields(m[2]), "")); fam != "" {
		if name, ok := engineFamilies[fam]; ok {
			out += " " + name
		}
	}
	return out
}
