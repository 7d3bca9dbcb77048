package affiliate

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Marketplace is a resolved storefront plus the affiliate tag configured for it.
type Marketplace struct {
	Country string
	TLD     string
	Tag     string
}

var marketplaceTLDs = map[string]string{
	"US": "com",
	"UK": "co.uk",
	"CA": "ca",
}

var countryAliases = map[string]string{
	"GB": "UK",
}

// Geo headers consulted in order after an explicit country.
var geoHeaders = []string{"cf-ipcountry", "x-vercel-ip-country", "x-country-code"}

type ResolverConfig struct {
	DefaultCountry string
	// Tags maps a marketplace country (US, UK, CA) to its affiliate tag.
	Tags map[string]string
}

type Resolver struct {
	defaultCountry string
	tags           map[string]string
}

func NewResolver(cfg ResolverConfig) *Resolver {
	def := NormalizeCountry(cfg.DefaultCountry)
	if _, ok := marketplaceTLDs[def]; !ok {
		def = "US"
	}
	tags := make(map[string]string, len(cfg.Tags))
	for k, v := range cfg.Tags {
		if v = strings.TrimSpace(v); v != "" {
			tags[NormalizeCountry(k)] = v
		}
	}
	return &Resolver{defaultCountry: def, tags: tags}
}

// NormalizeCountry upper-cases a country code and folds aliases such as GB.
func NormalizeCountry(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := countryAliases[c]; ok {
		return alias
	}
	return c
}

// Resolve maps a country code to a marketplace; unmapped codes get the default.
func (r *Resolver) Resolve(country string) Marketplace {
	c := NormalizeCountry(country)
	tld, ok := marketplaceTLDs[c]
	if !ok {
		c = r.defaultCountry
		tld = marketplaceTLDs[c]
	}
	return Marketplace{Country: c, TLD: tld, Tag: r.tags[c]}
}

// SearchURL builds the tagged search link for query on m.
func (r *Resolver) SearchURL(query string, m Marketplace) string {
	return BuildSearchURL(query, m.Tag, m.TLD)
}

// BuildSearchURL is deterministic: the same inputs always give the same URL.
func BuildSearchURL(query, tag, tld string) string {
	if tld == "" {
		tld = marketplaceTLDs["US"]
	}
	v := url.Values{}
	v.Set("k", strings.TrimSpace(query))
	if tag != "" {
		v.Set("tag", tag)
	}
	return "https://www.amazon." + tld + "/s?" + v.Encode()
}

// CountryHint picks the most specific country signal available: an explicit
// value, then CDN geo headers, then the region of the first Accept-Language tag.
func CountryHint(explicit string, h http.Header) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return strings.ToUpper(c)
	}
	if h == nil {
		return ""
	}
	for _, name := range geoHeaders {
		c := strings.ToUpper(strings.TrimSpace(h.Get(name)))
		// Cloudflare reports XX for unknown and T1 for Tor.
		if c != "" && c != "XX" && c != "T1" {
			return c
		}
	}
	tags, _, err := language.ParseAcceptLanguage(h.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	region, conf := tags[0].Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
