package affiliate

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/antoniostano/fitbot/internal/fitment"
)

func TestResolveAliasesAndDefaults(t *testing.T) {
	r := NewResolver(ResolverConfig{DefaultCountry: "US", Tags: map[string]string{"uk": "fit-21"}})

	gb, uk := r.Resolve("GB"), r.Resolve("uk")
	if gb != uk {
		t.Fatalf("Resolve(GB) = %+v, Resolve(UK) = %+v, want equal", gb, uk)
	}
	if gb.TLD != "co.uk" || gb.Tag != "fit-21" {
		t.Fatalf("Resolve(GB) = %+v, want co.uk with tag", gb)
	}
	if fr := r.Resolve("FR"); fr.Country != "US" || fr.TLD != "com" {
		t.Fatalf("Resolve(FR) = %+v, want default US", fr)
	}
	if empty := r.Resolve(""); empty.TLD != "com" {
		t.Fatalf("Resolve(\"\") = %+v, want default", empty)
	}
}

func TestResolverFallsBackWhenDefaultUnmapped(t *testing.T) {
	r := NewResolver(ResolverConfig{DefaultCountry: "DE"})
	if got := r.Resolve("FR"); got.Country != "US" {
		t.Fatalf("Resolve(FR) country = %q, want US", got.Country)
	}
	r = NewResolver(ResolverConfig{DefaultCountry: "ca"})
	if got := r.Resolve("FR"); got.TLD != "ca" {
		t.Fatalf("Resolve(FR) tld = %q, want ca", got.TLD)
	}
}

func TestBuildSearchURL(t *testing.T) {
	got := BuildSearchURL("2020 Ford F-150 tonneau cover", "fit-20", "com")
	want := "https://www.amazon.com/s?k=2020+Ford+F-150+tonneau+cover&tag=fit-20"
	if got != want {
		t.Fatalf("BuildSearchURL() = %q, want %q", got, want)
	}
	if got := BuildSearchURL("K&N filter", "", "co.uk"); got != "https://www.amazon.co.uk/s?k=K%26N+filter" {
		t.Fatalf("BuildSearchURL() without tag = %q", got)
	}
}

func TestCountryHintPrecedence(t *testing.T) {
	h := http.Header{}
	h.Set("Accept-Language", "en-CA,en;q=0.8")
	h.Set("X-Country-Code", "gb")
	h.Set("Cf-Ipcountry", "XX")

	if got := CountryHint("us", h); got != "US" {
		t.Fatalf("CountryHint(explicit) = %q, want US", got)
	}
	if got := CountryHint("", h); got != "GB" {
		t.Fatalf("CountryHint(headers) = %q, want GB", got)
	}
	h.Del("X-Country-Code")
	if got := CountryHint("", h); got != "CA" {
		t.Fatalf("CountryHint(accept-language) = %q, want CA", got)
	}
	h.Set("Accept-Language", "en")
	if got := CountryHint("", h); got != "" {
		t.Fatalf("CountryHint(bare language) = %q, want empty", got)
	}
	if got := CountryHint("", nil); got != "" {
		t.Fatalf("CountryHint(nil) = %q, want empty", got)
	}
}

func TestBuildQueryItems(t *testing.T) {
	vehicle := fitment.Profile{Year: "2020", Make: "Ford", Model: "F-150"}
	got := BuildQueryItems(
		"thinking about a tonneau cover",
		"The BAKFlip MX4 is a great hard tonneau cover. Pair it with WeatherTech floor mats.",
		vehicle, 0,
	)
	want := []QueryItem{
		{Display: "tonneau cover", Query: "2020 Ford F-150 tonneau cover"},
		{Display: "floor mats", Query: "2020 Ford F-150 floor mats"},
		{Display: "WeatherTech", Query: "2020 Ford F-150 WeatherTech"},
		{Display: "BAKFlip MX4", Query: "2020 Ford F-150 BAKFlip MX4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildQueryItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQueryItemsCapsAndSkipsVehicleWhenUnknown(t *testing.T) {
	got := BuildQueryItems("need brake pads, rotors, shocks and a lift kit", "", fitment.Profile{}, 2)
	want := []QueryItem{
		{Display: "lift kit", Query: "lift kit"},
		{Display: "brake pads", Query: "brake pads"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildQueryItems() mismatch (-want +got):\n%s", diff)
	}
}
