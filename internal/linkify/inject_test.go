package linkify

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const mx4URL = "https://www.amazon.com/s?k=BAKFlip+MX4&tag=fit-20"

func TestInjectWrapsExactPhrase(t *testing.T) {
	got, n := Inject("Try the BAKFlip MX4 for weather sealing.", []Item{{Name: "BAKFlip MX4", URL: mx4URL}})
	want := "Try the " + Anchor("BAKFlip MX4", mx4URL) + " for weather sealing."
	if got != want {
		t.Fatalf("Inject() = %q, want %q", got, want)
	}
	if n != 1 {
		t.Fatalf("added = %d, want 1", n)
	}
	if !strings.Contains(got, `href="https://www.amazon.com/s?k=BAKFlip+MX4&amp;tag=fit-20"`) {
		t.Fatalf("href not escaped: %q", got)
	}
}

func TestInjectIsIdempotent(t *testing.T) {
	items := []Item{
		{Name: "BAKFlip MX4", URL: mx4URL},
		{Name: "tonneau cover", URL: "https://www.amazon.com/s?k=tonneau+cover"},
		{Name: "WeatherTech", URL: "https://www.amazon.com/s?k=WeatherTech"},
	}
	in := "The **BAKFlip MX4** is a hard tonneau cover. A tonneau cover from WeatherTech is another pick."
	once, n := Inject(in, items)
	if n != 3 {
		t.Fatalf("first pass added = %d, want 3", n)
	}
	twice, n := Inject(once, items)
	if twice != once {
		t.Fatalf("second pass changed text:\n once: %q\ntwice: %q", once, twice)
	}
	if n != 0 {
		t.Fatalf("second pass added = %d, want 0", n)
	}
	if c := strings.Count(once, "<a "); c != 3 {
		t.Fatalf("anchor count = %d, want 3 in %q", c, once)
	}

	for _, in := range []string{
		"## # Title about BAKFlip MX4",
		"Use 2*3*4 math and **a*b** with BAKFlip MX4.",
		"***BAKFlip MX4*** is *really **good***",
		"Intro\n  # ## BAKFlip MX4 specs ## more",
	} {
		once, _ := Inject(in, items)
		if twice, _ := Inject(once, items); twice != once {
			t.Fatalf("Inject(%q) not stable:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestInjectLeavesExistingLinksAlone(t *testing.T) {
	existing := `<a href="https://example.com/mx4">BAKFlip MX4 review</a>`
	in := "Read " + existing + " then compare the Rough Country Lift Kit in [this guide](https://example.com/guide)."
	items := []Item{
		{Name: "BAKFlip MX4", URL: mx4URL},
		{Name: "this guide", URL: "https://www.amazon.com/s?k=guide"},
		{Name: "Rough Country Lift Kit", URL: "https://www.amazon.com/s?k=rc"},
	}
	got, n := Inject(in, items)
	want := "Read " + existing + " then compare the " + Anchor("Rough Country Lift Kit", "https://www.amazon.com/s?k=rc") +
		" in [this guide](https://example.com/guide)."
	if got != want {
		t.Fatalf("Inject() = %q, want %q", got, want)
	}
	if n != 1 {
		t.Fatalf("added = %d, want 1", n)
	}
}

func TestInjectTokenMatchToleratesVariants(t *testing.T) {
	url := "https://www.amazon.com/s?k=rough+country+lift+kit"
	got, _ := Inject("The Rough Country 3.5 Inch Lift Kit is popular.", []Item{{Name: "Rough Country Lift Kit", URL: url}})
	want := "The " + Anchor("Rough Country 3.5 Inch Lift Kit", url) + " is popular."
	if got != want {
		t.Fatalf("Inject() = %q, want %q", got, want)
	}

	got, _ = Inject("The BAKFlip  MX4 Hard Folding cover.", []Item{{Name: "BAKFlip MX4", URL: mx4URL}})
	if !strings.Contains(got, Anchor("BAKFlip  MX4", mx4URL)+" Hard Folding") {
		t.Fatalf("Inject() = %q, want whitespace-tolerant match", got)
	}
}

func TestInjectWrapsOnlyFirstOccurrence(t *testing.T) {
	got, _ := Inject("Shocks matter. Good shocks last.", []Item{{Name: "shocks", URL: "https://x/s?k=shocks"}})
	want := Anchor("Shocks", "https://x/s?k=shocks") + " matter. Good shocks last."
	if got != want {
		t.Fatalf("Inject() = %q, want %q", got, want)
	}
}

func TestInjectRespectsWordBoundaries(t *testing.T) {
	in := "Use tonneau covers."
	got, n := Inject(in, []Item{{Name: "tonneau cover", URL: "https://x/s?k=t"}})
	if got != in || n != 0 {
		t.Fatalf("Inject() = %q (%d), want unchanged", got, n)
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"## Top Picks\n**Bold** and *italic* and __under__", "Top Picks\nBold and italic and under"},
		{"Run `make install` first", "Run make install first"},
		{"![BAKFlip MX4](https://img/x.png) looks good", "BAKFlip MX4 looks good"},
		{"* item one\n* item two", "* item one\n* item two"},
		{"keep [**bold**](https://x) link", "keep [**bold**](https://x) link"},
		{"## # Nested header", "Nested header"},
		{"Use 2*3*4 and a*b*c", "Use 2*3*4 and a*b*c"},
	}
	for _, tc := range cases {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitRoundTrips(t *testing.T) {
	in := `a <a href="x">b</a> c [d](https://e) f`
	spans := Split(in)
	want := []Span{
		{Text: "a "},
		{Text: `<a href="x">b</a>`, Protected: true},
		{Text: " c "},
		{Text: "[d](https://e)", Protected: true},
		{Text: " f"},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("Split() mismatch (-want +got):\n%s", diff)
	}
	if got := Join(spans); got != in {
		t.Fatalf("Join(Split()) = %q, want %q", got, in)
	}
}
