package format

import (
	"testing"

	"github.com/antoniostano/fitbot/internal/linkify"
)

func TestToLines(t *testing.T) {
	anchor := linkify.Anchor("BAKFlip MX4", "https://www.amazon.com/s?k=mx4&tag=t")
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "sentences",
			in:   "Hard covers seal best. Soft covers cost less! Which do you prefer? 2 options fit.",
			want: "• Hard covers seal best.\n• Soft covers cost less!\n• Which do you prefer?\n• 2 options fit.",
		},
		{
			name: "no split before lowercase or decimals",
			in:   "Pick the 3.5 in. kit e.g. for towing. Done.",
			want: "• Pick the 3.5 in. kit e.g. for towing.\n• Done.",
		},
		{
			name: "anchor starts a sentence",
			in:   "Great choice. " + anchor + " is popular.",
			want: "• Great choice.\n• " + anchor + " is popular.",
		},
		{
			name: "never splits inside an anchor",
			in:   `See <a href="https://x">Top pick. Best value</a> today.`,
			want: `• See <a href="https://x">Top pick. Best value</a> today.`,
		},
		{
			name: "list markup keeps grouping",
			in:   "Options:\n- BAKFlip MX4. Hard folding.\n* TruXedo Lo Pro\n\n1. Extang Solid Fold",
			want: "• Options:\n• BAKFlip MX4. Hard folding.\n• TruXedo Lo Pro\n• Extang Solid Fold",
		},
		{
			name: "already bulleted",
			in:   "• One thing. Two things.",
			want: "• One thing. Two things.",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToLines(tc.in); got != tc.want {
				t.Fatalf("ToLines(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
