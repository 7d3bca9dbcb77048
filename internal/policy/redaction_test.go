package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Email me at sam@example.com or +1 (555) 123-9876 and use 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestRedactPIIVIN(t *testing.T) {
	out, changed := RedactPII("my VIN is 1FTFW1E50LFA12345, will it fit?")
	if !changed || out != "my VIN is [REDACTED_VIN], will it fit?" {
		t.Fatalf("RedactPII() = %q (%v), want VIN masked", out, changed)
	}
}

func TestRedactPIILeavesVehicleTalkAlone(t *testing.T) {
	in := "2020 Ford F-150 XLT with the 5.0L V8 and a 6.5 ft bed"
	out, changed := RedactPII(in)
	if changed || out != in {
		t.Fatalf("RedactPII() = %q (%v), want unchanged", out, changed)
	}
}
