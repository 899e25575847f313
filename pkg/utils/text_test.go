package utils

import "testing"

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ref_۱۲۳", "ref_123"},
		{"ref_٤٥", "ref_45"},
		{"ref_42", "ref_42"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDigits(tt.input); got != tt.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripInvisible(t *testing.T) {
	if got := StripInvisible("\u200f⛔ Stop\u200c "); got != "⛔ Stop" {
		t.Errorf("StripInvisible() = %q", got)
	}
}
