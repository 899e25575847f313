package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims whitespace", "  hello  ", 10, "hello"},
		{"drops null bytes", "he\x00llo", 10, "hello"},
		{"keeps newlines", "a\nb", 10, "a\nb"},
		{"caps runes not bytes", "سلام دنیا", 4, "سلام"},
		{"zero max keeps everything", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input, tt.max); got != tt.want {
				t.Errorf("SanitizeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tags", "<b>bold</b>", "bold"},
		{"strips scripts", "<script>alert(1)</script>hi", "hi"},
		{"escapes ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"plain text untouched", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeHTML(tt.input); got != tt.want {
				t.Errorf("SanitizeHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeReason_Length(t *testing.T) {
	got := SanitizeReason(strings.Repeat("x", 2*MaxReasonLength))
	if n := utf8.RuneCountInString(got); n != MaxReasonLength {
		t.Errorf("reason length = %d, want %d", n, MaxReasonLength)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("  Sara\x00 "); got != "Sara" {
		t.Errorf("SanitizeName() = %q, want %q", got, "Sara")
	}
}
