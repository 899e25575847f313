package security

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxReasonLength = 500
	MaxNameLength   = 64
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims, drops control characters and caps input at maxRunes.
func SanitizeString(input string, maxRunes int) string {
	input = strings.TrimSpace(input)

	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	if maxRunes > 0 && utf8.RuneCountInString(input) > maxRunes {
		input = string([]rune(input)[:maxRunes])
	}

	return input
}

// SanitizeHTML removes all HTML tags and escapes the remaining text so it is
// safe to embed in an HTML-mode Telegram message.
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeReason cleans a free-text report reason for storage. Escape with
// SanitizeHTML before display.
func SanitizeReason(reason string) string {
	return SanitizeString(reason, MaxReasonLength)
}

// SanitizeName cleans a Telegram first name for storage.
func SanitizeName(name string) string {
	return SanitizeString(name, MaxNameLength)
}
