package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/mroshb/anonchat_bot/internal/security"
)

const anonymousName = "Anonymous"

// MaskName keeps the first letter of a name and hides the rest.
func MaskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return anonymousName
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(r) + "***"
}

// DisplayName renders a partner for an HTML-mode message: masked, escaped and
// badged when karma has reached threshold. A threshold <= 0 disables the badge.
func DisplayName(name string, karma, threshold int64) string {
	display := security.SanitizeHTML(MaskName(name))
	if threshold > 0 && karma >= threshold {
		display += " " + BadgeGoodRep
	}
	return display
}
