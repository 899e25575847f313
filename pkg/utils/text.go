package utils

import "strings"

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4", "۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4", "٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// NormalizeDigits converts Persian and Arabic-Indic numerals to ASCII digits.
func NormalizeDigits(input string) string {
	return digitReplacer.Replace(input)
}

var invisibleReplacer = strings.NewReplacer(
	"\u200c", "", // zero width non-joiner
	"\u200d", "", // zero width joiner
	"\u200e", "", // left-to-right mark
	"\u200f", "", // right-to-left mark
	"\ufeff", "",
)

// StripInvisible removes zero-width and direction marks some clients insert
// into keyboard button text.
func StripInvisible(input string) string {
	return strings.TrimSpace(invisibleReplacer.Replace(input))
}
