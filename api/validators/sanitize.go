package validators

import (
	"strings"
	"unicode"
)

// SanitizeCode drops control characters and surrounding whitespace from a
// typed code. Interior spaces are kept so the result still matches codes
// stored with trim and lowercase only.
func SanitizeCode(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(cleaned)
}
