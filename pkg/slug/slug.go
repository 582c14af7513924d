// Package slug turns display names into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases the input and collapses every non-alphanumeric run into a
// single dash.
func Make(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
