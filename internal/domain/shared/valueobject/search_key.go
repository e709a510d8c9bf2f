package valueobject

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchKey folds text for accent and case insensitive matching:
// "Hélène Lefèvre" and "helene lefevre" share the same key.
func SearchKey(parts ...string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	joined := strings.Join(parts, " ")
	folded, _, err := transform.String(t, joined)
	if err != nil {
		folded = joined
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
