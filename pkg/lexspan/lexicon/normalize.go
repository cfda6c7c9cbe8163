package lexicon

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize maps text to the key form used for lookups: NFC, single spaces
// between words, and case folded unless the lexicon is case-sensitive.
func Normalize(s string, caseSensitive bool) string {
	s = strings.Join(strings.Fields(s), " ")
	s = norm.NFC.String(s)
	if !caseSensitive {
		// Casers are stateful, one per call.
		s = cases.Fold().String(s)
	}
	return s
}
