package title

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the comparison and cache-key form of a title: diacritics
// stripped, lowercased, punctuation collapsed to single spaces. Letters and
// digits of any script survive so non-Latin titles keep distinct keys.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped, _, err := transform.String(diacriticStripper, raw)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	b.Grow(len(stripped))
	lastSpace := true
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// containsWord reports whether needle appears in haystack on word boundaries.
// Both arguments must already be in Normalize form. A plain substring check
// would flag "talk" inside "Stalker".
func containsWord(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		beforeOK := start == 0 || haystack[start-1] == ' '
		afterOK := end == len(haystack) || haystack[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}
