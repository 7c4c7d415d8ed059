package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditSimilarity converts the Levenshtein distance between a and b into a
// 0-100 percentage of the longer string. Callers pass normalized strings.
func EditSimilarity(a, b string) int {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return round((1 - float64(d)/float64(maxLen)) * 100)
}

// KeywordOverlap counts the keywords of the smaller set that equal, contain
// or are contained by some keyword of the other set, as a percentage of the
// larger set.
func KeywordOverlap(a, b string) int {
	ka, kb := Keywords(a), Keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	small, large := ka, kb
	if len(kb) < len(ka) {
		small, large = kb, ka
	}
	hits := 0
	for w := range small {
		for o := range large {
			if w == o || strings.Contains(w, o) || strings.Contains(o, w) {
				hits++
				break
			}
		}
	}
	return round(float64(hits) / float64(len(large)) * 100)
}

// containmentRatio is min/max length when one string contains the other,
// and ok=false otherwise.
func containmentRatio(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return 0, false
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	return round(float64(min(la, lb)) / float64(max(la, lb)) * 100), true
}
