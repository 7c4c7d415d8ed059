// Package matching identifies which registered property a free-text name
// from a booking platform refers to. Everything here is pure and safe for
// concurrent use.
package matching

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func isSeparator(r rune) bool {
	switch r {
	case '|', '·', '-', '‐', '‑', '‒', '–', '—', '―':
		return true
	}
	return false
}

// Normalize lower-cases s, strips diacritics, turns separators into spaces,
// drops remaining punctuation and collapses whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case isSeparator(r), unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var stopWords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "de": {}, "del": {}, "en": {}, "con": {}, "y": {}, "a": {},
	"the": {}, "and": {}, "in": {}, "at": {}, "for": {},
	"le": {}, "les": {}, "des": {}, "du": {}, "et": {},
}

// Keywords returns the significant tokens of s: normalized, longer than two
// characters and not a stop word.
func Keywords(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// round is half-up rounding for the non-negative ratios used in scoring.
func round(f float64) int { return int(math.Floor(f + 0.5)) }
