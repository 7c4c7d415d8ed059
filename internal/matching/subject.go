package matching

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Subject-line patterns, most reliable first. These are heuristics over
// Airbnb-style notification subjects in Spanish and English and will
// occasionally extract too much or too little.
var subjectPatterns = []*regexp.Regexp{
	// "Reserva confirmada – The Nook Terrace – 15-18 de enero"
	regexp.MustCompile(`[–—-]\s*([^–—-]+?)\s*[–—-]`),
	// "Pago enviado por The Nook Terrace", "Payout sent for The Nook Terrace"
	regexp.MustCompile(`(?i)\b(?:pago|payout)\s+(?:enviado|sent)\s+(?:por|for)\s+([^–—-]+?)(?:\s*[–—-]|\s*$)`),
	// "Solicitud de reserva en Casa Azul para el periodo ..."
	regexp.MustCompile(`(?i)\b(?:en|in)\s+(.+?)\s+(?:para el periodo|for the period|para|for\s+\d)`),
	// "Nueva reserva de Juan García en Cozy Apartment"
	regexp.MustCompile(`(?i)\breserva\s+(?:de\s+.+?\s+)?en\s+(.+?)(?:\s+(?:para|del|ha\s+sido)\b|\s*$)`),
	// "... en tu Loft Centro"
	regexp.MustCompile(`\b(?i:en)\s+(?:(?i:tu)\s+)?(\p{Lu}[^–—-]*?)(?:\s+(?i:para|del|ha)\b|\s*$)`),
	// "... en Casa Rural 12 ..."
	regexp.MustCompile(`\s(?i:en)\s+(\p{Lu}[\p{L}\s]+?)(?:\s*$|\s+\d)`),
}

var (
	confirmationCodeRE = regexp.MustCompile(`(?i)^HM[A-Z0-9]+$`)
	leadingDigitRE     = regexp.MustCompile(`^\d`)
)

var subjectBoilerplate = map[string]struct{}{
	"enero": {}, "febrero": {}, "marzo": {}, "abril": {}, "mayo": {}, "junio": {},
	"julio": {}, "agosto": {}, "septiembre": {}, "octubre": {}, "noviembre": {}, "diciembre": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {}, "june": {}, "july": {},
	"august": {}, "september": {}, "october": {}, "november": {}, "december": {},
	"airbnb": {}, "pago": {}, "reserva": {}, "confirmada": {}, "cancelada": {}, "pendiente": {},
	"booking": {}, "vrbo": {}, "payout": {}, "reservation": {}, "confirmed": {}, "cancelled": {},
}

func plausiblePropertyName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 80 {
		return false
	}
	if _, bad := subjectBoilerplate[strings.ToLower(s)]; bad {
		return false
	}
	return !confirmationCodeRE.MatchString(s) && !leadingDigitRE.MatchString(s)
}

// ExtractPropertyName pulls a probable property name out of a platform
// notification subject. ok is false when no pattern yields a plausible name.
func ExtractPropertyName(subject string) (string, bool) {
	for _, re := range subjectPatterns {
		m := re.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); plausiblePropertyName(name) {
			return name, true
		}
	}
	return "", false
}
