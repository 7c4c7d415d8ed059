package domain

import "strings"

type Platform string

const (
	PlatformAirbnb  Platform = "airbnb"
	PlatformBooking Platform = "booking"
	PlatformVrbo    Platform = "vrbo"
)

// ParsePlatform picks the alias family for a payload platform tag.
// Unknown channels (cloudbeds, amenitiz, ...) fall back to airbnb aliases.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "booking", "booking.com", "bookingcom":
		return PlatformBooking
	case "vrbo", "homeaway":
		return PlatformVrbo
	default:
		return PlatformAirbnb
	}
}

// Entity is a rental unit registered by an account.
type Entity struct {
	ID           string
	AccountID    string
	Name         string
	Slug         *string
	AirbnbNames  []string
	BookingNames []string
	VrboNames    []string
}

// Aliases returns the alias list registered for p.
func (e Entity) Aliases(p Platform) []string {
	switch p {
	case PlatformBooking:
		return e.BookingNames
	case PlatformVrbo:
		return e.VrboNames
	default:
		return e.AirbnbNames
	}
}

// AllNames is the canonical name followed by every alias of every platform.
func (e Entity) AllNames() []string {
	out := make([]string, 0, 1+len(e.AirbnbNames)+len(e.BookingNames)+len(e.VrboNames))
	out = append(out, e.Name)
	out = append(out, e.AirbnbNames...)
	out = append(out, e.BookingNames...)
	out = append(out, e.VrboNames...)
	return out
}

// BillingUnit is a coarser grouping of properties used for accounting.
type BillingUnit struct {
	ID           string
	AccountID    string
	Name         string
	AirbnbNames  []string
	BookingNames []string
	VrboNames    []string
}

func (b BillingUnit) AsEntity() Entity {
	return Entity{
		ID:           b.ID,
		AccountID:    b.AccountID,
		Name:         b.Name,
		AirbnbNames:  b.AirbnbNames,
		BookingNames: b.BookingNames,
		VrboNames:    b.VrboNames,
	}
}

type MatchType string

const (
	MatchExactAlias MatchType = "exact-alias"
	MatchExactName  MatchType = "exact-name"
	MatchPartial    MatchType = "partial"
	MatchKeyword    MatchType = "keyword"
	MatchFuzzy      MatchType = "fuzzy"
	MatchNone       MatchType = "none"
)

type MatchResult struct {
	EntityID    string    `json:"entity_id"`
	EntityName  string    `json:"entity_name"`
	Confidence  int       `json:"confidence"`
	Type        MatchType `json:"match_type"`
	MatchedName string    `json:"matched_name,omitempty"`
}
