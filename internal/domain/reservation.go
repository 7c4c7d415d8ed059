package domain

import (
	"strings"
	"time"
)

type Guest struct {
	ID        string
	AccountID string
	Name      string
	Email     string
	CreatedAt time.Time
}

type Reservation struct {
	ID               string
	AccountID        string
	EventID          string
	PropertyID       string
	BillingUnitID    *string
	GuestID          *string
	Channel          string // AIRBNB|BOOKING|VRBO|OTHER
	ConfirmationCode string
	GuestName        string
	GuestEmail       *string
	CheckIn          time.Time
	CheckOut         time.Time
	Nights           int
	HostEarnings     float64
	RoomTotal        float64
	CleaningFee      float64
	GuestServiceFee  float64
	HostServiceFee   float64
	Status           string
	ImportSource     string
}

// ReservationChannel maps a payload platform onto the stored channel enum.
func ReservationChannel(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "airbnb":
		return "AIRBNB"
	case "booking":
		return "BOOKING"
	case "vrbo":
		return "VRBO"
	default:
		return "OTHER"
	}
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// GuidebookDelivery is the ledger row that keeps a guest from receiving the
// same guide twice inside the dedupe window.
type GuidebookDelivery struct {
	ID            string
	PropertyID    string
	ReservationID *string
	GuestEmail    string
	GuestName     string
	Language      string
	GuideURL      string
	Status        DeliveryStatus
	SentAt        *time.Time
	ProviderID    *string
	Source        string
	CreatedAt     time.Time
}

// PropertyMatch is the resolver's answer for one event.
type PropertyMatch struct {
	PropertyID    string
	PropertyName  string
	Slug          *string
	BillingUnitID *string
	Via           string // external-id|name|billing-unit
	Result        *MatchResult
}
