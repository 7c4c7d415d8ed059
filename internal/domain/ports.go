package domain

import (
	"context"
	"time"
)

// EntityDirectory is read fresh on every processor run.
type EntityDirectory interface {
	ListEntities(ctx context.Context, accountID string) ([]Entity, error)
	ListBillingUnits(ctx context.Context, accountID string) ([]BillingUnit, error)
	// FindByExternalID looks up the (platform, externalID) mapping. It returns
	// ErrNotFound unless the mapping exists and the entity belongs to accountID.
	FindByExternalID(ctx context.Context, accountID, platform, externalID string) (Entity, error)
}

type AccountStore interface {
	HasModule(ctx context.Context, accountID, module string) (bool, error)
	HostName(ctx context.Context, accountID string) (string, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, ev InboundEvent) error
	GetEvent(ctx context.Context, id string) (InboundEvent, error)
	ListPending(ctx context.Context, limit int) ([]InboundEvent, error)
	// MarkProcessing moves a PENDING event to PROCESSING. It reports false when
	// the event was not PENDING any more.
	MarkProcessing(ctx context.Context, id string) (bool, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, msg string, at time.Time) error
}

type GuestStore interface {
	FindGuestByEmail(ctx context.Context, accountID, email string) (Guest, error)
	CreateGuest(ctx context.Context, g Guest) error
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r Reservation) error
	FindReservationByCode(ctx context.Context, accountID, channel, code string) (Reservation, error)
}

// DeliveryLedger must make ClaimDelivery atomic per (property, email): two
// concurrent claims for the same pair inside the window never both succeed.
type DeliveryLedger interface {
	// ClaimDelivery inserts d as PENDING unless a SENT record newer than window,
	// or a PENDING record newer than inflight, already exists for the pair.
	ClaimDelivery(ctx context.Context, d GuidebookDelivery, window, inflight time.Duration) (bool, error)
	CompleteDelivery(ctx context.Context, id string, status DeliveryStatus, sentAt *time.Time, providerID *string) error
}

// Store is everything the event processor persists through.
type Store interface {
	EntityDirectory
	AccountStore
	EventStore
	GuestStore
	ReservationStore
	DeliveryLedger
}

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tags    []string
}

type Mailer interface {
	// Send returns the provider message id.
	Send(ctx context.Context, m Message) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
