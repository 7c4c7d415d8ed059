package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stayhook/internal/domain"
)

// ErrBadBody is returned for webhook bodies that are not a JSON object.
var ErrBadBody = errors.New("webhook body must be a JSON object")

// IntakeService records inbound webhooks as PENDING events. It never rejects
// a JSON object for missing reservation fields; the processor fails those.
type IntakeService struct {
	events domain.EventStore
	now    func() time.Time
}

func NewIntakeService(events domain.EventStore) *IntakeService {
	return &IntakeService{events: events, now: func() time.Time { return time.Now().UTC() }}
}

func (s *IntakeService) Record(ctx context.Context, accountID, source string, body []byte) (domain.InboundEvent, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	// Listing and reservation ids can exceed float64 precision.
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil || m == nil {
		return domain.InboundEvent{}, ErrBadBody
	}

	ev := domain.InboundEvent{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Source:     source,
		Payload:    mapReservation(m, source),
		RawJSON:    body,
		Status:     domain.StatusPending,
		ReceivedAt: s.now(),
	}
	if err := s.events.CreateEvent(ctx, ev); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("record event: %w", err)
	}
	log.Info().
		Str("event_id", ev.ID).
		Str("account_id", accountID).
		Str("source", source).
		Str("property_name", ev.Payload.PropertyName).
		Msg("webhook recorded")
	return ev, nil
}
