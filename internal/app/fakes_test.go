package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"stayhook/internal/domain"
	"stayhook/internal/matching"
)

// ---- fakes ----

type fakeStore struct {
	mu sync.Mutex

	entities     map[string][]domain.Entity
	units        map[string][]domain.BillingUnit
	mappings     map[string]domain.Entity // platform|externalID
	modules      map[string]bool          // account|module
	hosts        map[string]string
	events       map[string]*domain.InboundEvent
	guests       []domain.Guest
	reservations []domain.Reservation
	deliveries   []domain.GuidebookDelivery

	listErr     error
	completeErr error
	onList      func() // runs inside ListEntities
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities: map[string][]domain.Entity{},
		units:    map[string][]domain.BillingUnit{},
		mappings: map[string]domain.Entity{},
		modules:  map[string]bool{},
		hosts:    map[string]string{},
		events:   map[string]*domain.InboundEvent{},
	}
}

func (f *fakeStore) addEvent(id, account string, p domain.ReservationPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[id] = &domain.InboundEvent{ID: id, AccountID: account, Payload: p, Status: domain.StatusPending, ReceivedAt: time.Now()}
}

func (f *fakeStore) event(id string) domain.InboundEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.events[id]
}

func (f *fakeStore) ListEntities(ctx context.Context, accountID string) ([]domain.Entity, error) {
	if f.onList != nil {
		f.onList()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entities[accountID], nil
}

func (f *fakeStore) ListBillingUnits(ctx context.Context, accountID string) ([]domain.BillingUnit, error) {
	return f.units[accountID], nil
}

func (f *fakeStore) FindByExternalID(ctx context.Context, accountID, platform, externalID string) (domain.Entity, error) {
	e, ok := f.mappings[platform+"|"+externalID]
	if !ok || e.AccountID != accountID {
		return domain.Entity{}, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) HasModule(ctx context.Context, accountID, module string) (bool, error) {
	return f.modules[accountID+"|"+module], nil
}

func (f *fakeStore) HostName(ctx context.Context, accountID string) (string, error) {
	if h, ok := f.hosts[accountID]; ok {
		return h, nil
	}
	return "", domain.ErrNotFound
}

func (f *fakeStore) CreateEvent(ctx context.Context, ev domain.InboundEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[ev.ID] = &ev
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (domain.InboundEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return domain.InboundEvent{}, domain.ErrNotFound
	}
	return *ev, nil
}

func (f *fakeStore) ListPending(ctx context.Context, limit int) ([]domain.InboundEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InboundEvent
	for _, ev := range f.events {
		if ev.Status == domain.StatusPending && len(out) < limit {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkProcessing(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok || ev.Status != domain.StatusPending {
		return false, nil
	}
	ev.Status = domain.StatusProcessing
	return true, nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.events[id]
	ev.Status, ev.ProcessedAt = domain.StatusProcessed, &at
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, id, msg string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.events[id]
	ev.Status, ev.Error, ev.ProcessedAt = domain.StatusFailed, &msg, &at
	return nil
}

func (f *fakeStore) FindGuestByEmail(ctx context.Context, accountID, email string) (domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.AccountID == accountID && strings.EqualFold(g.Email, email) {
			return g, nil
		}
	}
	return domain.Guest{}, domain.ErrNotFound
}

func (f *fakeStore) CreateGuest(ctx context.Context, g domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests = append(f.guests, g)
	return nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, r domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations = append(f.reservations, r)
	return nil
}

func (f *fakeStore) FindReservationByCode(ctx context.Context, accountID, channel, code string) (domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.AccountID == accountID && r.Channel == channel && r.ConfirmationCode == code {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.ErrNotFound
}

func (f *fakeStore) ClaimDelivery(ctx context.Context, d domain.GuidebookDelivery, window, inflight time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, x := range f.deliveries {
		if x.PropertyID != d.PropertyID || !strings.EqualFold(x.GuestEmail, d.GuestEmail) {
			continue
		}
		if x.Status == domain.DeliverySent && x.CreatedAt.After(now.Add(-window)) {
			return false, nil
		}
		if x.Status == domain.DeliveryPending && x.CreatedAt.After(now.Add(-inflight)) {
			return false, nil
		}
	}
	f.deliveries = append(f.deliveries, d)
	return true, nil
}

func (f *fakeStore) CompleteDelivery(ctx context.Context, id string, status domain.DeliveryStatus, sentAt *time.Time, providerID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	for i := range f.deliveries {
		if f.deliveries[i].ID == id {
			f.deliveries[i].Status, f.deliveries[i].SentAt, f.deliveries[i].ProviderID = status, sentAt, providerID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) sentDeliveries() []domain.GuidebookDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.GuidebookDelivery
	for _, d := range f.deliveries {
		if d.SentAt != nil {
			out = append(out, d)
		}
	}
	return out
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.Message
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, msg domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("provider unavailable")
	}
	m.sent = append(m.sent, msg)
	return "msg-" + msg.To, nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *matching.Suggestions:
		*d = v.(matching.Suggestions)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }
