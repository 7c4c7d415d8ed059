package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stayhook/internal/adapters/observability"
	"stayhook/internal/domain"
)

// ModuleReservations is the account module that enables reservation records.
const ModuleReservations = "GESTION"

var errNoMatch = errors.New(domain.ErrMsgNoMatch)

type ProcessorConfig struct {
	MinConfidence      int
	DeliveryWindow     time.Duration // dedupe window per (property, guest email)
	InflightTTL        time.Duration // how long an unfinished claim blocks other senders
	SendTimeout        time.Duration
	GuideBaseURL       string
	Language           string
	DedupeReservations bool
}

func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.MinConfidence <= 0 {
		c.MinConfidence = 60
	}
	if c.DeliveryWindow <= 0 {
		c.DeliveryWindow = 7 * 24 * time.Hour
	}
	if c.InflightTTL <= 0 {
		c.InflightTTL = 10 * time.Minute
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 15 * time.Second
	}
	if c.GuideBaseURL == "" {
		c.GuideBaseURL = "https://www.itineramio.com"
	}
	return c
}

// EventProcessor runs one webhook event through matching, reservation
// persistence and guidebook delivery, then records a terminal status.
type EventProcessor struct {
	store  domain.Store
	mailer domain.Mailer
	cfg    ProcessorConfig
	now    func() time.Time
	newID  func() string
	render func(lang string, d guidebookData) (subject, html, text string, err error)
}

func NewEventProcessor(s domain.Store, m domain.Mailer, cfg ProcessorConfig) *EventProcessor {
	return &EventProcessor{
		store:  s,
		mailer: m,
		cfg:    cfg.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		render: renderGuidebook,
	}
}

// Process claims the event and runs it to a terminal status. The returned
// status is the one recorded; an event that was no longer PENDING is left
// untouched and reported with its current status. err is only set when the
// status itself could not be read or written.
func (p *EventProcessor) Process(ctx context.Context, eventID string) (domain.EventStatus, error) {
	ev, err := p.store.GetEvent(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("load event %s: %w", eventID, err)
	}
	claimed, err := p.store.MarkProcessing(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("claim event %s: %w", eventID, err)
	}
	if !claimed {
		log.Debug().Str("event_id", eventID).Str("status", string(ev.Status)).Msg("event not pending, skipping")
		return ev.Status, nil
	}

	l := log.With().Str("event_id", ev.ID).Str("account_id", ev.AccountID).Logger()

	// A claimed event runs to a terminal status even if the caller gives up;
	// the email send stays bounded by SendTimeout.
	wctx := context.WithoutCancel(ctx)
	runErr := p.run(wctx, ev)

	at := p.now()
	if runErr == nil {
		if err := p.store.MarkProcessed(wctx, ev.ID, at); err != nil {
			return domain.StatusProcessing, fmt.Errorf("mark processed %s: %w", ev.ID, err)
		}
		observability.ObserveEvent(string(domain.StatusProcessed), "ok")
		l.Info().Msg("event processed")
		return domain.StatusProcessed, nil
	}

	reason := "error"
	switch {
	case errors.Is(runErr, errNoMatch):
		reason = "no_match"
		l.Warn().Str("property_name", ev.Payload.PropertyName).Msg("no matching property")
	case errors.Is(runErr, domain.ErrInvalidPayload):
		reason = "invalid"
		l.Warn().Err(runErr).Msg("malformed reservation payload")
	default:
		l.Error().Err(runErr).Msg("event processing failed")
	}
	if err := p.store.MarkFailed(wctx, ev.ID, runErr.Error(), at); err != nil {
		return domain.StatusProcessing, fmt.Errorf("mark failed %s: %w", ev.ID, err)
	}
	observability.ObserveEvent(string(domain.StatusFailed), reason)
	return domain.StatusFailed, nil
}

func (p *EventProcessor) run(ctx context.Context, ev domain.InboundEvent) error {
	res := ev.Payload
	if err := res.Validate(); err != nil {
		return err
	}

	r := &resolver{dir: p.store, minConfidence: p.cfg.MinConfidence}
	match, ok, err := r.resolve(ctx, ev.AccountID, res)
	if err != nil {
		return err
	}
	if !ok {
		return errNoMatch
	}
	mt := "external-id"
	if match.Result != nil {
		mt = string(match.Result.Type)
	}
	observability.ObserveMatch(match.Via, mt)
	log.Debug().Str("event_id", ev.ID).Str("property_id", match.PropertyID).
		Str("via", match.Via).Str("match_type", mt).Msg("property matched")

	var reservationID *string
	if match.BillingUnitID != nil {
		enabled, err := p.store.HasModule(ctx, ev.AccountID, ModuleReservations)
		if err != nil {
			return fmt.Errorf("check reservations module: %w", err)
		}
		if enabled {
			id, err := p.recordReservation(ctx, ev, match)
			if err != nil {
				return err
			}
			reservationID = &id
		}
	}

	if res.GuestEmail != "" {
		if err := p.deliverGuidebook(ctx, ev, match, reservationID); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventProcessor) recordReservation(ctx context.Context, ev domain.InboundEvent, match domain.PropertyMatch) (string, error) {
	res := ev.Payload
	channel := domain.ReservationChannel(res.Platform)
	code := res.ConfirmationCode
	if code == "" {
		code = res.ExternalID
	}

	if p.cfg.DedupeReservations {
		existing, err := p.store.FindReservationByCode(ctx, ev.AccountID, channel, code)
		switch {
		case err == nil:
			log.Info().Str("event_id", ev.ID).Str("reservation_id", existing.ID).Msg("reservation already recorded")
			return existing.ID, nil
		case !errors.Is(err, domain.ErrNotFound):
			return "", fmt.Errorf("find reservation: %w", err)
		}
	}

	checkIn, err := domain.ParseStayDate(res.CheckIn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	checkOut, err := domain.ParseStayDate(res.CheckOut)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	var guestID, guestEmail *string
	if res.GuestEmail != "" {
		id, err := p.upsertGuest(ctx, ev.AccountID, res.GuestName, res.GuestEmail)
		if err != nil {
			return "", err
		}
		email := res.GuestEmail
		guestID, guestEmail = &id, &email
	}

	earnings := 0.0
	if res.HostEarnings != nil {
		earnings = *res.HostEarnings
	}
	rv := domain.Reservation{
		ID:               p.newID(),
		AccountID:        ev.AccountID,
		EventID:          ev.ID,
		PropertyID:       match.PropertyID,
		BillingUnitID:    match.BillingUnitID,
		GuestID:          guestID,
		Channel:          channel,
		ConfirmationCode: code,
		GuestName:        res.GuestName,
		GuestEmail:       guestEmail,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Nights:           domain.Nights(checkIn, checkOut),
		HostEarnings:     earnings,
		RoomTotal:        earnings,
		Status:           "CONFIRMED",
		ImportSource:     "API_WEBHOOK",
	}
	if err := p.store.CreateReservation(ctx, rv); err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}
	return rv.ID, nil
}

func (p *EventProcessor) upsertGuest(ctx context.Context, accountID, name, email string) (string, error) {
	g, err := p.store.FindGuestByEmail(ctx, accountID, email)
	if err == nil {
		return g.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("find guest: %w", err)
	}
	g = domain.Guest{ID: p.newID(), AccountID: accountID, Name: name, Email: email, CreatedAt: p.now()}
	err = p.store.CreateGuest(ctx, g)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with another event for the same guest.
		existing, ferr := p.store.FindGuestByEmail(ctx, accountID, email)
		if ferr != nil {
			return "", fmt.Errorf("find guest: %w", ferr)
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", fmt.Errorf("create guest: %w", err)
	}
	return g.ID, nil
}

func (p *EventProcessor) deliverGuidebook(ctx context.Context, ev domain.InboundEvent, match domain.PropertyMatch, reservationID *string) error {
	res := ev.Payload
	lang := guidebookLanguage(p.cfg.Language)
	d := domain.GuidebookDelivery{
		ID:            p.newID(),
		PropertyID:    match.PropertyID,
		ReservationID: reservationID,
		GuestEmail:    res.GuestEmail,
		GuestName:     res.GuestName,
		Language:      lang,
		GuideURL:      guideURL(p.cfg.GuideBaseURL, match.PropertyID, match.Slug),
		Status:        domain.DeliveryPending,
		Source:        "API",
		CreatedAt:     p.now(),
	}
	claimed, err := p.store.ClaimDelivery(ctx, d, p.cfg.DeliveryWindow, p.cfg.InflightTTL)
	if err != nil {
		return fmt.Errorf("claim guidebook delivery: %w", err)
	}
	if !claimed {
		observability.ObserveDelivery("duplicate")
		log.Debug().Str("event_id", ev.ID).Str("property_id", match.PropertyID).Msg("guidebook already delivered recently, skipping")
		return nil
	}

	host, err := p.store.HostName(ctx, ev.AccountID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Str("account_id", ev.AccountID).Msg("host name lookup failed")
	}
	subject, html, text, err := p.render(lang, guidebookData{
		GuestName: res.GuestName, PropertyName: match.PropertyName, GuideURL: d.GuideURL, HostName: host,
	})
	if err != nil {
		if cerr := p.completeDelivery(ctx, d.ID, domain.DeliveryFailed, nil, nil); cerr != nil {
			log.Error().Err(cerr).Str("delivery_id", d.ID).Msg("release guidebook claim failed")
			return errors.Join(err, cerr)
		}
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, p.cfg.SendTimeout)
	providerID, sendErr := p.mailer.Send(sctx, domain.Message{
		To: res.GuestEmail, Subject: subject, HTML: html, Text: text,
		Tags: []string{"guidebook-delivery", match.PropertyID},
	})
	cancel()

	if sendErr != nil {
		// The event still succeeds; a FAILED delivery never blocks a later send.
		observability.ObserveDelivery("failed")
		log.Warn().Err(sendErr).Str("event_id", ev.ID).Str("property_id", match.PropertyID).Msg("guidebook send failed")
		return p.completeDelivery(ctx, d.ID, domain.DeliveryFailed, nil, nil)
	}
	sentAt := p.now()
	observability.ObserveDelivery("sent")
	var pid *string
	if providerID != "" {
		pid = &providerID
	}
	return p.completeDelivery(ctx, d.ID, domain.DeliverySent, &sentAt, pid)
}

func (p *EventProcessor) completeDelivery(ctx context.Context, id string, status domain.DeliveryStatus, sentAt *time.Time, providerID *string) error {
	if err := p.store.CompleteDelivery(context.WithoutCancel(ctx), id, status, sentAt, providerID); err != nil {
		return fmt.Errorf("complete guidebook delivery: %w", err)
	}
	return nil
}
