package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type EventStatus string

const (
	StatusPending    EventStatus = "PENDING"
	StatusProcessing EventStatus = "PROCESSING"
	StatusProcessed  EventStatus = "PROCESSED"
	StatusFailed     EventStatus = "FAILED"
)

func (s EventStatus) Terminal() bool { return s == StatusProcessed || s == StatusFailed }

// InboundEvent is one received webhook notification.
type InboundEvent struct {
	ID          string
	AccountID   string
	Source      string // webhook provider, e.g. "cloudbeds"
	Payload     ReservationPayload
	RawJSON     []byte // body as received
	Status      EventStatus
	Error       *string
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}

// ReservationPayload is the typed reservation carried by an event.
type ReservationPayload struct {
	ExternalID         string   `json:"externalId" validate:"required"`
	PropertyExternalID string   `json:"propertyExternalId,omitempty"`
	PropertyName       string   `json:"propertyName,omitempty"`
	GuestName          string   `json:"guestName" validate:"required"`
	GuestEmail         string   `json:"guestEmail,omitempty" validate:"omitempty,email"`
	CheckIn            string   `json:"checkIn" validate:"required,staydate"`
	CheckOut           string   `json:"checkOut" validate:"required,staydate"`
	Platform           string   `json:"platform" validate:"required"`
	ConfirmationCode   string   `json:"confirmationCode,omitempty"`
	HostEarnings       *float64 `json:"hostEarnings,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("staydate", func(fl validator.FieldLevel) bool {
		_, err := ParseStayDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate reports every missing or malformed field wrapped in ErrInvalidPayload.
func (p ReservationPayload) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		default:
			parts = append(parts, fe.Field()+" is not a valid "+fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(parts, ", "))
}

var stayDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseStayDate accepts ISO dates with or without a time part. Times without
// a zone are read as UTC.
func ParseStayDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range stayDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// Nights is ceil((checkOut-checkIn)/24h), never less than one.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	n := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}

// EventView is the read model served by the status endpoint.
type EventView struct {
	ID          string             `json:"id"`
	AccountID   string             `json:"account_id"`
	Source      string             `json:"source"`
	Status      EventStatus        `json:"status"`
	Error       *string            `json:"error,omitempty"`
	Reservation ReservationPayload `json:"reservation"`
	ReceivedAt  time.Time          `json:"received_at"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
}

func (e InboundEvent) View() EventView {
	return EventView{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Source:      e.Source,
		Status:      e.Status,
		Error:       e.Error,
		Reservation: e.Payload,
		ReceivedAt:  e.ReceivedAt,
		ProcessedAt: e.ProcessedAt,
	}
}
