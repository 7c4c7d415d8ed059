package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"stayhook/internal/domain"
)

func validPayload() domain.ReservationPayload {
	return domain.ReservationPayload{
		ExternalID: "r-1", GuestName: "Ana", GuestEmail: "ana@example.com",
		CheckIn: "2026-01-15", CheckOut: "2026-01-18T11:00:00Z", Platform: "airbnb",
	}
}

func TestValidate(t *testing.T) {
	if err := validPayload().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := validPayload()
	p.ExternalID, p.CheckIn, p.GuestEmail = "", "15/01/2026", "not-an-email"
	err := p.Validate()
	if !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	for _, want := range []string{"externalId is required", "checkIn is not a valid staydate", "guestEmail is not a valid email"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestNights(t *testing.T) {
	d := func(s string) time.Time {
		t.Helper()
		v, err := domain.ParseStayDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	cases := []struct {
		in, out string
		want    int
	}{
		{"2026-01-15", "2026-01-18", 3},
		{"2026-01-15", "2026-01-15", 1},
		{"2026-01-15T15:00:00", "2026-01-16 11:00:00", 1},
		{"2026-01-15T10:00:00Z", "2026-01-17T11:00:00Z", 3},
		{"2026-01-18", "2026-01-15", 1},
	}
	for _, c := range cases {
		if got := domain.Nights(d(c.in), d(c.out)); got != c.want {
			t.Fatalf("Nights(%s, %s) = %d, want %d", c.in, c.out, got, c.want)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	for in, want := range map[string]domain.Platform{
		"Booking.com": domain.PlatformBooking, "bookingcom": domain.PlatformBooking,
		"HomeAway": domain.PlatformVrbo, "vrbo": domain.PlatformVrbo,
		"airbnb": domain.PlatformAirbnb, "expedia": domain.PlatformAirbnb, "": domain.PlatformAirbnb,
	} {
		if got := domain.ParsePlatform(in); got != want {
			t.Fatalf("ParsePlatform(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestReservationChannel(t *testing.T) {
	if domain.ReservationChannel(" Booking ") != "BOOKING" || domain.ReservationChannel("expedia") != "OTHER" {
		t.Fatal("unexpected channel mapping")
	}
}
