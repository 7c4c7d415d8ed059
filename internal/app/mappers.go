package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"stayhook/internal/domain"
	"stayhook/internal/matching"
)

/********** alias registry (single source of truth) **********/

// Channel managers name the same reservation fields differently; the first
// non-empty path wins.
var reservationAliases = map[string][]string{
	"externalId":         {"externalId", "external_id", "reservationId", "reservation_id", "bookingId", "booking_id", "id"},
	"propertyExternalId": {"propertyExternalId", "property_external_id", "propertyId", "property_id", "property.id", "listingId", "listing_id", "listing.id"},
	"propertyName":       {"propertyName", "property_name", "property.name", "listingName", "listing_name", "listing.name", "hotel_name"},
	"guestName":          {"guestName", "guest_name", "guest.name", "guest.full_name", "guest.fullName", "customer.name"},
	"guestFirst":         {"guest.first_name", "guest.firstName", "customer.first_name"},
	"guestLast":          {"guest.last_name", "guest.lastName", "customer.last_name"},
	"guestEmail":         {"guestEmail", "guest_email", "guest.email", "customer.email", "email"},
	"checkIn":            {"checkIn", "check_in", "checkin", "arrival", "arrival_date", "startDate", "start_date", "dates.check_in"},
	"checkOut":           {"checkOut", "check_out", "checkout", "departure", "departure_date", "endDate", "end_date", "dates.check_out"},
	"platform":           {"platform", "channel", "ota", "source"},
	"confirmationCode":   {"confirmationCode", "confirmation_code", "confirmation", "code", "reference"},
	"subject":            {"subject", "email.subject", "mail.subject"},
}

var earningsPaths = []string{"hostEarnings", "host_earnings", "payout", "total_payout", "price.payout", "amount"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or number, verbatim) at path, trimmed, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstAlias(m map[string]any, key string) string {
	for _, p := range reservationAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/string like "80,50").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case float64:
			f := v
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** reservation mapper **********/

// mapReservation builds the typed payload from a decoded webhook body. Fields
// are read from body["reservation"] when present, falling back to the root.
// A missing property name is recovered from a notification subject line.
func mapReservation(body map[string]any, source string) domain.ReservationPayload {
	root, nested := body, false
	if r, ok := body["reservation"].(map[string]any); ok {
		root, nested = r, true
	}
	get := func(key string) string {
		if s := firstAlias(root, key); s != "" {
			return s
		}
		if nested {
			return firstAlias(body, key)
		}
		return ""
	}

	p := domain.ReservationPayload{
		ExternalID:         get("externalId"),
		PropertyExternalID: get("propertyExternalId"),
		PropertyName:       get("propertyName"),
		GuestName:          get("guestName"),
		GuestEmail:         strings.ToLower(get("guestEmail")),
		CheckIn:            get("checkIn"),
		CheckOut:           get("checkOut"),
		Platform:           strings.ToLower(get("platform")),
		ConfirmationCode:   get("confirmationCode"),
		HostEarnings:       getFloatFlexible(root, earningsPaths...),
	}
	if p.GuestName == "" {
		p.GuestName = strings.TrimSpace(get("guestFirst") + " " + get("guestLast"))
	}
	if p.Platform == "" {
		p.Platform = strings.ToLower(source)
	}
	if p.PropertyName == "" {
		if name, ok := matching.ExtractPropertyName(get("subject")); ok {
			p.PropertyName = name
		}
	}
	return p
}
