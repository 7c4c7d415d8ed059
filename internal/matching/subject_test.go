package matching_test

import (
	"testing"

	"stayhook/internal/matching"
)

func TestExtractPropertyName(t *testing.T) {
	cases := []struct {
		subject string
		want    string
		ok      bool
	}{
		{"Reserva confirmada – The Nook Terrace – 15-18 de enero", "The Nook Terrace", true},
		{"Reservation confirmed — Casa Playa Azul — Jan 15-18", "Casa Playa Azul", true},
		{"Pago enviado por The Nook Terrace", "The Nook Terrace", true},
		{"Payout sent for Loft Gracia", "Loft Gracia", true},
		{"Pendiente: Solicitud de reserva en Casa Azul para el periodo del 3 al 5 de mayo", "Casa Azul", true},
		{"Nueva reserva de Juan García en Cozy Apartment", "Cozy Apartment", true},
		{"Tu reserva en Apartamento Centro ha sido confirmada", "Apartamento Centro", true},
		{"Cancelada: reserva HM4K7QX (del 25 mar – 5 abr 2026)", "", false},
		{"Reserva confirmada – HM4K7QX – enero", "", false},
		{"Reserva – 12 Rue de la Paix – confirmada", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := matching.ExtractPropertyName(c.subject)
		if ok != c.ok || got != c.want {
			t.Errorf("ExtractPropertyName(%q) = %q,%v want %q,%v", c.subject, got, ok, c.want, c.ok)
		}
	}
}
