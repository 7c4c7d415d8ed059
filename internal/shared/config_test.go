package shared_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"stayhook/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t) // no .env
	for _, k := range []string{"MIN_MATCH_CONFIDENCE", "DELIVERY_WINDOW_HOURS", "DEDUPE_RESERVATIONS", "PROCESSOR_WORKERS"} {
		t.Setenv(k, "")
	}
	c := shared.Load()
	if c.MinConfidence != 60 || c.DeliveryWindow != 168*time.Hour || c.DedupeReservations || c.Workers != 4 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MIN_MATCH_CONFIDENCE", "75")
	t.Setenv("DELIVERY_WINDOW_HOURS", "24")
	t.Setenv("DEDUPE_RESERVATIONS", "true")
	t.Setenv("PROCESSOR_POLL_SECONDS", "oops")

	c := shared.Load()
	if c.MinConfidence != 75 || c.DeliveryWindow != 24*time.Hour || !c.DedupeReservations {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.PollInterval != 5*time.Second {
		t.Fatalf("bad integer should fall back to default, got %v", c.PollInterval)
	}
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MIN_MATCH_CONFIDENCE", "150")
	t.Setenv("PROCESSOR_WORKERS", "0")
	t.Setenv("GUIDE_LANGUAGE", "de")

	err := shared.Load().Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"MinConfidence", "Workers", "GuideLanguage"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %s", err, want)
		}
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
