package tools

import (
	"strings"
	"testing"
	"time"
)

func TestCurrentTime_UTC(t *testing.T) {
	fixed := time.Date(2025, 3, 9, 7, 5, 2, 0, time.UTC)
	def := currentTimeWithClock(func() time.Time { return fixed })

	res := invoke(t, def, map[string]any{"timezone": "UTC"})
	if res.IsError {
		t.Fatal("unexpected IsError")
	}
	got := textOf(t, res)
	if !strings.Contains(got, "UTC") {
		t.Errorf("text %q does not name the zone", got)
	}
	if !strings.Contains(got, "2025-03-09 07:05:02") {
		t.Errorf("text %q does not carry the fixed-width timestamp", got)
	}
}

func TestCurrentTime_ZoneConversion(t *testing.T) {
	fixed := time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC)
	def := currentTimeWithClock(func() time.Time { return fixed })

	res := invoke(t, def, map[string]any{"timezone": "Asia/Seoul"})
	got := textOf(t, res)
	// Seoul is UTC+9 year-round.
	if !strings.Contains(got, "2025-03-09 16:00:00") {
		t.Errorf("text %q not converted to Asia/Seoul", got)
	}
}

func TestCurrentTime_InvalidZoneIsBusinessError(t *testing.T) {
	res := invoke(t, CurrentTime(), map[string]any{"timezone": "Not/AZone"})
	if !res.IsError {
		t.Fatal("invalid zone must set IsError")
	}
	if got := textOf(t, res); !strings.Contains(got, "Not/AZone") {
		t.Errorf("error text %q does not name the zone", got)
	}
}
