package utils

import (
	"testing"
	"time"

	"stocklens/internal/models"
)

func TestMarketStatusAt(t *testing.T) {
	// 2024-06-10 is a Monday.
	day := func(hour, minute int) time.Time {
		return time.Date(2024, 6, 10, hour, minute, 0, 0, IndiaLocation)
	}

	tests := []struct {
		name string
		at   time.Time
		want models.MarketStatus
	}{
		{"before pre-open", day(8, 59), models.MarketClosed},
		{"pre-open start", day(9, 0), models.MarketPreOpen},
		{"pre-open end", day(9, 14), models.MarketPreOpen},
		{"session open", day(9, 15), models.MarketOpen},
		{"mid session", day(12, 30), models.MarketOpen},
		{"last minute", day(15, 29), models.MarketOpen},
		{"session close", day(15, 30), models.MarketClosed},
		{"evening", day(20, 0), models.MarketClosed},
		{"saturday", time.Date(2024, 6, 8, 12, 0, 0, 0, IndiaLocation), models.MarketClosed},
		{"sunday", time.Date(2024, 6, 9, 12, 0, 0, 0, IndiaLocation), models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestMarketStatusAtConvertsZones(t *testing.T) {
	// 07:00 UTC on a weekday is 12:30 IST, mid session.
	at := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	if got := MarketStatusAt(at); got != models.MarketOpen {
		t.Errorf("MarketStatusAt(%v) = %s, want OPEN", at, got)
	}
}

func TestGetNextMarketOpenSkipsWeekends(t *testing.T) {
	next := GetNextMarketOpen()
	if next.Before(time.Now()) {
		t.Errorf("GetNextMarketOpen() = %v, want a future time", next)
	}
	if wd := next.Weekday(); wd == time.Saturday || wd == time.Sunday {
		t.Errorf("GetNextMarketOpen() = %v, falls on a weekend", next)
	}
	if next.Hour() != 9 || next.Minute() != 15 {
		t.Errorf("GetNextMarketOpen() = %v, want 09:15 IST", next)
	}
}
