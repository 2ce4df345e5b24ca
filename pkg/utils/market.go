package utils

import (
	"time"

	"stocklens/internal/models"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// MarketStatusAt returns the market status at the given instant. NSE and BSE
// share session times: pre-open 9:00-9:15, regular session 9:15-15:30 IST.
func MarketStatusAt(t time.Time) models.MarketStatus {
	ist := t.In(IndiaLocation)

	if ist.Weekday() == time.Saturday || ist.Weekday() == time.Sunday {
		return models.MarketClosed
	}

	timeMinutes := ist.Hour()*60 + ist.Minute()

	if timeMinutes >= 540 && timeMinutes < 555 {
		return models.MarketPreOpen
	}
	if timeMinutes >= 555 && timeMinutes < 930 {
		return models.MarketOpen
	}
	return models.MarketClosed
}

// GetMarketStatus returns the current market status.
func GetMarketStatus() models.MarketStatus {
	return MarketStatusAt(time.Now())
}

// IsMarketOpen returns true if the regular session is in progress.
func IsMarketOpen() bool {
	return GetMarketStatus() == models.MarketOpen
}

// GetNextMarketOpen returns the next regular session opening time.
func GetNextMarketOpen() time.Time {
	now := time.Now().In(IndiaLocation)

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, IndiaLocation)
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// GetMarketClose returns today's market close time.
func GetMarketClose() time.Time {
	now := time.Now().In(IndiaLocation)
	return time.Date(now.Year(), now.Month(), now.Day(), 15, 30, 0, 0, IndiaLocation)
}
