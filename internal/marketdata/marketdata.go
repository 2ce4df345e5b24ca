// Package marketdata fetches daily candle history for Indian equities.
package marketdata

import (
	"context"
	"time"

	"stocklens/internal/models"
)

// HistoryRequest describes a daily history fetch. The interval is always one
// trading day.
type HistoryRequest struct {
	Symbol   string
	Exchange models.Exchange
	From     time.Time
	To       time.Time
}

// Provider fetches candle history from a market data source.
type Provider interface {
	// History returns daily candles in chronological order. A symbol that
	// is unknown to the exchange yields ErrNoData.
	History(ctx context.Context, req HistoryRequest) ([]models.Candle, error)
}

// Data source tags surfaced to the presentation layer.
const (
	SourceYahoo = "YAHOO"
	SourceCache = "CACHE"
)

// Result is a fetched series together with where it came from. Exchange is
// whichever exchange actually served the data, so a fallback fetch reports
// the fallback exchange.
type Result struct {
	Candles  []models.Candle
	Exchange models.Exchange
	Source   string
}
