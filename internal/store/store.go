// Package store provides local caching of fetched candle history.
package store

import (
	"context"
	"time"

	"stocklens/internal/models"
)

// SeriesStore defines the interface for the candle cache. Only raw fetched
// candles are stored; computed analysis results never touch disk.
type SeriesStore interface {
	// SaveCandles upserts a fetched series and records the fetch time
	// together with the start of the range the fetch covered.
	SaveCandles(ctx context.Context, symbol string, exchange models.Exchange, from time.Time, candles []models.Candle) error

	// GetCandles returns cached candles in chronological order.
	GetCandles(ctx context.Context, symbol string, exchange models.Exchange, from, to time.Time) ([]models.Candle, error)

	// LastFetched returns when the series was last fetched from the
	// network and the start of the range that fetch covered. A zero
	// fetch time means the series was never fetched.
	LastFetched(ctx context.Context, symbol string, exchange models.Exchange) (fetchedAt, from time.Time, err error)

	// Close releases the underlying database.
	Close() error
}
