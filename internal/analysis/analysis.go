// Package analysis builds the single-equity report computed from a fetched
// daily candle series.
package analysis

import (
	"github.com/rs/zerolog"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
	"stocklens/internal/series"
)

// Moving-average windows used for positioning, in trading days.
const (
	ShortMAWindow = 50
	LongMAWindow  = 200
)

// Position locates the latest close relative to a moving average.
type Position string

const (
	Above Position = "Above"
	Below Position = "Below"
	Equal Position = "Equal"
)

// Compare locates a price relative to a moving-average value. Exact equality
// is reported as Equal rather than being folded into Below.
func Compare(price, ma float64) Position {
	switch {
	case price > ma:
		return Above
	case price < ma:
		return Below
	default:
		return Equal
	}
}

// StockInfo identifies the analyzed instrument.
type StockInfo struct {
	Symbol      string          `json:"symbol"`
	Exchange    models.Exchange `json:"exchange"`
	TradingDays int             `json:"trading_days"`
}

// PriceMetrics summarizes the close-price series.
type PriceMetrics struct {
	CurrentPrice float64 `json:"current_price"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	AveragePrice float64 `json:"average_price"`
	RangePercent float64 `json:"price_range_pct"`
}

// VolumeMetrics summarizes the volume series.
type VolumeMetrics struct {
	AverageVolume float64 `json:"average_volume"`
	MaxVolume     int64   `json:"max_volume"`
	LastVolume    int64   `json:"last_volume"`
}

// TechnicalIndicators carries the moving-average positioning of the latest
// close. Both averages are warm-up averages, so they are defined for series
// shorter than their windows.
type TechnicalIndicators struct {
	VsMA50  Position `json:"current_vs_50ma"`
	VsMA200 Position `json:"current_vs_200ma"`
	MA50    float64  `json:"ma50_value"`
	MA200   float64  `json:"ma200_value"`
}

// Analysis is the full report for one symbol. It is a pure function of its
// inputs: rebuilding from the same candles yields an identical value.
type Analysis struct {
	StockInfo           StockInfo           `json:"stock_info"`
	PriceMetrics        PriceMetrics        `json:"price_metrics"`
	VolumeMetrics       VolumeMetrics       `json:"volume_metrics"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
}

// Builder computes analysis reports.
type Builder struct {
	shortWindow int
	longWindow  int
	logger      zerolog.Logger
}

// NewBuilder creates a Builder with the standard 50/200 day windows.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{
		shortWindow: ShortMAWindow,
		longWindow:  LongMAWindow,
		logger:      logger.With().Str("component", "analysis").Logger(),
	}
}

// Build computes the report for one symbol from its ordered candle series.
// The exchange is whichever exchange actually served the data, so a fallback
// fetch stamps the fallback exchange here.
func (b *Builder) Build(symbol string, exchange models.Exchange, candles []models.Candle) (*Analysis, error) {
	if len(candles) == 0 {
		return nil, apperrors.ErrEmptySeries
	}

	closes := series.Closes(candles)
	vols := series.Volumes(candles)

	priceSummary, err := series.Summarize(closes)
	if err != nil {
		return nil, err
	}
	rangePct, err := series.RangePercent(priceSummary.Min, priceSummary.Max)
	if err != nil {
		return nil, err
	}
	volSummary, err := series.SummarizeVolumes(vols)
	if err != nil {
		return nil, err
	}

	maShort, err := series.MovingAverage(closes, b.shortWindow)
	if err != nil {
		return nil, err
	}
	maLong, err := series.MovingAverage(closes, b.longWindow)
	if err != nil {
		return nil, err
	}

	last := priceSummary.Last
	lastShort := maShort[len(maShort)-1]
	lastLong := maLong[len(maLong)-1]

	b.logger.Debug().
		Str("symbol", symbol).
		Str("exchange", string(exchange)).
		Int("trading_days", len(candles)).
		Float64("close", last).
		Msg("Analysis built")

	return &Analysis{
		StockInfo: StockInfo{
			Symbol:      symbol,
			Exchange:    exchange,
			TradingDays: len(candles),
		},
		PriceMetrics: PriceMetrics{
			CurrentPrice: last,
			High:         priceSummary.Max,
			Low:          priceSummary.Min,
			AveragePrice: priceSummary.Mean,
			RangePercent: rangePct,
		},
		VolumeMetrics: VolumeMetrics{
			AverageVolume: volSummary.Average,
			MaxVolume:     volSummary.Max,
			LastVolume:    volSummary.Last,
		},
		TechnicalIndicators: TechnicalIndicators{
			VsMA50:  Compare(last, lastShort),
			VsMA200: Compare(last, lastLong),
			MA50:    lastShort,
			MA200:   lastLong,
		},
	}, nil
}
