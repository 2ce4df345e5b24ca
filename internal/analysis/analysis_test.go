package analysis

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
)

// candlesFrom builds a daily series with the given closes and volumes.
func candlesFrom(closes []float64, vols []int64) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		var v int64 = 1000
		if i < len(vols) {
			v = vols[i]
		}
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    v,
		}
	}
	return candles
}

func constantCloses(n int, value float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return closes
}

func TestBuildWorkedExample(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())
	candles := candlesFrom(
		[]float64{100, 102, 101, 105, 110},
		[]int64{1000, 2000, 1500, 1800, 1200},
	)

	got, err := builder.Build("RELIANCE", models.NSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if got.StockInfo.Symbol != "RELIANCE" {
		t.Errorf("Symbol = %s, want RELIANCE", got.StockInfo.Symbol)
	}
	if got.StockInfo.Exchange != models.NSE {
		t.Errorf("Exchange = %s, want NSE", got.StockInfo.Exchange)
	}
	if got.StockInfo.TradingDays != 5 {
		t.Errorf("TradingDays = %d, want 5", got.StockInfo.TradingDays)
	}

	if got.PriceMetrics.CurrentPrice != 110 {
		t.Errorf("CurrentPrice = %f, want 110", got.PriceMetrics.CurrentPrice)
	}
	if got.PriceMetrics.High != 110 {
		t.Errorf("High = %f, want 110", got.PriceMetrics.High)
	}
	if got.PriceMetrics.Low != 100 {
		t.Errorf("Low = %f, want 100", got.PriceMetrics.Low)
	}
	if math.Abs(got.PriceMetrics.AveragePrice-103.6) > 1e-9 {
		t.Errorf("AveragePrice = %f, want 103.6", got.PriceMetrics.AveragePrice)
	}
	if math.Abs(got.PriceMetrics.RangePercent-10) > 1e-9 {
		t.Errorf("RangePercent = %f, want 10", got.PriceMetrics.RangePercent)
	}

	if got.VolumeMetrics.AverageVolume != 1500 {
		t.Errorf("AverageVolume = %f, want 1500", got.VolumeMetrics.AverageVolume)
	}
	if got.VolumeMetrics.MaxVolume != 2000 {
		t.Errorf("MaxVolume = %d, want 2000", got.VolumeMetrics.MaxVolume)
	}
	if got.VolumeMetrics.LastVolume != 1200 {
		t.Errorf("LastVolume = %d, want 1200", got.VolumeMetrics.LastVolume)
	}

	// Five days is well inside the warm-up of both windows, so both
	// averages equal the whole-series mean and the close sits above them.
	if math.Abs(got.TechnicalIndicators.MA50-103.6) > 1e-9 {
		t.Errorf("MA50 = %f, want 103.6", got.TechnicalIndicators.MA50)
	}
	if math.Abs(got.TechnicalIndicators.MA200-103.6) > 1e-9 {
		t.Errorf("MA200 = %f, want 103.6", got.TechnicalIndicators.MA200)
	}
	if got.TechnicalIndicators.VsMA50 != Above {
		t.Errorf("VsMA50 = %s, want Above", got.TechnicalIndicators.VsMA50)
	}
	if got.TechnicalIndicators.VsMA200 != Above {
		t.Errorf("VsMA200 = %s, want Above", got.TechnicalIndicators.VsMA200)
	}
}

func TestBuildRangePercentExample(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())
	candles := candlesFrom([]float64{50, 60}, nil)

	got, err := builder.Build("TCS", models.NSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if math.Abs(got.PriceMetrics.RangePercent-20) > 1e-9 {
		t.Errorf("RangePercent = %f, want 20", got.PriceMetrics.RangePercent)
	}
}

func TestBuildEqualPosition(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())

	// A constant series makes every moving average equal the close exactly.
	candles := candlesFrom(constantCloses(60, 100), nil)

	got, err := builder.Build("INFY", models.BSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got.TechnicalIndicators.VsMA50 != Equal {
		t.Errorf("VsMA50 = %s, want Equal", got.TechnicalIndicators.VsMA50)
	}
	if got.TechnicalIndicators.VsMA200 != Equal {
		t.Errorf("VsMA200 = %s, want Equal", got.TechnicalIndicators.VsMA200)
	}
	if got.PriceMetrics.RangePercent != 0 {
		t.Errorf("RangePercent = %f, want 0 for a flat series", got.PriceMetrics.RangePercent)
	}
	if got.StockInfo.Exchange != models.BSE {
		t.Errorf("Exchange = %s, want BSE", got.StockInfo.Exchange)
	}
}

func TestBuildBelowPosition(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())

	// A steady decline leaves the last close under both averages.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	candles := candlesFrom(closes, nil)

	got, err := builder.Build("SUNFLAG", models.NSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got.TechnicalIndicators.VsMA50 != Below {
		t.Errorf("VsMA50 = %s, want Below", got.TechnicalIndicators.VsMA50)
	}
	if got.TechnicalIndicators.VsMA200 != Below {
		t.Errorf("VsMA200 = %s, want Below", got.TechnicalIndicators.VsMA200)
	}
}

func TestBuildSingleCandle(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())
	candles := candlesFrom([]float64{42.5}, []int64{777})

	got, err := builder.Build("TCS", models.NSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got.StockInfo.TradingDays != 1 {
		t.Errorf("TradingDays = %d, want 1", got.StockInfo.TradingDays)
	}
	p := got.PriceMetrics
	if p.CurrentPrice != 42.5 || p.High != 42.5 || p.Low != 42.5 || p.AveragePrice != 42.5 {
		t.Errorf("price metrics = %+v, want all 42.5", p)
	}
	if p.RangePercent != 0 {
		t.Errorf("RangePercent = %f, want 0", p.RangePercent)
	}
	// The average of a one-point series is the point itself.
	if got.TechnicalIndicators.VsMA50 != Equal || got.TechnicalIndicators.VsMA200 != Equal {
		t.Errorf("positions = %s/%s, want Equal/Equal",
			got.TechnicalIndicators.VsMA50, got.TechnicalIndicators.VsMA200)
	}
	if got.VolumeMetrics.AverageVolume != 777 || got.VolumeMetrics.MaxVolume != 777 || got.VolumeMetrics.LastVolume != 777 {
		t.Errorf("volume metrics = %+v, want all 777", got.VolumeMetrics)
	}
}

func TestBuildEmptySeries(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())
	if _, err := builder.Build("RELIANCE", models.NSE, nil); !apperrors.Is(err, apperrors.ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
	if _, err := builder.Build("RELIANCE", models.NSE, []models.Candle{}); !apperrors.Is(err, apperrors.ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}

func TestBuildDeterminism(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())
	candles := candlesFrom(
		[]float64{95.2, 97.8, 96.1, 99.9, 101.3, 100.7, 103.2},
		[]int64{1200, 900, 1500, 2200, 1700, 1100, 1900},
	)

	first, err := builder.Build("HDFCBANK", models.NSE, candles)
	if err != nil {
		t.Fatalf("first Build returned error: %v", err)
	}
	second, err := builder.Build("HDFCBANK", models.NSE, candles)
	if err != nil {
		t.Fatalf("second Build returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two builds differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		price, ma float64
		want      Position
	}{
		{101, 100, Above},
		{99.9999, 100, Below},
		{100, 100, Equal},
		{0, 0, Equal},
	}
	for _, tt := range tests {
		if got := Compare(tt.price, tt.ma); got != tt.want {
			t.Errorf("Compare(%f, %f) = %s, want %s", tt.price, tt.ma, got, tt.want)
		}
	}
}

func TestBuildLongSeriesUsesTrailingWindows(t *testing.T) {
	builder := NewBuilder(zerolog.Nop())

	// 250 days: flat at 100 followed by a late jump to 110. The 50-day
	// average only sees part of the jump while the 200-day average sees
	// even less of it, so close > MA50 > MA200.
	closes := constantCloses(250, 100)
	for i := 240; i < 250; i++ {
		closes[i] = 110
	}
	candles := candlesFrom(closes, nil)

	got, err := builder.Build("RELIANCE", models.NSE, candles)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	ti := got.TechnicalIndicators
	if ti.VsMA50 != Above || ti.VsMA200 != Above {
		t.Errorf("positions = %s/%s, want Above/Above", ti.VsMA50, ti.VsMA200)
	}
	// MA50 covers the last 50 days: 40 at 100 and 10 at 110.
	wantMA50 := (40*100.0 + 10*110.0) / 50
	if math.Abs(ti.MA50-wantMA50) > 1e-9 {
		t.Errorf("MA50 = %f, want %f", ti.MA50, wantMA50)
	}
	// MA200 covers the last 200 days: 190 at 100 and 10 at 110.
	wantMA200 := (190*100.0 + 10*110.0) / 200
	if math.Abs(ti.MA200-wantMA200) > 1e-9 {
		t.Errorf("MA200 = %f, want %f", ti.MA200, wantMA200)
	}
	if ti.MA50 <= ti.MA200 {
		t.Errorf("MA50 (%f) should sit above MA200 (%f) after a late rally", ti.MA50, ti.MA200)
	}
}
