// Package series provides descriptive statistics over ordered daily price
// and volume series.
package series

import (
	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
)

// Summary holds descriptive statistics for a series of values.
type Summary struct {
	Min  float64
	Max  float64
	Mean float64
	Last float64
}

// VolumeSummary holds descriptive statistics for a volume series. The
// average is fractional even though individual volumes are integral.
type VolumeSummary struct {
	Average float64
	Max     int64
	Last    int64
}

// MovingAverage calculates a simple moving average over values.
//
// The first window-1 elements warm up with a shrinking window: each is the
// mean of every value seen so far. From index window-1 onward each element
// is the mean of the trailing window values. The result always has the same
// length as the input, so short series degrade gracefully instead of
// erroring out.
func MovingAverage(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, apperrors.ErrInvalidWindow
	}
	if len(values) == 0 {
		return nil, apperrors.ErrEmptySeries
	}

	result := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		if i >= window {
			running -= values[i-window]
			result[i] = running / float64(window)
		} else {
			result[i] = running / float64(i+1)
		}
	}
	return result, nil
}

// Summarize computes min, max, mean, and last value of a series.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, apperrors.ErrEmptySeries
	}

	s := Summary{
		Min:  values[0],
		Max:  values[0],
		Last: values[len(values)-1],
	}
	var total float64
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		total += v
	}
	s.Mean = total / float64(len(values))
	return s, nil
}

// SummarizeVolumes computes average, max, and last value of a volume series.
func SummarizeVolumes(vols []int64) (VolumeSummary, error) {
	if len(vols) == 0 {
		return VolumeSummary{}, apperrors.ErrEmptySeries
	}

	s := VolumeSummary{
		Max:  vols[0],
		Last: vols[len(vols)-1],
	}
	var total int64
	for _, v := range vols {
		if v > s.Max {
			s.Max = v
		}
		total += v
	}
	s.Average = float64(total) / float64(len(vols))
	return s, nil
}

// RangePercent returns how far high sits above low, as a percentage of low.
func RangePercent(low, high float64) (float64, error) {
	if low == 0 {
		return 0, apperrors.ErrDivisionByZero
	}
	return (high - low) / low * 100, nil
}

// Closes extracts close prices from candles.
func Closes(candles []models.Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, c := range candles {
		prices[i] = c.Close
	}
	return prices
}

// Volumes extracts volumes from candles.
func Volumes(candles []models.Candle) []int64 {
	vols := make([]int64, len(candles))
	for i, c := range candles {
		vols[i] = c.Volume
	}
	return vols
}
