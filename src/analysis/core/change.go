package core

import "math"

// -----------------------------------------------------------------------------

// DailyStats is the reduction of one day of sub-daily samples.
type DailyStats struct {
	Mean  float64
	Min   float64
	Max   float64
	Std   *float64 // sample std, nil for a single sample
	Count int
}

// ComputeDailyStats reduces samples to mean/min/max/std. ok is false when
// there are no samples.
func ComputeDailyStats(samples []float64) (DailyStats, bool) {
	if len(samples) == 0 {
		return DailyStats{}, false
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, v := range samples {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}

	stats := DailyStats{
		Mean:  CalculateMean(samples),
		Min:   low,
		Max:   high,
		Count: len(samples),
	}
	if std, ok := CalculateSampleStd(samples); ok {
		stats.Std = &std
	}
	return stats, true
}

// -----------------------------------------------------------------------------

// CalculateTrendPercent returns (current/average - 1) * 100, or nil when
// either side is missing or the average is zero.
func CalculateTrendPercent(current, average *float64) *float64 {
	if current == nil || average == nil || *average == 0 {
		return nil
	}
	trend := (*current / *average - 1) * 100
	if math.IsNaN(trend) || math.IsInf(trend, 0) {
		return nil
	}
	return &trend
}

// -----------------------------------------------------------------------------

// RoundHalfEven rounds to the nearest integer, ties to even.
func RoundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}

// RoundAbsPercent is the magnitude printed in trend alerts and report lines.
func RoundAbsPercent(v float64) int {
	return RoundHalfEven(math.Abs(v))
}
