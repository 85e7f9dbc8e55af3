package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestComputeDailyStats(t *testing.T) {
	stats, ok := ComputeDailyStats([]float64{60, 70, 80})
	require.True(t, ok)
	assert.InDelta(t, 70.0, stats.Mean, 1e-9)
	assert.Equal(t, 60.0, stats.Min)
	assert.Equal(t, 80.0, stats.Max)
	assert.Equal(t, 3, stats.Count)
	require.NotNil(t, stats.Std)
	assert.InDelta(t, 10.0, *stats.Std, 1e-9)

	single, ok := ComputeDailyStats([]float64{55})
	require.True(t, ok)
	assert.Nil(t, single.Std)

	_, ok = ComputeDailyStats(nil)
	assert.False(t, ok)
}

func TestCalculateTrendPercent(t *testing.T) {
	got := CalculateTrendPercent(ptr(100), ptr(80))
	require.NotNil(t, got)
	assert.InDelta(t, 25.0, *got, 1e-9)

	assert.Nil(t, CalculateTrendPercent(ptr(100), ptr(0)))
	assert.Nil(t, CalculateTrendPercent(nil, ptr(80)))
	assert.Nil(t, CalculateTrendPercent(ptr(100), nil))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2, RoundHalfEven(2.5))
	assert.Equal(t, 4, RoundHalfEven(3.5))
	assert.Equal(t, 12, RoundAbsPercent(-12.5))
	assert.Equal(t, 21, RoundAbsPercent(-20.6))
}

func TestSampleStdAndZScore(t *testing.T) {
	_, ok := CalculateSampleStd([]float64{1})
	assert.False(t, ok)

	std, ok := CalculateSampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 2.138, std, 1e-3)

	assert.Equal(t, 0.0, CalculateZScore(5, 5, 0))
	assert.InDelta(t, 2.0, CalculateZScore(9, 5, 2), 1e-9)
}

func TestNonNull(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, NonNull([]*float64{ptr(1), nil, ptr(3)}))
	assert.Empty(t, NonNull(nil))
}
