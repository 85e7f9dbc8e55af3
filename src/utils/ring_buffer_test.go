package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func values(series []*float64) []any {
	out := make([]any, len(series))
	for i, v := range series {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}

func TestRingBuffer_Eviction(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, v := range []float64{1, 2, 3, 4} {
		rb.Append(f(v))
	}

	assert.True(t, rb.IsFull())
	assert.Equal(t, []any{2.0, 3.0, 4.0}, values(rb.GetAll()))

	mean, ok := rb.Mean(3)
	require.True(t, ok)
	assert.InDelta(t, 3.0, mean, 1e-9)

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	assert.Empty(t, rb.GetAll())
}

func TestRingBuffer_MeanSkipsNil(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Append(f(10))
	rb.Append(nil)
	rb.Append(f(20))

	mean, ok := rb.Mean(2)
	require.True(t, ok)
	assert.InDelta(t, 15.0, mean, 1e-9)

	_, ok = rb.Mean(3)
	assert.False(t, ok)
}

func TestRingBuffer_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultShortWindow, NewRingBuffer(0).Capacity())
}

func TestRollingMean(t *testing.T) {
	series := []*float64{f(70), f(80), nil, f(90)}

	assert.Equal(t, []any{70.0, 75.0, 80.0, 90.0}, values(RollingMean(series, 2, 1)))
	assert.Equal(t, []any{nil, 75.0, nil, nil}, values(RollingMean(series, 2, 2)))
}
