package utils

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of optional samples. It backs the
// row-count rolling windows: a nil sample occupies a slot but is not counted.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []*float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultShortWindow
	}

	return &RingBuffer{
		data:     make([]*float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a sample, evicting the oldest once full
func (rb *RingBuffer) Append(v *float64) {
	rb.data[rb.index] = v

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetAll returns all slots in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []*float64 {
	if rb.size == 0 {
		return []*float64{}
	}

	result := make([]*float64, rb.size)

	// Calculate start index (oldest element)
	startIdx := 0
	if rb.size == rb.capacity {
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Mean averages the non-nil samples in the buffer. ok is false when fewer
// than minPeriods samples are present.
func (rb *RingBuffer) Mean(minPeriods int) (mean float64, ok bool) {
	if minPeriods < 1 {
		minPeriods = 1
	}

	sum := 0.0
	count := 0
	for i := 0; i < rb.size; i++ {
		if v := rb.data[i]; v != nil {
			sum += *v
			count++
		}
	}

	if count < minPeriods {
		return 0, false
	}
	return sum / float64(count), true
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	for i := range rb.data {
		rb.data[i] = nil
	}
	rb.index = 0
	rb.size = 0
}

// -----------------------------------------------------------------------------

// RollingMean applies a row-count window over series. Each output is the mean
// of the non-nil values among the last window entries, or nil when fewer than
// minPeriods of them are present.
func RollingMean(series []*float64, window, minPeriods int) []*float64 {
	out := make([]*float64, len(series))
	rb := NewRingBuffer(window)
	for i, v := range series {
		rb.Append(v)
		if mean, ok := rb.Mean(minPeriods); ok {
			out[i] = &mean
		}
	}
	return out
}
