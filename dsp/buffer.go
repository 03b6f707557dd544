package dsp

// CircularBuffer is a power-of-two ring buffer addressed by delay in samples.
// All index arithmetic wraps with a bit mask, so reads never fail.
type CircularBuffer struct {
	buffer      []float64
	writeIndex  int
	wrapMask    int
	interpolate bool
}

// NewCircularBuffer allocates a buffer holding at least length samples.
func NewCircularBuffer(length int) *CircularBuffer {
	b := &CircularBuffer{interpolate: true}
	b.Create(length)
	return b
}

// Create (re)allocates a zeroed buffer whose length is the next power of two
// >= length and rewinds the write cursor.
func (b *CircularBuffer) Create(length int) {
	n := nextPowerOfTwo(length)
	b.buffer = make([]float64, n)
	b.writeIndex = 0
	b.wrapMask = n - 1
}

// Flush zeroes the stored samples. The write cursor is kept.
func (b *CircularBuffer) Flush() {
	for i := range b.buffer {
		b.buffer[i] = 0
	}
}

// Write stores x at the cursor, then advances and wraps the cursor.
func (b *CircularBuffer) Write(x float64) {
	if len(b.buffer) == 0 {
		b.Create(1)
	}
	b.buffer[b.writeIndex] = x
	b.writeIndex++
	b.writeIndex &= b.wrapMask
}

// Read returns the sample written delay writes ago. Delay 0 is the most
// recently written sample.
func (b *CircularBuffer) Read(delay int) float64 {
	if len(b.buffer) == 0 {
		return 0
	}
	readIndex := (b.writeIndex - 1 - delay) & b.wrapMask
	return b.buffer[readIndex]
}

// ReadFractional reads at a non-integer delay. With interpolation disabled
// the delay is truncated.
func (b *CircularBuffer) ReadFractional(delay float64) float64 {
	whole := int(delay)
	y1 := b.Read(whole)
	if !b.interpolate {
		return y1
	}
	y2 := b.Read(whole + 1)
	return LinearInterpolate(y1, y2, delay-float64(whole))
}

// SetInterpolate toggles linear interpolation for fractional reads.
func (b *CircularBuffer) SetInterpolate(on bool) { b.interpolate = on }

// Interpolate reports whether fractional reads interpolate.
func (b *CircularBuffer) Interpolate() bool { return b.interpolate }

// Len returns the allocated length in samples.
func (b *CircularBuffer) Len() int { return len(b.buffer) }

// WrapMask returns Len()-1.
func (b *CircularBuffer) WrapMask() int { return b.wrapMask }

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
