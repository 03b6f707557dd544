package reverb

import "github.com/cwbudde/algo-jverb/dsp"

// SimpleDelayParameters configures a SimpleDelay.
type SimpleDelayParameters struct {
	DelayTimeMs float64
	Interpolate bool
}

// SimpleDelay is a feed-forward delay line with millisecond addressing.
// A delay that maps to zero samples bypasses the line entirely.
type SimpleDelay struct {
	dsp.MonoOnly
	params SimpleDelayParameters

	buffer         *dsp.CircularBuffer
	sampleRate     float64
	samplesPerMs   float64
	bufferLengthMs float64
	bufferLength   int
	delaySamples   float64
}

// NewSimpleDelay returns an unallocated delay line. Call
// CreateDelayBuffer or Reset before processing.
func NewSimpleDelay() *SimpleDelay {
	d := &SimpleDelay{buffer: dsp.NewCircularBuffer(1)}
	d.buffer.SetInterpolate(d.params.Interpolate)
	return d
}

// Reset flushes the line when the sample rate is unchanged and reallocates it
// at the current buffer length otherwise.
func (d *SimpleDelay) Reset(sampleRate float64) bool {
	if d.sampleRate == sampleRate {
		d.buffer.Flush()
		return true
	}
	d.CreateDelayBuffer(sampleRate, d.bufferLengthMs)
	return true
}

// CreateDelayBuffer allocates room for bufferLengthMs of audio at
// sampleRate. The configured delay is converted to samples for the new rate.
func (d *SimpleDelay) CreateDelayBuffer(sampleRate, bufferLengthMs float64) {
	d.bufferLengthMs = bufferLengthMs
	d.sampleRate = sampleRate
	d.samplesPerMs = sampleRate / 1000.0
	d.bufferLength = int(bufferLengthMs*d.samplesPerMs) + 1
	d.buffer.Create(d.bufferLength)
	d.delaySamples = d.params.DelayTimeMs * d.samplesPerMs
}

// Parameters returns the delay settings.
func (d *SimpleDelay) Parameters() SimpleDelayParameters { return d.params }

// SetParameters converts the delay time to samples at the current rate.
func (d *SimpleDelay) SetParameters(p SimpleDelayParameters) {
	d.params = p
	d.delaySamples = p.DelayTimeMs * d.samplesPerMs
	d.buffer.SetInterpolate(p.Interpolate)
}

// DelaySamples is the configured delay converted to (fractional) samples.
func (d *SimpleDelay) DelaySamples() float64 { return d.delaySamples }

// BufferLength is the requested length in samples before power-of-two
// rounding.
func (d *SimpleDelay) BufferLength() int { return d.bufferLength }

// Buffer exposes the underlying ring buffer.
func (d *SimpleDelay) Buffer() *dsp.CircularBuffer { return d.buffer }

// ProcessSample reads the delayed sample, then writes x. A zero delay
// passes x through and leaves the buffer untouched.
func (d *SimpleDelay) ProcessSample(x float64) float64 {
	if d.delaySamples == 0 {
		return x
	}
	y := d.buffer.ReadFractional(d.delaySamples)
	d.buffer.Write(x)
	return y
}

// ReadDelay reads at the configured delay.
func (d *SimpleDelay) ReadDelay() float64 {
	return d.buffer.ReadFractional(d.delaySamples)
}

// ReadDelayAtTime reads at an arbitrary delay in milliseconds.
func (d *SimpleDelay) ReadDelayAtTime(ms float64) float64 {
	return d.buffer.ReadFractional(ms * d.samplesPerMs)
}

// ReadDelayAtPercentage reads at pct percent of the configured delay.
func (d *SimpleDelay) ReadDelayAtPercentage(pct float64) float64 {
	return d.buffer.ReadFractional(pct / 100.0 * d.delaySamples)
}

// WriteDelay pushes x into the line without reading.
func (d *SimpleDelay) WriteDelay(x float64) {
	d.buffer.Write(x)
}
