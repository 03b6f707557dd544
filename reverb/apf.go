package reverb

import "github.com/cwbudde/algo-jverb/dsp"

// DelayAPFParameters configures a DelayAPF.
type DelayAPFParameters struct {
	DelayTimeMs float64
	APFg        float64

	EnableLPF bool
	LPFg      float64

	Interpolate bool

	EnableLFO          bool
	LFORateHz          float64
	LFODepth           float64 // 0..1, not percent
	LFOMaxModulationMs float64
}

// DelayAPF is a delaying allpass:
//
//	w(n) = x(n) + g*w(n-D)
//	y(n) = -g*w(n) + w(n-D)
//
// The delayed term can be damped by a one-pole lowpass, and D can be swept
// down from DelayTimeMs by a triangle LFO.
type DelayAPF struct {
	dsp.MonoOnly
	params DelayAPFParameters

	delay          *SimpleDelay
	lfo            *dsp.LFO
	lpfState       float64
	sampleRate     float64
	bufferLengthMs float64
}

// NewDelayAPF returns an allpass with its own delay line and LFO.
func NewDelayAPF() *DelayAPF {
	return &DelayAPF{
		delay: NewSimpleDelay(),
		lfo:   dsp.NewLFO(),
	}
}

// Reset restarts the LFO, clears the damping state and reallocates the
// delay line for sampleRate.
func (a *DelayAPF) Reset(sampleRate float64) bool {
	a.lfo.Reset(sampleRate)
	a.lpfState = 0
	a.CreateDelayBuffer(sampleRate, a.bufferLengthMs)
	return true
}

// CreateDelayBuffer sizes the delay line and remembers the length for
// later resets.
func (a *DelayAPF) CreateDelayBuffer(sampleRate, bufferLengthMs float64) {
	a.sampleRate = sampleRate
	a.bufferLengthMs = bufferLengthMs
	a.delay.CreateDelayBuffer(sampleRate, bufferLengthMs)
}

// Parameters returns the allpass settings.
func (a *DelayAPF) Parameters() DelayAPFParameters { return a.params }

// SetParameters forwards the delay time and interpolation to the delay
// line and the rate to the triangle LFO.
func (a *DelayAPF) SetParameters(p DelayAPFParameters) {
	a.params = p

	dp := a.delay.Parameters()
	dp.DelayTimeMs = p.DelayTimeMs
	dp.Interpolate = p.Interpolate
	a.delay.SetParameters(dp)

	a.lfo.SetParameters(dsp.OscillatorParameters{
		Waveform:    dsp.Triangle,
		FrequencyHz: p.LFORateHz,
	})
}

// ProcessSample runs one sample through the allpass:
//
//	w(n) = x(n) + g*w(n-D)
//	y(n) = -g*w(n) + w(n-D)
//
// with optional damping of w(n-D) and LFO modulation of D.
func (a *DelayAPF) ProcessSample(x float64) float64 {
	if a.delay.DelaySamples() == 0 {
		return x
	}
	g := a.params.APFg
	wnD := a.readDelayed()
	wn := x + g*wnD
	y, _ := dsp.FlushUnderflow(-g*wn + wnD)
	a.delay.WriteDelay(wn)
	return y
}

// readDelayed returns w(n-D) after modulation and damping. It advances the
// LFO and the damping state.
func (a *DelayAPF) readDelayed() float64 {
	var wnD float64
	if a.params.EnableLFO {
		lfo := a.lfo.Render()
		maxDelay := a.params.DelayTimeMs
		minDelay := maxDelay - a.params.LFOMaxModulationMs
		if minDelay < 0 {
			minDelay = 0
		}
		modDelay := dsp.UnipolarModulationFromMax(
			dsp.BipolarToUnipolar(a.params.LFODepth*lfo.Normal), minDelay, maxDelay)
		wnD = a.delay.ReadDelayAtTime(modDelay)
	} else {
		wnD = a.delay.ReadDelay()
	}

	if a.params.EnableLPF {
		g := a.params.LPFg
		wnD = wnD*(1.0-g) + g*a.lpfState
		a.lpfState = wnD
	}
	return wnD
}
