package filter

import (
	"math/cmplx"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-jverb/dsp"
)

const (
	defaultQ          = 0.707
	defaultSampleRate = 44100.0
)

// Parameters configures an AudioFilter.
type Parameters struct {
	Algorithm  Algorithm
	Fc         float64 // cutoff or center frequency in Hz
	Q          float64
	BoostCutDB float64 // used by shelving and parametric designs
}

// DefaultParameters returns a 100 Hz first-order lowpass.
func DefaultParameters() Parameters {
	return Parameters{Algorithm: LPF1, Fc: 100, Q: defaultQ}
}

// AudioFilter wraps a transposed canonical biquad and designs its
// coefficients from Parameters.
type AudioFilter struct {
	dsp.MonoOnly
	biquad     *dsp.Biquad
	params     Parameters
	sampleRate float64
	coeffs     [dsp.NumCoeffs]float64
}

func NewAudioFilter() *AudioFilter {
	f := &AudioFilter{
		biquad:     dsp.NewBiquad(),
		params:     DefaultParameters(),
		sampleRate: defaultSampleRate,
	}
	f.biquad.SetParameters(dsp.BiquadParameters{Structure: dsp.TransposeCanonical})
	f.calculateCoefficients()
	return f
}

// Reset clears the filter state and redesigns the coefficients for
// sampleRate.
func (f *AudioFilter) Reset(sampleRate float64) bool {
	f.biquad.SetParameters(dsp.BiquadParameters{Structure: dsp.TransposeCanonical})
	f.SetSampleRate(sampleRate)
	return f.biquad.Reset(sampleRate)
}

// SetSampleRate redesigns the coefficients without touching the state.
func (f *AudioFilter) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	f.sampleRate = sampleRate
	f.calculateCoefficients()
}

func (f *AudioFilter) SampleRate() float64 { return f.sampleRate }

func (f *AudioFilter) Parameters() Parameters { return f.params }

// SetParameters stores p and redesigns the coefficients. Nothing happens
// when the algorithm, frequency, Q and gain are unchanged. A Q <= 0 is
// replaced by 0.707.
func (f *AudioFilter) SetParameters(p Parameters) {
	if p.Q <= 0 {
		p.Q = defaultQ
	}
	if p.Algorithm == f.params.Algorithm &&
		p.Fc == f.params.Fc &&
		p.Q == f.params.Q &&
		p.BoostCutDB == f.params.BoostCutDB {
		return
	}
	f.params = p
	f.calculateCoefficients()
}

// Coefficients returns the current {a0,a1,a2,b1,b2,c0,d0} vector.
func (f *AudioFilter) Coefficients() [dsp.NumCoeffs]float64 { return f.coeffs }

func (f *AudioFilter) ProcessSample(x float64) float64 {
	return f.coeffs[dsp.CoeffD0]*x + f.coeffs[dsp.CoeffC0]*f.biquad.ProcessSample(x)
}

// GValue and SValue expose the biquad's instantaneous gain and storage
// component for zero-delay feedback constructions.
func (f *AudioFilter) GValue() float64 { return f.biquad.GValue() }

func (f *AudioFilter) SValue() float64 { return f.biquad.SValue() }

// Response evaluates the complex frequency response at freqHz, including
// the c0/d0 wet/dry terms.
func (f *AudioFilter) Response(freqHz float64) complex128 {
	c := f.sectionCoefficients()
	h := c.Response(freqHz, f.sampleRate)
	return complex(f.coeffs[dsp.CoeffD0], 0) + complex(f.coeffs[dsp.CoeffC0], 0)*h
}

// MagnitudeDB returns 20*log10|H(freqHz)|.
func (f *AudioFilter) MagnitudeDB(freqHz float64) float64 {
	return dspcore.LinearToDB(cmplx.Abs(f.Response(freqHz)))
}

func (f *AudioFilter) sectionCoefficients() biquad.Coefficients {
	return biquad.Coefficients{
		B0: f.coeffs[dsp.CoeffA0],
		B1: f.coeffs[dsp.CoeffA1],
		B2: f.coeffs[dsp.CoeffA2],
		A1: f.coeffs[dsp.CoeffB1],
		A2: f.coeffs[dsp.CoeffB2],
	}
}

func (f *AudioFilter) calculateCoefficients() {
	f.coeffs = Design(f.params, f.sampleRate)
	f.biquad.SetCoefficients(f.coeffs)
}
