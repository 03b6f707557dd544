package filter

import "github.com/cwbudde/algo-jverb/dsp"

// ShelvingParameters sets both corner frequencies and gains of a
// TwoBandShelvingFilter.
type ShelvingParameters struct {
	LowShelfFc          float64
	LowShelfBoostCutDB  float64
	HighShelfFc         float64
	HighShelfBoostCutDB float64
}

// TwoBandShelvingFilter runs a low shelf followed by a high shelf.
type TwoBandShelvingFilter struct {
	dsp.MonoOnly
	params ShelvingParameters
	low    *AudioFilter
	high   *AudioFilter
}

// NewTwoBandShelvingFilter returns a low shelf followed by a high shelf.
func NewTwoBandShelvingFilter() *TwoBandShelvingFilter {
	s := &TwoBandShelvingFilter{
		low:  NewAudioFilter(),
		high: NewAudioFilter(),
	}
	lp := s.low.Parameters()
	lp.Algorithm = LowShelf
	s.low.SetParameters(lp)

	hp := s.high.Parameters()
	hp.Algorithm = HiShelf
	s.high.SetParameters(hp)
	return s
}

// Reset redesigns both sections for sampleRate.
func (s *TwoBandShelvingFilter) Reset(sampleRate float64) bool {
	s.low.Reset(sampleRate)
	s.high.Reset(sampleRate)
	return true
}

// Parameters returns the shelf settings.
func (s *TwoBandShelvingFilter) Parameters() ShelvingParameters { return s.params }

// SetParameters pushes the corner frequencies and gains into the two
// sections. Their algorithms never change.
func (s *TwoBandShelvingFilter) SetParameters(p ShelvingParameters) {
	s.params = p

	lp := s.low.Parameters()
	lp.Fc = p.LowShelfFc
	lp.BoostCutDB = p.LowShelfBoostCutDB
	s.low.SetParameters(lp)

	hp := s.high.Parameters()
	hp.Fc = p.HighShelfFc
	hp.BoostCutDB = p.HighShelfBoostCutDB
	s.high.SetParameters(hp)
}

// ProcessSample runs x through the low shelf, then the high shelf.
func (s *TwoBandShelvingFilter) ProcessSample(x float64) float64 {
	return s.high.ProcessSample(s.low.ProcessSample(x))
}

// Response is the product of both section responses.
func (s *TwoBandShelvingFilter) Response(freqHz float64) complex128 {
	return s.low.Response(freqHz) * s.high.Response(freqHz)
}
