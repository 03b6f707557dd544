package reverb

import "github.com/cwbudde/algo-jverb/dsp"

// NestedDelayAPFParameters configures a NestedDelayAPF.
type NestedDelayAPFParameters struct {
	OuterDelayMs float64
	InnerDelayMs float64
	OuterG       float64
	InnerG       float64

	EnableLFO          bool
	LFORateHz          float64
	LFODepth           float64
	LFOMaxModulationMs float64
}

// DefaultNestedDelayAPFParameters returns zero delays with full LFO depth.
func DefaultNestedDelayAPFParameters() NestedDelayAPFParameters {
	return NestedDelayAPFParameters{LFODepth: 1.0}
}

// NestedDelayAPF is an outer DelayAPF whose delay line is written through an
// inner DelayAPF. Modulation applies to the outer delay only.
type NestedDelayAPF struct {
	dsp.MonoOnly
	params NestedDelayAPFParameters
	outer  *DelayAPF
	inner  *DelayAPF
}

// NewNestedDelayAPF returns an outer allpass with a second allpass on its
// write path.
func NewNestedDelayAPF() *NestedDelayAPF {
	return &NestedDelayAPF{
		params: DefaultNestedDelayAPFParameters(),
		outer:  NewDelayAPF(),
		inner:  NewDelayAPF(),
	}
}

// Reset resets both sections for sampleRate.
func (n *NestedDelayAPF) Reset(sampleRate float64) bool {
	n.outer.Reset(sampleRate)
	n.inner.Reset(sampleRate)
	return true
}

// CreateDelayBuffers sizes the outer and inner delay lines.
func (n *NestedDelayAPF) CreateDelayBuffers(sampleRate, outerMs, innerMs float64) {
	n.outer.CreateDelayBuffer(sampleRate, outerMs)
	n.inner.CreateDelayBuffer(sampleRate, innerMs)
}

// Parameters returns the nested allpass settings.
func (n *NestedDelayAPF) Parameters() NestedDelayAPFParameters { return n.params }

// SetParameters splits p into outer and inner section settings. Only the
// outer section is modulated.
func (n *NestedDelayAPF) SetParameters(p NestedDelayAPFParameters) {
	n.params = p

	op := n.outer.Parameters()
	op.APFg = p.OuterG
	op.DelayTimeMs = p.OuterDelayMs
	op.EnableLFO = p.EnableLFO
	op.LFODepth = p.LFODepth
	op.LFORateHz = p.LFORateHz
	op.LFOMaxModulationMs = p.LFOMaxModulationMs
	n.outer.SetParameters(op)

	ip := n.inner.Parameters()
	ip.APFg = p.InnerG
	ip.DelayTimeMs = p.InnerDelayMs
	n.inner.SetParameters(ip)
}

// ProcessSample is the outer allpass with w(n) routed through the inner
// allpass before it is written.
func (n *NestedDelayAPF) ProcessSample(x float64) float64 {
	o := n.outer
	if o.delay.DelaySamples() == 0 {
		return x
	}
	g := o.params.APFg
	wnD := o.readDelayed()
	wn := x + g*wnD
	innerOut := n.inner.ProcessSample(wn)
	y, _ := dsp.FlushUnderflow(-g*wn + wnD)
	o.delay.WriteDelay(innerOut)
	return y
}
