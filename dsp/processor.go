package dsp

// Processor is implemented by every unit that turns one input sample into one
// output sample. Units without a multichannel path report false from
// CanProcessFrame and ProcessFrame.
type Processor interface {
	Reset(sampleRate float64) bool
	ProcessSample(x float64) float64
	CanProcessFrame() bool
	ProcessFrame(in, out []float64, inChannels, outChannels int) bool
}

// Generator renders output without an input signal.
type Generator interface {
	Reset(sampleRate float64) bool
	Render() SignalGenData
}

// MonoOnly provides the "not handled" frame path for mono processors.
type MonoOnly struct{}

func (MonoOnly) CanProcessFrame() bool { return false }

func (MonoOnly) ProcessFrame(in, out []float64, inChannels, outChannels int) bool {
	return false
}
