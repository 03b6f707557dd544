package dsp

// SimpleLPFParameters holds the one-pole feedback coefficient.
type SimpleLPFParameters struct {
	G float64
}

// SimpleLPF is the one-coefficient lowpass y = (1-g)x + g*y[n-1].
type SimpleLPF struct {
	MonoOnly
	params SimpleLPFParameters
	state  float64
}

// NewSimpleLPF returns a one-pole lowpass with g = 0 (pass-through).
func NewSimpleLPF() *SimpleLPF {
	return &SimpleLPF{}
}

func (f *SimpleLPF) Reset(sampleRate float64) bool {
	f.state = 0
	return true
}

func (f *SimpleLPF) Parameters() SimpleLPFParameters { return f.params }

func (f *SimpleLPF) SetParameters(p SimpleLPFParameters) { f.params = p }

// ProcessSample computes y = (1-g)*x + g*y(n-1).
func (f *SimpleLPF) ProcessSample(x float64) float64 {
	g := f.params.G
	y := (1.0-g)*x + g*f.state
	f.state = y
	return y
}
