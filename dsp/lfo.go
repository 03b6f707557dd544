package dsp

import "math"

// Waveform selects the LFO shape.
type Waveform int

const (
	Triangle Waveform = iota
	Sine
	Saw
)

func (w Waveform) String() string {
	switch w {
	case Triangle:
		return "triangle"
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	default:
		return "unknown"
	}
}

// OscillatorParameters configures an LFO.
type OscillatorParameters struct {
	Waveform    Waveform
	FrequencyHz float64
}

// SignalGenData carries the four outputs of a generator for one sample.
type SignalGenData struct {
	Normal       float64
	Inverted     float64
	QuadPhasePos float64 // +90 degrees
	QuadPhaseNeg float64 // -90 degrees
}

// LFO is a modulo-counter oscillator for modulation signals. The sine output
// uses a parabolic approximation and is not meant for audio-rate use.
type LFO struct {
	params     OscillatorParameters
	sampleRate float64

	modCounter   float64
	modCounterQP float64
	phaseInc     float64
}

// NewLFO returns a triangle LFO at rest with the quadrature phase a
// quarter cycle ahead.
func NewLFO() *LFO {
	return &LFO{modCounterQP: 0.25}
}

// Reset sets the sample rate and restarts both phases.
func (l *LFO) Reset(sampleRate float64) bool {
	l.sampleRate = sampleRate
	l.phaseInc = l.increment(l.params.FrequencyHz)
	l.modCounter = 0
	l.modCounterQP = 0.25
	return true
}

// Parameters returns the current oscillator settings.
func (l *LFO) Parameters() OscillatorParameters { return l.params }

// SetParameters stores p; the phase increment is only recomputed when the
// frequency changed.
func (l *LFO) SetParameters(p OscillatorParameters) {
	if p.FrequencyHz != l.params.FrequencyHz {
		l.phaseInc = l.increment(p.FrequencyHz)
	}
	l.params = p
}

// Render produces one sample of all four outputs and advances the phase.
func (l *LFO) Render() SignalGenData {
	wrapModulo(&l.modCounter, l.phaseInc)

	l.modCounterQP = l.modCounter
	l.modCounterQP += 0.25
	wrapModulo(&l.modCounterQP, 0.25)

	var out SignalGenData
	switch l.params.Waveform {
	case Sine:
		angle := l.modCounter*2.0*math.Pi - math.Pi
		out.Normal = parabolicSine(-angle)
		angle = l.modCounterQP*2.0*math.Pi - math.Pi
		out.QuadPhasePos = parabolicSine(-angle)
	case Saw:
		out.Normal = UnipolarToBipolar(l.modCounter)
		out.QuadPhasePos = UnipolarToBipolar(l.modCounterQP)
	default:
		out.Normal = 2.0*math.Abs(UnipolarToBipolar(l.modCounter)) - 1.0
		out.QuadPhasePos = 2.0*math.Abs(UnipolarToBipolar(l.modCounterQP)) - 1.0
	}
	out.Inverted = -out.Normal
	out.QuadPhaseNeg = -out.QuadPhasePos

	l.modCounter += l.phaseInc
	return out
}

func (l *LFO) increment(freq float64) float64 {
	if l.sampleRate <= 0 {
		return 0
	}
	return freq / l.sampleRate
}

// wrapModulo keeps a counter in [0,1); the wrap direction follows the sign of inc.
func wrapModulo(counter *float64, inc float64) bool {
	if inc > 0 && *counter >= 1.0 {
		*counter -= 1.0
		return true
	}
	if inc < 0 && *counter <= 0.0 {
		*counter += 1.0
		return true
	}
	return false
}

// parabolicSine approximates sin(angle) for angle in [-pi, pi].
func parabolicSine(angle float64) float64 {
	const (
		b = 4.0 / math.Pi
		c = -4.0 / (math.Pi * math.Pi)
		p = 0.225
	)
	y := b*angle + c*angle*math.Abs(angle)
	return p*(y*math.Abs(y)-y) + y
}
