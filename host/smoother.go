package host

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// Smoother is a one-pole control smoother:
//
//	z = target + a*(z - target),  a = exp(-2*pi / (t*fs))
type Smoother struct {
	a float64
	z float64
}

// SetTime configures the smoothing time in milliseconds at the given
// update rate. Non-positive times disable smoothing.
func (s *Smoother) SetTime(timeMs, rate float64) {
	if timeMs <= 0 || rate <= 0 {
		s.a = 0
		return
	}
	s.a = float64(approx.FastExp(float32(-2 * math.Pi / (timeMs * 0.001 * rate))))
}

// Coefficient returns a.
func (s *Smoother) Coefficient() float64 { return s.a }

// Reset jumps to v.
func (s *Smoother) Reset(v float64) { s.z = v }

func (s *Smoother) Value() float64 { return s.z }

// Process moves one step towards target and returns the new value.
func (s *Smoother) Process(target float64) float64 {
	s.z = target + s.a*(s.z-target)
	return s.z
}
