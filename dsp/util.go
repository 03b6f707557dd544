package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// Magnitudes below the smallest normal float32 are flushed to zero.
const (
	SmallestPositiveFloat = 1.175494351e-38
	SmallestNegativeFloat = -1.175494351e-38
)

// FlushUnderflow returns 0 for values that fell into the subnormal band and
// reports whether a flush happened.
func FlushUnderflow(v float64) (float64, bool) {
	if v > 0 && v < SmallestPositiveFloat {
		return 0, true
	}
	if v < 0 && v > SmallestNegativeFloat {
		return 0, true
	}
	return v, false
}

// LinearInterpolate blends y1 and y2 by frac in [0,1]. frac >= 1 returns y2.
func LinearInterpolate(y1, y2, frac float64) float64 {
	if frac >= 1.0 {
		return y2
	}
	return frac*y2 + (1.0-frac)*y1
}

// BipolarToUnipolar maps [-1,1] to [0,1].
func BipolarToUnipolar(v float64) float64 {
	return 0.5*v + 0.5
}

// UnipolarToBipolar maps [0,1] to [-1,1].
func UnipolarToBipolar(v float64) float64 {
	return 2.0*v - 1.0
}

// UnipolarModulationFromMax maps u in [0,1] onto [minValue,maxValue] so that
// u = 1 sits at maxValue and lower values pull the result down.
func UnipolarModulationFromMax(u, minValue, maxValue float64) float64 {
	u = dspcore.Clamp(u, 0, 1)
	return maxValue - (1.0-u)*(maxValue-minValue)
}

// UnipolarModulationFromMin maps u in [0,1] onto [minValue,maxValue] upwards
// from minValue.
func UnipolarModulationFromMin(u, minValue, maxValue float64) float64 {
	u = dspcore.Clamp(u, 0, 1)
	return u*(maxValue-minValue) + minValue
}
