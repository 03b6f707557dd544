package analysis

import "math"

// StereoCorrelation returns the zero-lag normalized correlation of two
// channels in [-1,1], or 0 when either channel is silent.
func StereoCorrelation(left, right []float64) float64 {
	n := min(len(left), len(right))
	var lr, ll, rr float64
	for i := 0; i < n; i++ {
		lr += left[i] * right[i]
		ll += left[i] * left[i]
		rr += right[i] * right[i]
	}
	if ll == 0 || rr == 0 {
		return 0
	}
	return clampUnit(lr / math.Sqrt(ll*rr))
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
