package filter

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// ReferenceShelf designs the cookbook second-order shelf matching a LowShelf
// or HiShelf parameter set, with a Butterworth slope. It is a comparison aid
// for the first-order shelves used by AudioFilter.
func ReferenceShelf(p Parameters, sampleRate float64) (biquad.Coefficients, error) {
	switch p.Algorithm {
	case LowShelf:
		return design.LowShelf(p.Fc, p.BoostCutDB, defaultQ, sampleRate), nil
	case HiShelf:
		return design.HighShelf(p.Fc, p.BoostCutDB, defaultQ, sampleRate), nil
	default:
		return biquad.Coefficients{}, fmt.Errorf("no reference shelf for %s", p.Algorithm)
	}
}
