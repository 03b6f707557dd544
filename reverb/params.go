package reverb

import (
	"fmt"
	"strings"
)

// Density selects how many output taps the tank reads per channel.
type Density int

const (
	DensityThick Density = iota // eight taps per channel
	DensityThin                 // four taps per channel
)

func (d Density) String() string {
	switch d {
	case DensityThick:
		return "thick"
	case DensityThin:
		return "thin"
	default:
		return fmt.Sprintf("Density(%d)", int(d))
	}
}

// ParseDensity accepts "thick", "thin" and the alias "sparse".
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thick":
		return DensityThick, nil
	case "thin", "sparse":
		return DensityThin, nil
	default:
		return 0, fmt.Errorf("unknown density %q", s)
	}
}

// TankParameters configures a Tank.
type TankParameters struct {
	Density Density

	// Branch timing: each branch delay is a fixed fraction of
	// FixedDelayMaxMs*FixedDelayWeightPct/100, each allpass delay a fraction
	// of APFDelayMaxMs*APFDelayWeightPct/100.
	APFDelayMaxMs       float64
	APFDelayWeightPct   float64
	FixedDelayMaxMs     float64
	FixedDelayWeightPct float64

	PreDelayTimeMs float64

	LPFg float64 // branch damping coefficient
	KRT  float64 // feedback gain, 0..1

	LowShelfFc          float64
	LowShelfBoostCutDB  float64
	HighShelfFc         float64
	HighShelfBoostCutDB float64

	WetLevelDB float64
	DryLevelDB float64
}

// DefaultTankParameters returns the tank's construction defaults.
func DefaultTankParameters() TankParameters {
	return TankParameters{
		Density:             DensityThick,
		APFDelayMaxMs:       5.0,
		APFDelayWeightPct:   100.0,
		FixedDelayMaxMs:     50.0,
		FixedDelayWeightPct: 100.0,
		WetLevelDB:          -3.0,
		DryLevelDB:          -3.0,
	}
}
