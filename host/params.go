package host

import (
	"errors"
	"fmt"
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-jverb/reverb"
)

// ErrUnknownParameter is returned for IDs outside the parameter layout.
var ErrUnknownParameter = errors.New("unknown parameter")

// Parameter IDs. They double as preset JSON keys.
const (
	IDKRT              = "krt"
	IDLPFg             = "lpf_g"
	IDLowShelfFc       = "low_shelf_fc"
	IDLowShelfGain     = "low_shelf_gain_db"
	IDHighShelfFc      = "high_shelf_fc"
	IDHighShelfGain    = "high_shelf_gain_db"
	IDPreDelay         = "pre_delay_ms"
	IDWetLevel         = "wet_level_db"
	IDDryLevel         = "dry_level_db"
	IDAPFDelayMax      = "apf_delay_max_ms"
	IDAPFDelayWeight   = "apf_delay_weight_pct"
	IDFixedDelayMax    = "fixed_delay_max_ms"
	IDFixedDelayWeight = "fixed_delay_weight_pct"
	IDDensity          = "density"
)

// Parameter describes one automatable control.
type Parameter struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step,omitempty"` // 0 for continuous controls
}

// NumParameters is the size of the layout.
const NumParameters = 14

var layout = [NumParameters]Parameter{
	{ID: IDKRT, Name: "Reverb Time", Min: 0, Max: 1, Default: 0.9},
	{ID: IDLPFg, Name: "Damping", Min: 0, Max: 0.5, Default: 0.3},
	{ID: IDLowShelfFc, Name: "Low Shelf Fc", Unit: "Hz", Min: 20, Max: 2000, Default: 150},
	{ID: IDLowShelfGain, Name: "Low Shelf Gain", Unit: "dB", Min: -20, Max: 20, Default: -20},
	{ID: IDHighShelfFc, Name: "High Shelf Fc", Unit: "Hz", Min: 1000, Max: 5000, Default: 4000},
	{ID: IDHighShelfGain, Name: "High Shelf Gain", Unit: "dB", Min: -20, Max: 20, Default: -6},
	{ID: IDPreDelay, Name: "Pre-Delay", Unit: "ms", Min: 0, Max: 100, Default: 25},
	{ID: IDWetLevel, Name: "Wet Level", Unit: "dB", Min: -60, Max: 12, Default: -12},
	{ID: IDDryLevel, Name: "Dry Level", Unit: "dB", Min: -60, Max: 12, Default: 0},
	{ID: IDAPFDelayMax, Name: "APF Max Delay", Unit: "ms", Min: 0, Max: 100, Default: 33},
	{ID: IDAPFDelayWeight, Name: "APF Delay Weight", Unit: "%", Min: 1, Max: 100, Default: 85},
	{ID: IDFixedDelayMax, Name: "Fixed Max Delay", Unit: "ms", Min: 0, Max: 100, Default: 81},
	{ID: IDFixedDelayWeight, Name: "Fixed Delay Weight", Unit: "%", Min: 1, Max: 100, Default: 100},
	{ID: IDDensity, Name: "Density", Min: 0, Max: 1, Default: float64(reverb.DensityThick), Step: 1},
}

var layoutIndex = func() map[string]int {
	m := make(map[string]int, NumParameters)
	for i, p := range layout {
		m[p.ID] = i
	}
	return m
}()

// Parameters returns a copy of the layout in host order.
func Parameters() []Parameter {
	out := make([]Parameter, NumParameters)
	copy(out, layout[:])
	return out
}

// Lookup returns the layout entry for id.
func Lookup(id string) (Parameter, error) {
	i, ok := layoutIndex[id]
	if !ok {
		return Parameter{}, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return layout[i], nil
}

// Clamp limits v to the parameter range and snaps stepped controls.
func (p Parameter) Clamp(v float64) float64 {
	v = dspcore.Clamp(v, p.Min, p.Max)
	if p.Step > 0 {
		v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
	}
	return v
}

// Normalize maps v onto 0..1.
func (p Parameter) Normalize(v float64) float64 {
	if p.Max == p.Min {
		return 0
	}
	return (p.Clamp(v) - p.Min) / (p.Max - p.Min)
}

// Denormalize maps n in 0..1 back onto the parameter range.
func (p Parameter) Denormalize(n float64) float64 {
	n = dspcore.Clamp(n, 0, 1)
	return p.Clamp(p.Min + n*(p.Max-p.Min))
}

// Values holds one value per parameter in layout order.
type Values [NumParameters]float64

// DefaultValues returns every parameter at its default.
func DefaultValues() Values {
	var v Values
	for i, p := range layout {
		v[i] = p.Default
	}
	return v
}

// Get returns the value stored for id.
func (v Values) Get(id string) (float64, error) {
	i, ok := layoutIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return v[i], nil
}

// Set stores x for id, clamped to the parameter range.
func (v *Values) Set(id string, x float64) error {
	i, ok := layoutIndex[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	v[i] = layout[i].Clamp(x)
	return nil
}

// Map returns the values keyed by ID.
func (v Values) Map() map[string]float64 {
	m := make(map[string]float64, NumParameters)
	for i, p := range layout {
		m[p.ID] = v[i]
	}
	return m
}

func (v Values) at(id string) float64 { return v[layoutIndex[id]] }

// Tank translates the values into a tank parameter record.
func (v Values) Tank() reverb.TankParameters {
	density := reverb.DensityThick
	if v.at(IDDensity) >= 0.5 {
		density = reverb.DensityThin
	}
	return reverb.TankParameters{
		Density:             density,
		APFDelayMaxMs:       v.at(IDAPFDelayMax),
		APFDelayWeightPct:   v.at(IDAPFDelayWeight),
		FixedDelayMaxMs:     v.at(IDFixedDelayMax),
		FixedDelayWeightPct: v.at(IDFixedDelayWeight),
		PreDelayTimeMs:      v.at(IDPreDelay),
		LPFg:                v.at(IDLPFg),
		KRT:                 v.at(IDKRT),
		LowShelfFc:          v.at(IDLowShelfFc),
		LowShelfBoostCutDB:  v.at(IDLowShelfGain),
		HighShelfFc:         v.at(IDHighShelfFc),
		HighShelfBoostCutDB: v.at(IDHighShelfGain),
		WetLevelDB:          v.at(IDWetLevel),
		DryLevelDB:          v.at(IDDryLevel),
	}
}

// ValuesFromTank is the inverse of Values.Tank. Out-of-range fields are
// clamped.
func ValuesFromTank(p reverb.TankParameters) Values {
	v := DefaultValues()
	set := func(id string, x float64) { _ = v.Set(id, x) }
	set(IDDensity, float64(p.Density))
	set(IDAPFDelayMax, p.APFDelayMaxMs)
	set(IDAPFDelayWeight, p.APFDelayWeightPct)
	set(IDFixedDelayMax, p.FixedDelayMaxMs)
	set(IDFixedDelayWeight, p.FixedDelayWeightPct)
	set(IDPreDelay, p.PreDelayTimeMs)
	set(IDLPFg, p.LPFg)
	set(IDKRT, p.KRT)
	set(IDLowShelfFc, p.LowShelfFc)
	set(IDLowShelfGain, p.LowShelfBoostCutDB)
	set(IDHighShelfFc, p.HighShelfFc)
	set(IDHighShelfGain, p.HighShelfBoostCutDB)
	set(IDWetLevel, p.WetLevelDB)
	set(IDDryLevel, p.DryLevelDB)
	return v
}
