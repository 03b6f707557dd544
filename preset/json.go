package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

// File is the JSON schema for reverb presets. Keys match the host
// parameter IDs; missing keys keep their current value.
type File struct {
	Name                *string  `json:"name,omitempty"`
	KRT                 *float64 `json:"krt,omitempty"`
	RT60Seconds         *float64 `json:"rt60_s,omitempty"`
	LPFg                *float64 `json:"lpf_g,omitempty"`
	LowShelfFc          *float64 `json:"low_shelf_fc,omitempty"`
	LowShelfGainDB      *float64 `json:"low_shelf_gain_db,omitempty"`
	HighShelfFc         *float64 `json:"high_shelf_fc,omitempty"`
	HighShelfGainDB     *float64 `json:"high_shelf_gain_db,omitempty"`
	PreDelayMs          *float64 `json:"pre_delay_ms,omitempty"`
	WetLevelDB          *float64 `json:"wet_level_db,omitempty"`
	DryLevelDB          *float64 `json:"dry_level_db,omitempty"`
	APFDelayMaxMs       *float64 `json:"apf_delay_max_ms,omitempty"`
	APFDelayWeightPct   *float64 `json:"apf_delay_weight_pct,omitempty"`
	FixedDelayMaxMs     *float64 `json:"fixed_delay_max_ms,omitempty"`
	FixedDelayWeightPct *float64 `json:"fixed_delay_weight_pct,omitempty"`
	Density             *string  `json:"density,omitempty"`
	IRWavPath           string   `json:"ir_wav_path,omitempty"`
}

// Preset is a resolved preset: a full parameter set plus an optional
// impulse response for the convolver.
type Preset struct {
	Name      string
	Values    host.Values
	IRWavPath string
}

// Default returns the host defaults.
func Default() *Preset {
	return &Preset{Name: "default", Values: host.DefaultValues()}
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := Default()
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if p.IRWavPath != "" && !filepath.IsAbs(p.IRWavPath) {
		base := filepath.Dir(path)
		p.IRWavPath = filepath.Clean(filepath.Join(base, p.IRWavPath))
	}
	return p, nil
}

// Load resolves name as a built-in preset first and as a file path
// otherwise.
func Load(nameOrPath string) (*Preset, error) {
	if p, err := Builtin(nameOrPath); err == nil {
		return p, nil
	}
	return LoadJSON(nameOrPath)
}

// ApplyFile applies a parsed preset file onto an existing preset.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}
	if f.KRT != nil && f.RT60Seconds != nil {
		return fmt.Errorf("krt and rt60_s are mutually exclusive")
	}

	if f.Name != nil {
		dst.Name = strings.TrimSpace(*f.Name)
	}
	if f.IRWavPath != "" {
		dst.IRWavPath = strings.TrimSpace(f.IRWavPath)
	}

	fields := []struct {
		id string
		v  *float64
	}{
		{host.IDKRT, f.KRT},
		{host.IDLPFg, f.LPFg},
		{host.IDLowShelfFc, f.LowShelfFc},
		{host.IDLowShelfGain, f.LowShelfGainDB},
		{host.IDHighShelfFc, f.HighShelfFc},
		{host.IDHighShelfGain, f.HighShelfGainDB},
		{host.IDPreDelay, f.PreDelayMs},
		{host.IDWetLevel, f.WetLevelDB},
		{host.IDDryLevel, f.DryLevelDB},
		{host.IDAPFDelayMax, f.APFDelayMaxMs},
		{host.IDAPFDelayWeight, f.APFDelayWeightPct},
		{host.IDFixedDelayMax, f.FixedDelayMaxMs},
		{host.IDFixedDelayWeight, f.FixedDelayWeightPct},
	}
	for _, fld := range fields {
		if fld.v == nil {
			continue
		}
		if err := setChecked(&dst.Values, fld.id, *fld.v); err != nil {
			return err
		}
	}

	if f.Density != nil {
		d, err := reverb.ParseDensity(*f.Density)
		if err != nil {
			return fmt.Errorf("density: %w", err)
		}
		if err := dst.Values.Set(host.IDDensity, float64(d)); err != nil {
			return err
		}
	}

	// rt60_s depends on the loop timing, so it goes last.
	if f.RT60Seconds != nil {
		if *f.RT60Seconds <= 0 {
			return fmt.Errorf("rt60_s must be > 0")
		}
		k := reverb.FeedbackForDecay(*f.RT60Seconds, dst.Values.Tank())
		if err := dst.Values.Set(host.IDKRT, k); err != nil {
			return err
		}
	}
	return nil
}

func setChecked(v *host.Values, id string, x float64) error {
	p, err := host.Lookup(id)
	if err != nil {
		return err
	}
	if x < p.Min || x > p.Max {
		return fmt.Errorf("%s must be in [%g,%g]", id, p.Min, p.Max)
	}
	return v.Set(id, x)
}

// FileFromPreset converts p into a fully populated File.
func FileFromPreset(p *Preset) *File {
	v := p.Values
	get := func(id string) *float64 {
		x, _ := v.Get(id)
		return &x
	}
	density := reverb.DensityThick.String()
	if d, _ := v.Get(host.IDDensity); d >= 0.5 {
		density = reverb.DensityThin.String()
	}
	name := p.Name
	return &File{
		Name:                &name,
		KRT:                 get(host.IDKRT),
		LPFg:                get(host.IDLPFg),
		LowShelfFc:          get(host.IDLowShelfFc),
		LowShelfGainDB:      get(host.IDLowShelfGain),
		HighShelfFc:         get(host.IDHighShelfFc),
		HighShelfGainDB:     get(host.IDHighShelfGain),
		PreDelayMs:          get(host.IDPreDelay),
		WetLevelDB:          get(host.IDWetLevel),
		DryLevelDB:          get(host.IDDryLevel),
		APFDelayMaxMs:       get(host.IDAPFDelayMax),
		APFDelayWeightPct:   get(host.IDAPFDelayWeight),
		FixedDelayMaxMs:     get(host.IDFixedDelayMax),
		FixedDelayWeightPct: get(host.IDFixedDelayWeight),
		Density:             &density,
		IRWavPath:           p.IRWavPath,
	}
}

// SaveJSON writes p as indented JSON.
func SaveJSON(path string, p *Preset) error {
	if p == nil {
		return fmt.Errorf("nil preset")
	}
	b, err := json.MarshalIndent(FileFromPreset(p), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preset dir: %w", err)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
