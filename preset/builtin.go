package preset

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

var builtins = map[string]File{
	"default": {},
	"room": {
		RT60Seconds:     f64(0.6),
		LPFg:            f64(0.25),
		PreDelayMs:      f64(8),
		APFDelayMaxMs:   f64(20),
		FixedDelayMaxMs: f64(35),
		WetLevelDB:      f64(-14),
		LowShelfGainDB:  f64(-12),
		HighShelfGainDB: f64(-4),
	},
	"hall": {
		RT60Seconds:     f64(2.4),
		LPFg:            f64(0.35),
		PreDelayMs:      f64(30),
		APFDelayMaxMs:   f64(40),
		FixedDelayMaxMs: f64(95),
		WetLevelDB:      f64(-10),
		HighShelfGainDB: f64(-8),
	},
	"plate": {
		RT60Seconds:     f64(1.6),
		LPFg:            f64(0.1),
		PreDelayMs:      f64(0),
		APFDelayMaxMs:   f64(12),
		FixedDelayMaxMs: f64(45),
		WetLevelDB:      f64(-12),
		LowShelfFc:      f64(300),
		LowShelfGainDB:  f64(-6),
		HighShelfGainDB: f64(2),
		Density:         str("thick"),
	},
	"cathedral": {
		RT60Seconds:       f64(5.5),
		LPFg:              f64(0.45),
		PreDelayMs:        f64(60),
		APFDelayMaxMs:     f64(60),
		APFDelayWeightPct: f64(100),
		FixedDelayMaxMs:   f64(100),
		WetLevelDB:        f64(-8),
		DryLevelDB:        f64(-3),
		HighShelfGainDB:   f64(-10),
		Density:           str("thin"),
	},
}

// Names lists the built-in presets, "plugin" included.
func Names() []string {
	names := make([]string, 0, len(builtins)+1)
	for name := range builtins {
		names = append(names, name)
	}
	names = append(names, "plugin")
	sort.Strings(names)
	return names
}

// Builtin returns a named built-in preset. "plugin" is the bare tank
// construction state without the host defaults.
func Builtin(name string) (*Preset, error) {
	if name == "plugin" {
		return &Preset{Name: name, Values: host.ValuesFromTank(reverb.DefaultTankParameters())}, nil
	}
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	p := Default()
	p.Name = name
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("builtin %s: %w", name, err)
	}
	return p, nil
}
