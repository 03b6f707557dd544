package main

import (
	"fmt"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/preset"
	"github.com/cwbudde/algo-jverb/reverb"
)

type keyBinding struct {
	id    string
	delta float64
}

var keyBindings = map[byte]keyBinding{
	'k': {host.IDKRT, -0.02},
	'K': {host.IDKRT, 0.02},
	'd': {host.IDLPFg, -0.02},
	'D': {host.IDLPFg, 0.02},
	'p': {host.IDPreDelay, -5},
	'P': {host.IDPreDelay, 5},
	'w': {host.IDWetLevel, -1},
	'W': {host.IDWetLevel, 1},
	'y': {host.IDDryLevel, -1},
	'Y': {host.IDDryLevel, 1},
	'l': {host.IDLowShelfGain, -1},
	'L': {host.IDLowShelfGain, 1},
	'h': {host.IDHighShelfGain, -1},
	'H': {host.IDHighShelfGain, 1},
	'a': {host.IDAPFDelayWeight, -5},
	'A': {host.IDAPFDelayWeight, 5},
	'f': {host.IDFixedDelayWeight, -5},
	'F': {host.IDFixedDelayWeight, 5},
}

const keyHelp = "k/K krt  d/D damping  p/P pre-delay  w/W wet  y/Y dry  l/L low shelf  h/H high shelf\r\n" +
	"a/A apf weight  f/F fixed weight  t density  1-9 builtin presets  q quit\r\n"

// handleKey applies one key press and returns a status line. Unbound keys
// return "".
func handleKey(pl *player, key byte) (string, error) {
	if b, ok := keyBindings[key]; ok {
		v, err := pl.parameter(b.id)
		if err != nil {
			return "", err
		}
		if err := pl.setParameter(b.id, v+b.delta); err != nil {
			return "", err
		}
		v, _ = pl.parameter(b.id)
		return fmt.Sprintf("%s = %.3f", b.id, v), nil
	}

	switch {
	case key == 't':
		v, err := pl.parameter(host.IDDensity)
		if err != nil {
			return "", err
		}
		next := float64(reverb.DensityThin)
		if v >= 0.5 {
			next = float64(reverb.DensityThick)
		}
		if err := pl.setParameter(host.IDDensity, next); err != nil {
			return "", err
		}
		return fmt.Sprintf("density = %s", reverb.Density(next)), nil
	case key >= '1' && key <= '9':
		names := preset.Names()
		i := int(key - '1')
		if i >= len(names) {
			return "", nil
		}
		p, err := preset.Builtin(names[i])
		if err != nil {
			return "", err
		}
		pl.setState(p.Values)
		return fmt.Sprintf("preset %s", p.Name), nil
	}
	return "", nil
}
