package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

// knobRT60 replaces the raw kRT knob: the optimizer searches decay time and
// the feedback gain is derived from the candidate's loop time.
const knobRT60 = "rt60_s"

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

var timbreKnobs = []string{
	host.IDLPFg,
	host.IDLowShelfFc,
	host.IDLowShelfGain,
	host.IDHighShelfFc,
	host.IDHighShelfGain,
	host.IDPreDelay,
	host.IDAPFDelayMax,
	host.IDAPFDelayWeight,
	host.IDFixedDelayMax,
	host.IDFixedDelayWeight,
}

// initCandidate builds the knob set and a starting point from base. The
// decay knob always comes first.
func initCandidate(base host.Values, optimizeMix, optimizeDensity bool) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, host.NumParameters)
	vals := make([]float64, 0, host.NumParameters)

	p := base.Tank()
	defs = append(defs, knobDef{Name: knobRT60, Min: 0.1, Max: 10})
	vals = append(vals, reverb.DecayForFeedback(p.KRT, p))

	addParam := func(id string, isInt bool) {
		def, err := host.Lookup(id)
		if err != nil {
			return
		}
		v, _ := base.Get(id)
		defs = append(defs, knobDef{Name: id, Min: def.Min, Max: def.Max, IsInt: isInt})
		vals = append(vals, v)
	}
	for _, id := range timbreKnobs {
		addParam(id, false)
	}
	if optimizeMix {
		addParam(host.IDWetLevel, false)
		addParam(host.IDDryLevel, false)
	}
	if optimizeDensity {
		addParam(host.IDDensity, true)
	}

	for i := range vals {
		vals[i] = clampKnob(vals[i], defs[i])
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate writes c over base. rt60_s is applied last so kRT sees the
// candidate's delay times.
func applyCandidate(base host.Values, defs []knobDef, c candidate) host.Values {
	v := base
	rt60 := math.NaN()
	for i, def := range defs {
		if def.Name == knobRT60 {
			rt60 = c.Vals[i]
			continue
		}
		_ = v.Set(def.Name, c.Vals[i])
	}
	if !math.IsNaN(rt60) {
		p := v.Tank()
		_ = v.Set(host.IDKRT, reverb.FeedbackForDecay(rt60, p))
	}
	return v
}

func clampKnob(v float64, def knobDef) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def.Min
	}
	v = dspcore.Clamp(v, def.Min, def.Max)
	if def.IsInt {
		v = math.Round(v)
	}
	return v
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = dspcore.Clamp(pos[i], 0, 1)
		}
		vals[i] = clampKnob(defs[i].Min+x*(defs[i].Max-defs[i].Min), defs[i])
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

func knobMap(defs []knobDef, c candidate) map[string]float64 {
	m := make(map[string]float64, len(defs))
	for i, d := range defs {
		m[d.Name] = c.Vals[i]
	}
	return m
}

func updateTopCandidates(top []topCandidate, topK int, eval int, metrics analysis.Metrics, defs []knobDef, cand candidate) []topCandidate {
	top = append(top, topCandidate{
		Eval:       eval,
		Score:      metrics.Score,
		Similarity: metrics.Similarity,
		Knobs:      knobMap(defs, cand),
	})
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}

// loadCandidateFromReport resumes from best_knobs of an earlier report.
// Knobs missing from the report keep their fallback value.
func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clampKnob(v, d)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func parseWorkersFlag(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}
