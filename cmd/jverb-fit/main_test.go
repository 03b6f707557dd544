package main

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

func TestInitCandidateDefaultKnobs(t *testing.T) {
	defs, cand := initCandidate(host.DefaultValues(), false, false)
	// rt60 + 10 timbre knobs
	if len(defs) != 11 {
		t.Fatalf("defs len = %d, want 11", len(defs))
	}
	if len(cand.Vals) != len(defs) {
		t.Fatalf("vals len = %d, want %d", len(cand.Vals), len(defs))
	}
	if defs[0].Name != knobRT60 {
		t.Fatalf("first knob = %q, want %q", defs[0].Name, knobRT60)
	}
	for i, d := range defs {
		if cand.Vals[i] < d.Min || cand.Vals[i] > d.Max {
			t.Fatalf("%s = %v outside [%v,%v]", d.Name, cand.Vals[i], d.Min, d.Max)
		}
	}

	defs, _ = initCandidate(host.DefaultValues(), true, true)
	if len(defs) != 14 {
		t.Fatalf("defs len with mix and density = %d, want 14", len(defs))
	}
	if last := defs[len(defs)-1]; last.Name != host.IDDensity || !last.IsInt {
		t.Fatalf("last knob = %+v, want integer density", last)
	}
}

func TestApplyCandidateSetsValues(t *testing.T) {
	defs := []knobDef{
		{Name: knobRT60, Min: 0.1, Max: 10},
		{Name: host.IDPreDelay, Min: 0, Max: 100},
		{Name: host.IDFixedDelayMax, Min: 0, Max: 100},
		{Name: host.IDDensity, Min: 0, Max: 1, IsInt: true},
	}
	cand := candidate{Vals: []float64{2.0, 12, 60, 1}}
	v := applyCandidate(host.DefaultValues(), defs, cand)

	if got, _ := v.Get(host.IDPreDelay); got != 12 {
		t.Fatalf("pre delay = %v, want 12", got)
	}
	if got, _ := v.Get(host.IDDensity); got != float64(reverb.DensityThin) {
		t.Fatalf("density = %v, want thin", got)
	}
	p := v.Tank()
	if rt := reverb.DecayForFeedback(p.KRT, p); math.Abs(rt-2.0)/2.0 > 0.05 {
		t.Fatalf("kRT decays in %v s, want 2.0", rt)
	}
}

func TestInitApplyRoundTrip(t *testing.T) {
	base := host.DefaultValues()
	_ = base.Set(host.IDKRT, 0.8)
	defs, cand := initCandidate(base, false, false)
	v := applyCandidate(base, defs, cand)
	for _, p := range host.Parameters() {
		got, _ := v.Get(p.ID)
		want, _ := base.Get(p.ID)
		tol := 1e-9
		if p.ID == host.IDKRT {
			// kRT passes through the decay time and back
			tol = 0.01
		}
		if math.Abs(got-want) > tol {
			t.Fatalf("%s = %v, want %v", p.ID, got, want)
		}
	}
}

func TestFromNormalized(t *testing.T) {
	defs := []knobDef{
		{Name: "a", Min: 10, Max: 20},
		{Name: "b", Min: 0, Max: 1, IsInt: true},
		{Name: "c", Min: -5, Max: 5},
	}
	c := fromNormalized([]float64{0.5, 0.7, 2}, defs)
	want := []float64{15, 1, 5}
	for i := range want {
		if c.Vals[i] != want[i] {
			t.Fatalf("vals[%d] = %v, want %v", i, c.Vals[i], want[i])
		}
	}
}

func TestLoadCandidateFromReportBestKnobs(t *testing.T) {
	tmp := t.TempDir()
	reportPath := filepath.Join(tmp, "rep.json")
	if err := os.WriteFile(reportPath, []byte(`{"best_knobs":{"rt60_s":3.5,"pre_delay_ms":250}}`), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	defs := []knobDef{
		{Name: knobRT60, Min: 0.1, Max: 10},
		{Name: host.IDPreDelay, Min: 0, Max: 100},
		{Name: host.IDLPFg, Min: 0, Max: 0.5},
	}
	fallback := candidate{Vals: []float64{1, 10, 0.3}}

	got, ok, err := loadCandidateFromReport(reportPath, defs, fallback)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	if !ok {
		t.Fatalf("expected resume candidate")
	}
	if got.Vals[0] != 3.5 {
		t.Fatalf("rt60 = %v, want 3.5", got.Vals[0])
	}
	if got.Vals[1] != 100 {
		t.Fatalf("pre delay = %v, want clamp at 100", got.Vals[1])
	}
	if got.Vals[2] != 0.3 {
		t.Fatalf("lpf_g = %v, want fallback 0.3", got.Vals[2])
	}
}

func TestLoadCandidateFromReportMissingFile(t *testing.T) {
	fallback := candidate{Vals: []float64{1}}
	got, ok, err := loadCandidateFromReport(filepath.Join(t.TempDir(), "none.json"), []knobDef{{Name: "x", Max: 2}}, fallback)
	if err != nil || ok {
		t.Fatalf("missing report: ok=%v err=%v", ok, err)
	}
	if got.Vals[0] != 1 {
		t.Fatalf("fallback not returned")
	}
}

func TestUpdateTopCandidatesKeepsBest(t *testing.T) {
	defs := []knobDef{{Name: "x", Max: 1}}
	var top []topCandidate
	for i, score := range []float64{0.5, 0.2, 0.9, 0.2, 0.1} {
		top = updateTopCandidates(top, 3, i+1, analysis.Metrics{Score: score}, defs, candidate{Vals: []float64{score}})
	}
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	if top[0].Score != 0.1 || top[1].Eval != 2 || top[2].Eval != 4 {
		t.Fatalf("order = %+v", top)
	}
}

func TestReserveEvalCapsAtMax(t *testing.T) {
	const (
		maxEvals = 47
		workers  = 8
	)

	var evals int64
	var granted int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if _, ok := reserveEval(&evals, maxEvals); !ok {
					return
				}
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&granted); got != maxEvals {
		t.Fatalf("granted evaluations = %d, want %d", got, maxEvals)
	}
	if got := atomic.LoadInt64(&evals); got != maxEvals {
		t.Fatalf("eval counter = %d, want %d", got, maxEvals)
	}
}

func TestCloneCandidateCopiesSlice(t *testing.T) {
	orig := candidate{Vals: []float64{1.0, 2.0, 3.0}}
	cloned := cloneCandidate(orig)
	cloned.Vals[0] = 99.0

	if orig.Vals[0] != 1.0 {
		t.Fatalf("clone mutated original: got %.1f want 1.0", orig.Vals[0])
	}
}

func TestParseWorkersFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"auto", 0, false},
		{" AUTO ", 0, false},
		{"4", 4, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"many", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWorkersFlag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseWorkersFlag(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseWorkersFlag(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewMayflyConfigVariants(t *testing.T) {
	for _, v := range []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"} {
		cfg, err := newMayflyConfig(v, 10, 5, 3)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if cfg.ProblemSize != 5 || cfg.NPop != 10 || cfg.NC != 20 || cfg.NM != 1 {
			t.Fatalf("%s: unexpected config", v)
		}
	}
	if _, err := newMayflyConfig("nope", 10, 5, 3); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestWriteOutputsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := host.DefaultValues()
	defs, cand := initCandidate(base, false, false)
	o := outputs{
		presetPath: filepath.Join(dir, "fit.json"),
		irPath:     filepath.Join(dir, "fit.wav"),
		reportPath: filepath.Join(dir, "fit.json.report.json"),
		sampleRate: 16000,
		durationS:  0.2,
		variant:    "desma",
		base:       base,
		defs:       defs,
	}
	if err := o.write(cand, analysis.Metrics{Score: 0.3}, 1, 0, 0, nil, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok, err := loadCandidateFromReport(o.reportPath, defs, candidate{Vals: make([]float64, len(defs))})
	if err != nil || !ok {
		t.Fatalf("reload report: ok=%v err=%v", ok, err)
	}
	for i := range cand.Vals {
		if math.Abs(got.Vals[i]-cand.Vals[i]) > 1e-9 {
			t.Fatalf("knob %s = %v, want %v", defs[i].Name, got.Vals[i], cand.Vals[i])
		}
	}
	for _, p := range []string{o.presetPath, o.irPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
}
