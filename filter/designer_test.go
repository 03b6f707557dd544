package filter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-jverb/dsp"
	"github.com/cwbudde/algo-jverb/internal/testutil"
)

const testFs = 48000.0

func newDesigned(p Parameters) *AudioFilter {
	f := NewAudioFilter()
	f.Reset(testFs)
	f.SetParameters(p)
	return f
}

func TestAudioFilterDefaults(t *testing.T) {
	f := NewAudioFilter()
	if got := f.Parameters(); got != DefaultParameters() {
		t.Fatalf("Parameters() = %+v, want %+v", got, DefaultParameters())
	}
	if f.SampleRate() != 44100 {
		t.Fatalf("SampleRate() = %v, want 44100", f.SampleRate())
	}
	if f.CanProcessFrame() {
		t.Fatalf("AudioFilter should be mono only")
	}
}

func TestAudioFilterMagnitudeAtReferencePoints(t *testing.T) {
	tests := []struct {
		name   string
		p      Parameters
		freq   float64
		wantDB float64
		tol    float64
	}{
		{"lpf1 corner", Parameters{Algorithm: LPF1, Fc: 1000, Q: 0.707}, 1000, -3.0103, 1e-3},
		{"hpf1 corner", Parameters{Algorithm: HPF1, Fc: 1000, Q: 0.707}, 1000, -3.0103, 1e-3},
		{"lpf1p corner", Parameters{Algorithm: LPF1P, Fc: 1000, Q: 0.707}, 1000, -3.0103, 1e-3},
		{"lpf2 corner equals Q", Parameters{Algorithm: LPF2, Fc: 1000, Q: 0.707}, 1000, 20 * math.Log10(0.707), 1e-6},
		{"hpf2 corner equals Q", Parameters{Algorithm: HPF2, Fc: 1000, Q: 2}, 1000, 20 * math.Log10(2), 1e-6},
		{"butter lpf2 corner", Parameters{Algorithm: ButterLPF2, Fc: 1000, Q: 0.707}, 1000, -3.0103, 1e-3},
		{"butter hpf2 corner", Parameters{Algorithm: ButterHPF2, Fc: 1000, Q: 0.707}, 1000, -3.0103, 1e-3},
		{"linkwitz-riley lpf corner", Parameters{Algorithm: LWRLPF2, Fc: 1000, Q: 0.707}, 1000, -6.0206, 1e-3},
		{"linkwitz-riley hpf corner", Parameters{Algorithm: LWRHPF2, Fc: 1000, Q: 0.707}, 1000, -6.0206, 1e-3},
		{"bpf2 center", Parameters{Algorithm: BPF2, Fc: 1000, Q: 2}, 1000, 0, 1e-6},
		{"butter bpf2 center", Parameters{Algorithm: ButterBPF2, Fc: 1000, Q: 2}, 1000, 0, 1e-6},
		{"resonA center", Parameters{Algorithm: ResonA, Fc: 1000, Q: 5}, 1000, 0, 1e-6},
		{"matched bpf2A center", Parameters{Algorithm: MatchBP2A, Fc: 1000, Q: 2}, 1000, 0, 1e-6},
		{"cq para boost", Parameters{Algorithm: CQParaEQ, Fc: 1000, Q: 2, BoostCutDB: 12}, 1000, 12, 1e-6},
		{"cq para cut", Parameters{Algorithm: CQParaEQ, Fc: 1000, Q: 2, BoostCutDB: -12}, 1000, -12, 1e-6},
		{"ncq para boost", Parameters{Algorithm: NCQParaEQ, Fc: 1000, Q: 2, BoostCutDB: 12}, 1000, 12, 1e-6},
		{"ncq para cut", Parameters{Algorithm: NCQParaEQ, Fc: 1000, Q: 2, BoostCutDB: -12}, 1000, -12, 1e-6},
		{"low shelf DC", Parameters{Algorithm: LowShelf, Fc: 150, Q: 0.707, BoostCutDB: -20}, 0, -20, 1e-9},
		{"low shelf nyquist", Parameters{Algorithm: LowShelf, Fc: 150, Q: 0.707, BoostCutDB: -20}, testFs / 2, 0, 1e-6},
		{"high shelf DC", Parameters{Algorithm: HiShelf, Fc: 4000, Q: 0.707, BoostCutDB: -6}, 0, 0, 1e-9},
		{"high shelf nyquist", Parameters{Algorithm: HiShelf, Fc: 4000, Q: 0.707, BoostCutDB: -6}, testFs / 2, -6, 1e-6},
		{"high shelf boost nyquist", Parameters{Algorithm: HiShelf, Fc: 4000, Q: 0.707, BoostCutDB: 9}, testFs / 2, 9, 1e-6},
		{"matched lp2A DC", Parameters{Algorithm: MatchLP2A, Fc: 1000, Q: 0.707}, 0, 0, 1e-9},
		{"matched lp2B DC", Parameters{Algorithm: MatchLP2B, Fc: 1000, Q: 0.707}, 0, 0, 1e-9},
		{"impulse invariant lp1 DC", Parameters{Algorithm: ImpInvLP1, Fc: 1000, Q: 0.707}, 0, 0, 1e-9},
		{"mma lpf2B DC", Parameters{Algorithm: MMALPF2B, Fc: 1000, Q: 5}, 0, 0, 1e-9},
		{"mma lpf2 DC compensation", Parameters{Algorithm: MMALPF2, Fc: 1000, Q: 5}, 0, -7.0115, 1e-3},
	}

	for _, tt := range tests {
		f := newDesigned(tt.p)
		got := f.MagnitudeDB(tt.freq)
		if math.Abs(got-tt.wantDB) > tt.tol {
			t.Fatalf("%s: |H(%v)| = %.6f dB, want %.6f dB", tt.name, tt.freq, got, tt.wantDB)
		}
	}
}

func TestAudioFilterNotches(t *testing.T) {
	for _, a := range []Algorithm{BSF2, ButterBSF2} {
		f := newDesigned(Parameters{Algorithm: a, Fc: 1000, Q: 2})
		if got := f.MagnitudeDB(1000); got > -60 {
			t.Fatalf("%s: notch depth %.2f dB, want < -60 dB", a, got)
		}
		if got := f.MagnitudeDB(20); math.Abs(got) > 0.01 {
			t.Fatalf("%s: passband %.4f dB, want ~0 dB", a, got)
		}
	}
	f := newDesigned(Parameters{Algorithm: ResonB, Fc: 1000, Q: 5})
	if got := f.MagnitudeDB(0); got > -100 {
		t.Fatalf("resonB should have a zero at DC, got %.2f dB", got)
	}
}

func TestAudioFilterAllpassHasUnitMagnitude(t *testing.T) {
	for _, a := range []Algorithm{APF1, APF2} {
		f := newDesigned(Parameters{Algorithm: a, Fc: 2000, Q: 1.5})
		for _, freq := range []float64{20, 200, 2000, 9000, 20000} {
			if got := f.MagnitudeDB(freq); math.Abs(got) > 1e-9 {
				t.Fatalf("%s: |H(%v)| = %g dB, want 0", a, freq, got)
			}
		}
	}
}

func TestAudioFilterCoercesNonPositiveQ(t *testing.T) {
	f := newDesigned(Parameters{Algorithm: LPF2, Fc: 1000, Q: -1})
	if got := f.Parameters().Q; got != 0.707 {
		t.Fatalf("Q = %v, want 0.707", got)
	}
	want := Design(Parameters{Algorithm: LPF2, Fc: 1000, Q: 0.707}, testFs)
	if f.Coefficients() != want {
		t.Fatalf("coefficients not designed with corrected Q")
	}
}

func TestAudioFilterIgnoresUnchangedParameters(t *testing.T) {
	f := newDesigned(Parameters{Algorithm: LPF2, Fc: 1000, Q: 0.707})
	before := f.Coefficients()
	f.SetParameters(Parameters{Algorithm: LPF2, Fc: 1000, Q: 0.707})
	if f.Coefficients() != before {
		t.Fatalf("coefficients changed on a no-op update")
	}

	tiny := 150 * (1 + 1e-13)
	f.SetParameters(Parameters{Algorithm: LowShelf, Fc: 150, Q: 0.707, BoostCutDB: -20})
	f.SetParameters(Parameters{Algorithm: LowShelf, Fc: tiny, Q: 0.707, BoostCutDB: -20})
	if got := f.Parameters().Fc; got != tiny {
		t.Fatalf("fc = %v after a small change, want %v", got, tiny)
	}

	before = f.Coefficients()
	f.SetParameters(Parameters{Algorithm: LowShelf, Fc: 1200, Q: 0.707, BoostCutDB: -20})
	if f.Coefficients() == before {
		t.Fatalf("coefficients did not follow a real change")
	}
}

func TestCookbookDesignsUseSectionCoefficients(t *testing.T) {
	const fc, q = 1000.0, 2.0
	tests := []struct {
		a    Algorithm
		want biquad.Coefficients
	}{
		{LPF2, design.Lowpass(fc, q, testFs)},
		{HPF2, design.Highpass(fc, q, testFs)},
		{BSF2, design.Notch(fc, q, testFs)},
		{ButterLPF2, design.Lowpass(fc, 1/math.Sqrt2, testFs)},
		{ButterHPF2, design.Highpass(fc, 1/math.Sqrt2, testFs)},
	}
	for _, tt := range tests {
		c := Design(Parameters{Algorithm: tt.a, Fc: fc, Q: q}, testFs)
		got := [5]float64{c[dsp.CoeffA0], c[dsp.CoeffA1], c[dsp.CoeffA2], c[dsp.CoeffB1], c[dsp.CoeffB2]}
		want := [5]float64{tt.want.B0, tt.want.B1, tt.want.B2, tt.want.A1, tt.want.A2}
		if got != want {
			t.Fatalf("%s: coefficients %v, want %v", tt.a, got, want)
		}
		if c[dsp.CoeffC0] != 1 || c[dsp.CoeffD0] != 0 {
			t.Fatalf("%s: c0=%v d0=%v, want 1 and 0", tt.a, c[dsp.CoeffC0], c[dsp.CoeffD0])
		}
	}
}

// The bandpass keeps its own normalization: unity gain at the center
// instead of the cookbook's peak gain of Q.
func TestBandpassKeepsUnityCenterGain(t *testing.T) {
	f := newDesigned(Parameters{Algorithm: BPF2, Fc: 1000, Q: 4})
	if got := f.MagnitudeDB(1000); math.Abs(got) > 1e-6 {
		t.Fatalf("bpf2 center = %.6f dB, want 0 dB", got)
	}
}

func TestAudioFilterResetRedesignsForSampleRate(t *testing.T) {
	p := Parameters{Algorithm: ButterLPF2, Fc: 1000, Q: 0.707}
	f := newDesigned(p)
	f.Reset(96000)
	if f.Coefficients() != Design(p, 96000) {
		t.Fatalf("Reset did not redesign for 96 kHz")
	}
	if got := f.MagnitudeDB(1000); math.Abs(got+3.0103) > 1e-3 {
		t.Fatalf("corner after rate change = %.4f dB, want -3.01 dB", got)
	}
}

func TestAudioFilterShelfConvergesOnDC(t *testing.T) {
	f := newDesigned(Parameters{Algorithm: LowShelf, Fc: 150, Q: 0.707, BoostCutDB: -20})
	out := testutil.Run(f.ProcessSample, testutil.DC(1, 4800))
	if got := out[len(out)-1]; math.Abs(got-0.1) > 1e-6 {
		t.Fatalf("DC through -20 dB low shelf settled at %v, want 0.1", got)
	}
}

func TestAudioFilterOutputMixesDryAndWet(t *testing.T) {
	f := newDesigned(Parameters{Algorithm: HiShelf, Fc: 4000, Q: 0.707, BoostCutDB: 6})
	c := f.Coefficients()
	if c[dsp.CoeffD0] != 1 || math.Abs(c[dsp.CoeffC0]-(math.Pow(10, 6.0/20)-1)) > 1e-12 {
		t.Fatalf("shelf mix coefficients c0=%v d0=%v", c[dsp.CoeffC0], c[dsp.CoeffD0])
	}
	// First output of an impulse is d0 + c0*a0.
	y := f.ProcessSample(1)
	if want := c[dsp.CoeffD0] + c[dsp.CoeffC0]*c[dsp.CoeffA0]; math.Abs(y-want) > 1e-12 {
		t.Fatalf("y[0] = %v, want %v", y, want)
	}
}

func TestDesignStartsFromUnitCoefficients(t *testing.T) {
	c := Design(Parameters{Algorithm: LPF1P, Fc: 500, Q: 1}, testFs)
	if c[dsp.CoeffC0] != 1 || c[dsp.CoeffD0] != 0 || c[dsp.CoeffA2] != 0 || c[dsp.CoeffB2] != 0 {
		t.Fatalf("unexpected defaults in %v", c)
	}
}

func TestAllAlgorithmsAreStable(t *testing.T) {
	for _, a := range Algorithms() {
		f := newDesigned(Parameters{Algorithm: a, Fc: 1500, Q: 1.2, BoostCutDB: 6})
		out := testutil.Run(f.ProcessSample, testutil.Impulse(8192, 0))
		testutil.RequireFinite(t, out)
		tail := out[len(out)-512:]
		if m := testutil.MaxAbs(tail); m > 1e-6 {
			t.Fatalf("%s: impulse response still at %g after 8k samples", a, m)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms() {
		got, err := ParseAlgorithm(a.String())
		if err != nil || got != a {
			t.Fatalf("ParseAlgorithm(%q) = %v, %v", a.String(), got, err)
		}
	}
	if got, err := ParseAlgorithm("kLowShelf"); err != nil || got != LowShelf {
		t.Fatalf("ParseAlgorithm(kLowShelf) = %v, %v", got, err)
	}
	if got, err := ParseAlgorithm(" ButterLPF2 "); err != nil || got != ButterLPF2 {
		t.Fatalf("ParseAlgorithm(ButterLPF2) = %v, %v", got, err)
	}
	if _, err := ParseAlgorithm("comb"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}
