package analysis

import (
	"math"
	"testing"
)

func TestEnergyDecayCurve(t *testing.T) {
	edc := EnergyDecayCurve([]float64{1, 1, 1, 1})
	want := []float64{0, 10 * math.Log10(0.75), 10 * math.Log10(0.5), 10 * math.Log10(0.25)}
	for i := range want {
		if math.Abs(edc[i]-want[i]) > 1e-12 {
			t.Fatalf("edc[%d] = %v, want %v", i, edc[i], want[i])
		}
	}
	if EnergyDecayCurve(make([]float64, 8)) != nil {
		t.Fatalf("silence should have no decay curve")
	}
}

func TestMeasureDecayExponential(t *testing.T) {
	const (
		sr   = 8000
		rt60 = 0.4
	)
	// Amplitude falls 60 dB in rt60 seconds.
	a := math.Pow(10, -3.0/(rt60*sr))
	x := make([]float64, 4*sr*rt60)
	v := 1.0
	for i := range x {
		x[i] = v
		v *= a
	}
	d := MeasureDecay(x, sr)
	for name, got := range map[string]float64{"EDT": d.EDT, "T20": d.T20, "T30": d.T30, "RT60": d.RT60} {
		if math.Abs(got-rt60)/rt60 > 0.01 {
			t.Fatalf("%s = %v, want %v", name, got, rt60)
		}
	}
}

func TestMeasureDecayNoiseTail(t *testing.T) {
	const sr = 16000
	for _, rt60 := range []float64{0.3, 1.2} {
		d := MeasureDecay(makeDecayNoise(sr, 4*rt60, rt60, 29), sr)
		if math.Abs(d.T30-rt60)/rt60 > 0.1 {
			t.Fatalf("T30 = %v, want ~%v", d.T30, rt60)
		}
		if math.Abs(d.T20-rt60)/rt60 > 0.1 {
			t.Fatalf("T20 = %v, want ~%v", d.T20, rt60)
		}
	}
}

func TestMeasureDecayShortSignal(t *testing.T) {
	d := MeasureDecay([]float64{1, 0.9, 0.8}, 48000)
	if !math.IsNaN(d.T30) {
		t.Fatalf("T30 = %v, want NaN", d.T30)
	}
	if d := MeasureDecay([]float64{1}, 0); !math.IsNaN(d.RT60) {
		t.Fatalf("RT60 with zero sample rate = %v", d.RT60)
	}
}
