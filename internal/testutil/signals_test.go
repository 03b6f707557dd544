package testutil

import (
	"math"
	"testing"
)

func TestImpulse(t *testing.T) {
	x := Impulse(8, 3)
	for i, v := range x {
		want := 0.0
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("x[%d] = %v, want %v", i, v, want)
		}
	}
	if e := Energy(Impulse(4, 9)); e != 0 {
		t.Fatalf("out of range impulse energy = %v, want 0", e)
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(7, 0.5, 256)
	b := DeterministicNoise(7, 0.5, 256)
	RequireSliceNearlyEqual(t, a, b, 0)
	if MaxAbs(a) > 0.5 {
		t.Fatalf("noise exceeds amplitude: %v", MaxAbs(a))
	}
}

func TestLogSweepStaysBounded(t *testing.T) {
	x := LogSweep(20, 20000, 48000, 0.9, 48000)
	RequireFinite(t, x)
	if p := MaxAbs(x); p > 0.9+1e-12 || p < 0.89 {
		t.Fatalf("sweep peak = %v, want ~0.9", p)
	}
	if math.Abs(x[0]) > 1e-12 {
		t.Fatalf("sweep should start at zero phase, got %v", x[0])
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
