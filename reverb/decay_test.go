package reverb

import (
	"math"
	"testing"
)

func TestLoopTimeDefaults(t *testing.T) {
	got := LoopTimeMs(DefaultTankParameters())
	if math.Abs(got-184.66) > 1e-9 {
		t.Fatalf("LoopTimeMs = %v, want 184.66", got)
	}
}

func TestFeedbackForDecayRoundTrip(t *testing.T) {
	p := DefaultTankParameters()
	prev := 0.0
	for _, rt60 := range []float64{0.5, 1, 2} {
		k := FeedbackForDecay(rt60, p)
		if k <= prev || k >= 1 {
			t.Fatalf("FeedbackForDecay(%v) = %v, want increasing in (0,1)", rt60, k)
		}
		prev = k
		back := DecayForFeedback(k, p)
		if math.Abs(back-rt60)/rt60 > 0.05 {
			t.Fatalf("DecayForFeedback(%v) = %v, want ~%v", k, back, rt60)
		}
	}
}

func TestFeedbackForDecayLimits(t *testing.T) {
	p := DefaultTankParameters()
	if k := FeedbackForDecay(0, p); k != 0 {
		t.Fatalf("FeedbackForDecay(0) = %v", k)
	}
	if k := FeedbackForDecay(1e6, p); k > 0.9999 {
		t.Fatalf("FeedbackForDecay(huge) = %v, want clamped", k)
	}
	if rt := DecayForFeedback(1, p); !math.IsInf(rt, 1) {
		t.Fatalf("DecayForFeedback(1) = %v, want +Inf", rt)
	}
	if rt := DecayForFeedback(0, p); rt != 0 {
		t.Fatalf("DecayForFeedback(0) = %v, want 0", rt)
	}
}
