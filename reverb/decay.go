package reverb

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// LoopTimeMs returns the time a sample needs for one trip around the tank:
// all four allpass pairs plus all four fixed branch delays.
func LoopTimeMs(p TankParameters) float64 {
	apfMax := p.APFDelayWeightPct / 100.0 * p.APFDelayMaxMs
	fixedMax := p.FixedDelayWeightPct / 100.0 * p.FixedDelayMaxMs
	var total float64
	for _, w := range apfDelayWeight {
		total += apfMax * w
	}
	for _, w := range fixedDelayWeight {
		total += fixedMax * w
	}
	return total
}

// gainStagesPerLoop counts the kRT multiplications in one trip: one per
// branch delay plus the global feedback tap.
const gainStagesPerLoop = NumBranches + 1

// FeedbackForDecay returns the kRT that makes the loop decay by 60 dB in
// rt60Seconds for the timing in p. The result is clamped to [0, 0.9999].
func FeedbackForDecay(rt60Seconds float64, p TankParameters) float64 {
	loop := LoopTimeMs(p)
	if rt60Seconds <= 0 || loop <= 0 {
		return 0
	}
	// 60 dB = ln(1000) nepers spread over rt60/loop trips.
	exponent := -math.Ln10 * 3.0 * loop / (1000.0 * rt60Seconds * gainStagesPerLoop)
	k := float64(approx.FastExp(float32(exponent)))
	return math.Min(math.Max(k, 0), 0.9999)
}

// DecayForFeedback inverts FeedbackForDecay. It returns +Inf for kRT >= 1
// and 0 for kRT <= 0.
func DecayForFeedback(kRT float64, p TankParameters) float64 {
	if kRT <= 0 {
		return 0
	}
	if kRT >= 1 {
		return math.Inf(1)
	}
	loop := LoopTimeMs(p)
	return -3.0 * math.Ln10 * loop / (1000.0 * gainStagesPerLoop * math.Log(kRT))
}
