package reverb

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-jverb/dsp"
	"github.com/cwbudde/algo-jverb/filter"
)

const (
	NumBranches = 4
	NumChannels = 2

	// Every delay line is sized for this much audio at Reset.
	maxBufferMs = 100.0

	tapWeight          = 0.707
	lfoMaxModulationMs = 0.3
	outerAPFg          = 0.5
	innerAPFg          = -0.5
)

var (
	// Pairs of (outer, inner) allpass delay fractions per branch.
	apfDelayWeight   = [NumBranches * 2]float64{0.317, 0.873, 0.477, 0.291, 0.993, 0.757, 0.179, 0.575}
	fixedDelayWeight = [NumBranches]float64{1.0, 0.873, 0.707, 0.667}
	branchLFORateHz  = [NumBranches]float64{0.15, 0.33, 0.57, 0.73}

	// Output taps as percentages of each branch delay. Signs alternate
	// starting with + on the left and - on the right.
	leftTapPct       = [NumBranches]float64{23, 41, 59, 73}
	rightTapPct      = [NumBranches]float64{29, 43, 61, 79}
	leftThickTapPct  = [NumBranches]float64{31, 47, 67, 83}
	rightThickTapPct = [NumBranches]float64{37, 53, 71, 89}
)

// Tank is the reverb tank. It processes mono or stereo frames.
type Tank struct {
	params     TankParameters
	sampleRate float64

	preDelay     *SimpleDelay
	branchDelays [NumBranches]*SimpleDelay
	branchAPFs   [NumBranches]*NestedDelayAPF
	branchLPFs   [NumBranches]*dsp.SimpleLPF
	shelves      [NumChannels]*filter.TwoBandShelvingFilter

	dryGain float64
	wetGain float64
}

// NewTank returns a tank with default parameters. Call Reset before
// processing.
func NewTank() *Tank {
	t := &Tank{preDelay: NewSimpleDelay()}
	for i := 0; i < NumBranches; i++ {
		t.branchDelays[i] = NewSimpleDelay()
		t.branchAPFs[i] = NewNestedDelayAPF()
		t.branchLPFs[i] = dsp.NewSimpleLPF()
	}
	for ch := 0; ch < NumChannels; ch++ {
		t.shelves[ch] = filter.NewTwoBandShelvingFilter()
	}
	t.SetParameters(DefaultTankParameters())
	return t
}

// Reset sizes every delay line for 100 ms at sampleRate, clears all state
// and re-applies the current parameters at the new rate.
func (t *Tank) Reset(sampleRate float64) bool {
	t.sampleRate = sampleRate

	t.preDelay.Reset(sampleRate)
	t.preDelay.CreateDelayBuffer(sampleRate, maxBufferMs)

	for i := 0; i < NumBranches; i++ {
		t.branchDelays[i].Reset(sampleRate)
		t.branchDelays[i].CreateDelayBuffer(sampleRate, maxBufferMs)

		t.branchAPFs[i].Reset(sampleRate)
		t.branchAPFs[i].CreateDelayBuffers(sampleRate, maxBufferMs, maxBufferMs)

		t.branchLPFs[i].Reset(sampleRate)
	}
	for ch := 0; ch < NumChannels; ch++ {
		t.shelves[ch].Reset(sampleRate)
	}

	t.SetParameters(t.params)
	return true
}

func (t *Tank) SampleRate() float64 { return t.sampleRate }

// Parameters returns the last record passed to SetParameters.
func (t *Tank) Parameters() TankParameters { return t.params }

// SetParameters distributes p over the tank's components. Branch timings
// are derived from the two weight tables scaled by the global maxima.
func (t *Tank) SetParameters(p TankParameters) {
	t.params = p

	shelf := filter.ShelvingParameters{
		LowShelfFc:          p.LowShelfFc,
		LowShelfBoostCutDB:  p.LowShelfBoostCutDB,
		HighShelfFc:         p.HighShelfFc,
		HighShelfBoostCutDB: p.HighShelfBoostCutDB,
	}
	for ch := 0; ch < NumChannels; ch++ {
		t.shelves[ch].SetParameters(shelf)
	}

	for i := 0; i < NumBranches; i++ {
		t.branchLPFs[i].SetParameters(dsp.SimpleLPFParameters{G: p.LPFg})
	}

	pd := t.preDelay.Parameters()
	pd.DelayTimeMs = p.PreDelayTimeMs
	t.preDelay.SetParameters(pd)

	globalAPFMax := p.APFDelayWeightPct / 100.0 * p.APFDelayMaxMs
	globalFixedMax := p.FixedDelayWeightPct / 100.0 * p.FixedDelayMaxMs

	ap := t.branchAPFs[0].Parameters()
	ap.EnableLFO = true
	ap.LFOMaxModulationMs = lfoMaxModulationMs
	ap.LFODepth = 1.0
	ap.OuterG = outerAPFg
	ap.InnerG = innerAPFg

	for i := 0; i < NumBranches; i++ {
		ap.OuterDelayMs = globalAPFMax * apfDelayWeight[2*i]
		ap.InnerDelayMs = globalAPFMax * apfDelayWeight[2*i+1]
		ap.LFORateHz = branchLFORateHz[i]
		t.branchAPFs[i].SetParameters(ap)

		dp := t.branchDelays[i].Parameters()
		dp.DelayTimeMs = globalFixedMax * fixedDelayWeight[i]
		t.branchDelays[i].SetParameters(dp)
	}

	t.dryGain = dspcore.DBToLinear(p.DryLevelDB)
	t.wetGain = dspcore.DBToLinear(p.WetLevelDB)
}

// DryGain and WetGain are the linear mix factors of the current parameters.
func (t *Tank) DryGain() float64 { return t.dryGain }

func (t *Tank) WetGain() float64 { return t.wetGain }

func (t *Tank) CanProcessFrame() bool { return true }

// ProcessSample runs x through the tank as a mono frame.
func (t *Tank) ProcessSample(x float64) float64 {
	in := [2]float64{x, 0}
	var out [2]float64
	t.ProcessFrame(in[:], out[:], 1, 1)
	return out[0]
}

// ProcessFrame processes one frame of inChannels samples into outChannels
// samples. Only the first two channels are used. It reports false when the
// frame slices are too short for the channel counts.
func (t *Tank) ProcessFrame(in, out []float64, inChannels, outChannels int) bool {
	if inChannels < 1 || outChannels < 1 || len(in) < min(inChannels, NumChannels) || len(out) < min(outChannels, NumChannels) {
		return false
	}

	fb := t.params.KRT * t.branchDelays[NumBranches-1].ReadDelay()

	xL := in[0]
	xR := 0.0
	if inChannels > 1 {
		xR = in[1]
	}
	scale := 1.0 / float64(inChannels)
	mono := scale*xL + scale*xR

	pre := t.preDelay.ProcessSample(mono)

	input := pre + fb
	for i := 0; i < NumBranches; i++ {
		apfOut := t.branchAPFs[i].ProcessSample(input)
		lpfOut := t.branchLPFs[i].ProcessSample(apfOut)
		delayOut := t.params.KRT * t.branchDelays[i].ProcessSample(lpfOut)
		input = delayOut + pre
	}

	var outL, outR float64
	sign := 1.0
	for i := 0; i < NumBranches; i++ {
		outL += sign * tapWeight * t.branchDelays[i].ReadDelayAtPercentage(leftTapPct[i])
		outR -= sign * tapWeight * t.branchDelays[i].ReadDelayAtPercentage(rightTapPct[i])
		sign = -sign
	}
	if t.params.Density == DensityThick {
		sign = 1.0
		for i := 0; i < NumBranches; i++ {
			outL += sign * tapWeight * t.branchDelays[i].ReadDelayAtPercentage(leftThickTapPct[i])
			outR -= sign * tapWeight * t.branchDelays[i].ReadDelayAtPercentage(rightThickTapPct[i])
			sign = -sign
		}
	}

	tankL := t.shelves[0].ProcessSample(outL)
	tankR := t.shelves[1].ProcessSample(outR)

	if outChannels == 1 {
		out[0] = t.dryGain*xL + t.wetGain*(0.5*tankL+0.5*tankR)
		return true
	}
	out[0] = t.dryGain*xL + t.wetGain*tankL
	out[1] = t.dryGain*xR + t.wetGain*tankR
	return true
}
