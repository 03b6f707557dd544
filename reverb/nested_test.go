package reverb

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-jverb/internal/testutil"
)

func newNested(fs float64, p NestedDelayAPFParameters) *NestedDelayAPF {
	n := NewNestedDelayAPF()
	n.CreateDelayBuffers(fs, 100, 100)
	n.Reset(fs)
	n.SetParameters(p)
	return n
}

func TestNestedDefaults(t *testing.T) {
	p := DefaultNestedDelayAPFParameters()
	if p.LFODepth != 1 || p.OuterDelayMs != 0 || p.InnerDelayMs != 0 {
		t.Fatalf("defaults = %+v", p)
	}
}

func TestNestedZeroOuterDelayBypasses(t *testing.T) {
	n := newNested(48000, NestedDelayAPFParameters{InnerDelayMs: 3, OuterG: 0.5, InnerG: -0.5})
	in := testutil.DeterministicNoise(5, 1, 300)
	testutil.RequireSliceNearlyEqual(t, testutil.Run(n.ProcessSample, in), in, 0)
}

func TestNestedWithoutInnerDelayMatchesSingleAllpass(t *testing.T) {
	const fs = 48000.0
	n := newNested(fs, NestedDelayAPFParameters{OuterDelayMs: 4, OuterG: 0.6, InnerG: -0.5})
	a := newAPF(fs, DelayAPFParameters{DelayTimeMs: 4, APFg: 0.6})

	in := testutil.DeterministicNoise(6, 0.7, 4096)
	testutil.RequireSliceNearlyEqual(t, testutil.Run(n.ProcessSample, in), testutil.Run(a.ProcessSample, in), 0)
}

func TestNestedIsAllpass(t *testing.T) {
	const fs = 48000.0
	n := newNested(fs, NestedDelayAPFParameters{
		OuterDelayMs: 5,
		InnerDelayMs: 3,
		OuterG:       0.5,
		InnerG:       -0.5,
	})
	ir := testutil.Run(n.ProcessSample, testutil.Impulse(int(fs), 0))
	if ir[0] != -0.5 {
		t.Fatalf("ir[0] = %v, want -0.5", ir[0])
	}
	if e := testutil.Energy(ir); math.Abs(e-1) > 1e-6 {
		t.Fatalf("nested allpass energy = %v, want 1", e)
	}
}

func TestNestedModulatesOuterOnly(t *testing.T) {
	n := newNested(48000, NestedDelayAPFParameters{
		OuterDelayMs:       5,
		InnerDelayMs:       3,
		OuterG:             0.5,
		InnerG:             -0.5,
		EnableLFO:          true,
		LFORateHz:          0.33,
		LFODepth:           1,
		LFOMaxModulationMs: 0.3,
	})
	op := n.outer.Parameters()
	if !op.EnableLFO || op.LFORateHz != 0.33 || op.LFOMaxModulationMs != 0.3 || op.APFg != 0.5 {
		t.Fatalf("outer parameters = %+v", op)
	}
	ip := n.inner.Parameters()
	if ip.EnableLFO || ip.APFg != -0.5 || ip.DelayTimeMs != 3 {
		t.Fatalf("inner parameters = %+v", ip)
	}
}
