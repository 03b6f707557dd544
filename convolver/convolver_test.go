package convolver

import (
	"math"
	"path/filepath"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
)

func TestStereoMatchesFFTConvolution(t *testing.T) {
	c := NewStereo(48000, 0)

	input := make([]float32, 1000)
	for i := range input {
		input[i] = float32(math.Sin(float64(i)*0.07)) * 0.8
	}
	leftIR := []float32{1.0, 0.3, -0.2, 0.1, 0.05}
	rightIR := []float32{0.8, -0.1, 0.05}
	if err := c.SetIR(leftIR, rightIR); err != nil {
		t.Fatal(err)
	}
	if c.IRLen() != 5 {
		t.Fatalf("IRLen() = %d, want 5", c.IRLen())
	}

	stereo := c.Process(input)
	outL := make([]float32, len(input))
	outR := make([]float32, len(input))
	for i := range input {
		outL[i] = stereo[i*2]
		outR[i] = stereo[i*2+1]
	}

	wantL := fftConvolve(t, input, leftIR)[:len(input)]
	wantR := fftConvolve(t, input, rightIR)[:len(input)]
	if d := maxAbsDiff(outL, wantL); d > 1e-4 {
		t.Fatalf("left channel mismatch: max diff=%g", d)
	}
	if d := maxAbsDiff(outR, wantR); d > 1e-4 {
		t.Fatalf("right channel mismatch: max diff=%g", d)
	}
}

func TestStereoResetClearsTail(t *testing.T) {
	c := NewStereo(48000, 64)
	if err := c.SetIR([]float32{1, 0.5, 0.25}, []float32{1, 0.5, 0.25}); err != nil {
		t.Fatal(err)
	}
	_ = c.Process([]float32{1, 0, 0, 0})
	c.Reset()
	after := c.Process([]float32{0, 0, 0, 0})
	for i, v := range after {
		if math.Abs(float64(v)) > 1e-7 {
			t.Fatalf("after[%d] = %v, want silence", i, v)
		}
	}
}

func TestStereoLoadsWAVAndResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")
	left := []float32{1.0, 0.2, 0.1, 0.0}
	right := []float32{0.5, 0.1, 0.05, 0.0}
	if err := audiofile.WriteStereo(path, left, right, 96000); err != nil {
		t.Fatal(err)
	}

	c := NewStereo(48000, 0)
	if err := c.SetIRFromWAV(path); err != nil {
		t.Fatalf("SetIRFromWAV: %v", err)
	}
	input := make([]float32, 512)
	input[0] = 1
	out := c.Process(input)
	var lp, rp float64
	for i := 0; i < len(input); i++ {
		lp = math.Max(lp, math.Abs(float64(out[i*2])))
		rp = math.Max(rp, math.Abs(float64(out[i*2+1])))
	}
	if lp < 1e-7 || rp < 1e-7 {
		t.Fatalf("weak response after resampling: L=%g R=%g", lp, rp)
	}
}

func TestStereoMonoWAVIsDualMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	if err := audiofile.WriteMono(path, []float32{1.0, 0.4, 0.2, 0.1}, 48000); err != nil {
		t.Fatal(err)
	}
	c := NewStereo(48000, 0)
	if err := c.SetIRFromWAV(path); err != nil {
		t.Fatal(err)
	}
	out := c.Process([]float32{1, 0, 0, 0, 0, 0})
	for i := 0; i < len(out); i += 2 {
		if out[i] != out[i+1] {
			t.Fatalf("frame %d: L=%v R=%v", i/2, out[i], out[i+1])
		}
	}
}

func fftConvolve(t *testing.T, x, h []float32) []float32 {
	t.Helper()
	y := make([]float32, len(x)+len(h)-1)
	if err := algofft.ConvolveReal(y, x, h); err != nil {
		t.Fatalf("ConvolveReal: %v", err)
	}
	return y
}

func maxAbsDiff(a, b []float32) float64 {
	var m float64
	for i := range min(len(a), len(b)) {
		m = math.Max(m, math.Abs(float64(a[i]-b[i])))
	}
	return m
}
