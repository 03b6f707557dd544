package audiofile

import (
	"math"
	"path/filepath"
	"testing"
)

func TestStereoRoundTrip(t *testing.T) {
	left := []float32{0.5, -0.25, 0.125, 0}
	right := []float32{-0.5, 0.25, 0, 0.75}
	path := filepath.Join(t.TempDir(), "nested", "st.wav")
	if err := WriteStereo(path, left, right, 44100); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	a, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.SampleRate != 44100 || a.Channels != 2 || a.Frames() != 4 {
		t.Fatalf("format = %d Hz, %d ch, %d frames", a.SampleRate, a.Channels, a.Frames())
	}
	l, r := a.Stereo()
	for i := range left {
		if math.Abs(float64(l[i]-left[i])) > 1e-4 || math.Abs(float64(r[i]-right[i])) > 1e-4 {
			t.Fatalf("frame %d = (%v,%v), want (%v,%v)", i, l[i], r[i], left[i], right[i])
		}
	}
	mono := a.Mono()
	if math.Abs(mono[3]-0.375) > 1e-4 {
		t.Fatalf("mono[3] = %v, want 0.375", mono[3])
	}
}

func TestMonoFileAsStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.wav")
	if err := WriteMono(path, []float32{0.5, 0.25}, 48000); err != nil {
		t.Fatal(err)
	}
	mono, sr, err := ReadMono(path)
	if err != nil {
		t.Fatal(err)
	}
	if sr != 48000 || len(mono) != 2 {
		t.Fatalf("ReadMono = %d samples @ %d", len(mono), sr)
	}
	a, _ := Read(path)
	l, r := a.Stereo()
	if l[0] != r[0] || l[1] != r[1] {
		t.Fatalf("mono file should duplicate into both channels")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := WriteInterleaved(filepath.Join(t.TempDir(), "x.wav"), nil, 0, 48000); err == nil {
		t.Fatalf("expected error for zero channels")
	}
	if err := WriteStereo(filepath.Join(t.TempDir(), "x.wav"), []float32{1}, nil, 48000); err == nil {
		t.Fatalf("expected error for mismatched channels")
	}
}

func TestResample(t *testing.T) {
	in := make([]float64, 9600)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 96000)
	}
	same, err := Resample(in, 96000, 96000)
	if err != nil || &same[0] != &in[0] {
		t.Fatalf("equal rates should return the input")
	}
	out, err := Resample(in, 96000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(len(out))-4800) > 64 {
		t.Fatalf("resampled length = %d, want about 4800", len(out))
	}
	if _, err := Resample(in, 0, 48000); err == nil {
		t.Fatalf("expected error for zero rate")
	}
	out32, err := Resample32(Float32(in), 96000, 48000)
	if err != nil || len(out32) != len(out) {
		t.Fatalf("Resample32 = %d samples, %v", len(out32), err)
	}
}

func TestPeak(t *testing.T) {
	if p := Peak([]float32{0.1, -0.8, 0.5}); p != 0.8 {
		t.Fatalf("Peak = %v, want 0.8", p)
	}
}
