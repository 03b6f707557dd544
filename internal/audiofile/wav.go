// Package audiofile reads and writes 16-bit WAV files and converts sample
// rates for the command-line tools.
package audiofile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Audio is decoded interleaved PCM scaled to [-1,1].
type Audio struct {
	SampleRate int
	Channels   int
	Data       []float32
}

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	if a.Channels < 1 {
		return 0
	}
	return len(a.Data) / a.Channels
}

// Mono averages all channels.
func (a *Audio) Mono() []float64 {
	ch := a.Channels
	frames := a.Frames()
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(a.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out
}

// Stereo splits the first two channels. Mono files are duplicated.
func (a *Audio) Stereo() (left, right []float32) {
	ch := a.Channels
	frames := a.Frames()
	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := 0; i < frames; i++ {
		left[i] = a.Data[i*ch]
		if ch > 1 {
			right[i] = a.Data[i*ch+1]
		} else {
			right[i] = left[i]
		}
	}
	return left, right
}

// Read decodes a WAV file.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	return &Audio{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Data:       buf.Data,
	}, nil
}

// ReadMono decodes a WAV file and mixes it to mono.
func ReadMono(path string) ([]float64, int, error) {
	a, err := Read(path)
	if err != nil {
		return nil, 0, err
	}
	return a.Mono(), a.SampleRate, nil
}

// Resample converts in from fromRate to toRate. Equal rates return in.
func Resample(in []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", fromRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// Resample32 is Resample for float32 data.
func Resample32(in []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64, err := Resample(in64, fromRate, toRate)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}

// WriteInterleaved writes 16-bit PCM with the given channel count.
func WriteInterleaved(path string, samples []float32, channels, sampleRate int) error {
	if channels < 1 {
		return fmt.Errorf("invalid channel count %d", channels)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// WriteStereo interleaves left and right and writes them.
func WriteStereo(path string, left, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch")
	}
	data := make([]float32, len(left)*2)
	for i := range left {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return WriteInterleaved(path, data, 2, sampleRate)
}

func WriteMono(path string, data []float32, sampleRate int) error {
	return WriteInterleaved(path, data, 1, sampleRate)
}

// Peak returns the largest absolute sample.
func Peak(x []float32) float32 {
	var p float32
	for _, v := range x {
		if a := float32(math.Abs(float64(v))); a > p {
			p = a
		}
	}
	return p
}

// Float32 converts x.
func Float32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
