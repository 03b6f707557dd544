// Package convolver renders a mono signal through a fixed stereo impulse
// response, typically one captured from the reverb tank.
package convolver

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
)

// DefaultPartSize is the streaming block length in samples.
const DefaultPartSize = 128

// Stereo is a streaming overlap-add convolver with one IR per channel.
type Stereo struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	leftOut  []float32
	rightOut []float32
	pad      []float32
}

// NewStereo returns a convolver with a unit impulse on both channels.
func NewStereo(sampleRate, partSize int) *Stereo {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	c := &Stereo{
		sampleRate: sampleRate,
		partSize:   partSize,
		pad:        make([]float32, partSize),
	}
	_ = c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

func (c *Stereo) SampleRate() int { return c.sampleRate }

// IRLen is the longer of the two impulse responses.
func (c *Stereo) IRLen() int { return c.irLen }

// SetIR replaces the impulse responses and clears the history. Empty IRs
// become a unit impulse.
func (c *Stereo) SetIR(leftIR []float32, rightIR []float32) error {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, err := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	if err != nil {
		return fmt.Errorf("left ir: %w", err)
	}
	rightOLA, err := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if err != nil {
		return fmt.Errorf("right ir: %w", err)
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR))

	c.leftOut = make([]float32, c.partSize)
	c.rightOut = make([]float32, c.partSize)
	c.Reset()
	return nil
}

// SetIRFromWAV loads a mono or stereo IR and resamples it to the
// convolver's rate.
func (c *Stereo) SetIRFromWAV(path string) error {
	a, err := audiofile.Read(path)
	if err != nil {
		return err
	}
	if a.Frames() == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}
	left, right := a.Stereo()
	left, err = audiofile.Resample32(left, a.SampleRate, c.sampleRate)
	if err != nil {
		return err
	}
	right, err = audiofile.Resample32(right, a.SampleRate, c.sampleRate)
	if err != nil {
		return err
	}
	return c.SetIR(left, right)
}

// Reset clears convolver history and overlap buffers.
func (c *Stereo) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
}

// Process convolves mono input and returns interleaved stereo output of the
// same length.
func (c *Stereo) Process(input []float32) []float32 {
	out := make([]float32, len(input)*2)
	c.ProcessTo(out, input)
	return out
}

// ProcessTo writes interleaved stereo into dst, which must hold
// 2*len(input) samples. A block that fails to convolve passes through dry.
func (c *Stereo) ProcessTo(dst, input []float32) {
	for processed := 0; processed < len(input); {
		blockEnd := min(processed+c.partSize, len(input))
		blockLen := blockEnd - processed
		block := input[processed:blockEnd]

		if blockLen < c.partSize {
			clear(c.pad)
			copy(c.pad, block)
			block = c.pad
		}

		errL := c.leftOLA.ProcessBlockTo(c.leftOut, block)
		errR := c.rightOLA.ProcessBlockTo(c.rightOut, block)
		for i := 0; i < blockLen; i++ {
			l, r := c.leftOut[i], c.rightOut[i]
			if errL != nil || errR != nil {
				l, r = input[processed+i], input[processed+i]
			}
			dst[(processed+i)*2] = l
			dst[(processed+i)*2+1] = r
		}
		processed = blockEnd
	}
}
