package host

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-jverb/reverb"
)

// ErrUnsupportedLayout is returned for bus layouts other than mono or stereo
// with matching input and output channel counts.
var ErrUnsupportedLayout = errors.New("unsupported bus layout")

const settleEpsilon = 1e-6

// Processor runs a Tank on interleaved blocks. Parameter changes are
// collected between blocks and applied once at the start of the next one.
type Processor struct {
	tank *reverb.Tank

	targets   Values
	current   Values
	smoothers [NumParameters]Smoother
	dirty     bool

	smoothingMs float64
	sampleRate  float64
	blockSize   int
	channels    int

	frameIn  [reverb.NumChannels]float64
	frameOut [reverb.NumChannels]float64
}

// NewProcessor returns a stereo processor with default parameters.
func NewProcessor() *Processor {
	p := &Processor{
		tank:       reverb.NewTank(),
		targets:    DefaultValues(),
		channels:   2,
		sampleRate: 44100,
		blockSize:  512,
	}
	p.current = p.targets
	p.tank.SetParameters(p.current.Tank())
	return p
}

// Tank exposes the processed tank.
func (p *Processor) Tank() *reverb.Tank { return p.tank }

func (p *Processor) Channels() int { return p.channels }

func (p *Processor) SampleRate() float64 { return p.sampleRate }

// SetBusLayout accepts 1->1 and 2->2.
func (p *Processor) SetBusLayout(inChannels, outChannels int) error {
	if inChannels != outChannels || inChannels < 1 || inChannels > reverb.NumChannels {
		return fmt.Errorf("%w: %d in, %d out", ErrUnsupportedLayout, inChannels, outChannels)
	}
	p.channels = inChannels
	return nil
}

// SetSmoothing sets the parameter smoothing time. 0 applies changes at the
// next block boundary without ramping.
func (p *Processor) SetSmoothing(ms float64) {
	p.smoothingMs = math.Max(ms, 0)
	p.configureSmoothers()
}

// Prepare resets the tank for a new stream. Pending parameter changes are
// applied immediately.
func (p *Processor) Prepare(sampleRate float64, blockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0")
	}
	if blockSize <= 0 {
		return fmt.Errorf("block size must be > 0")
	}
	p.sampleRate = sampleRate
	p.blockSize = blockSize
	p.configureSmoothers()

	p.current = p.targets
	for i := range p.smoothers {
		p.smoothers[i].Reset(p.current[i])
	}
	p.dirty = false
	p.tank.SetParameters(p.current.Tank())
	p.tank.Reset(sampleRate)
	return nil
}

func (p *Processor) configureSmoothers() {
	blockRate := p.sampleRate / float64(max(p.blockSize, 1))
	for i := range p.smoothers {
		if layout[i].Step > 0 {
			p.smoothers[i].SetTime(0, blockRate)
			continue
		}
		p.smoothers[i].SetTime(p.smoothingMs, blockRate)
	}
}

// SetParameter stores an automation value. It takes effect at the next
// block.
func (p *Processor) SetParameter(id string, v float64) error {
	if err := p.targets.Set(id, v); err != nil {
		return err
	}
	p.dirty = true
	return nil
}

// Parameter returns the latest value set for id.
func (p *Processor) Parameter(id string) (float64, error) {
	return p.targets.Get(id)
}

// State returns the parameter targets.
func (p *Processor) State() Values { return p.targets }

// SetState replaces all parameter targets.
func (p *Processor) SetState(v Values) {
	for i := range v {
		p.targets[i] = layout[i].Clamp(v[i])
	}
	p.dirty = true
}

func (p *Processor) applyParameters() {
	if !p.dirty {
		return
	}
	settled := true
	for i := range p.current {
		p.current[i] = p.smoothers[i].Process(p.targets[i])
		if math.Abs(p.current[i]-p.targets[i]) > settleEpsilon {
			settled = false
			continue
		}
		p.current[i] = p.targets[i]
		p.smoothers[i].Reset(p.targets[i])
	}
	p.tank.SetParameters(p.current.Tank())
	p.dirty = !settled
}

// ProcessBlock processes interleaved samples in place. channels must match
// the bus layout.
func (p *Processor) ProcessBlock(buf []float64, channels int) error {
	if channels != p.channels {
		return fmt.Errorf("%w: block has %d channels, bus has %d", ErrUnsupportedLayout, channels, p.channels)
	}
	if len(buf)%channels != 0 {
		return fmt.Errorf("block length %d is not a multiple of %d channels", len(buf), channels)
	}
	p.applyParameters()

	in := p.frameIn[:channels]
	out := p.frameOut[:channels]
	for i := 0; i < len(buf); i += channels {
		copy(in, buf[i:i+channels])
		p.tank.ProcessFrame(in, out, channels, channels)
		copy(buf[i:i+channels], out)
	}
	return nil
}

// ProcessBlock32 is ProcessBlock for float32 audio.
func (p *Processor) ProcessBlock32(buf []float32, channels int) error {
	if channels != p.channels {
		return fmt.Errorf("%w: block has %d channels, bus has %d", ErrUnsupportedLayout, channels, p.channels)
	}
	if len(buf)%channels != 0 {
		return fmt.Errorf("block length %d is not a multiple of %d channels", len(buf), channels)
	}
	p.applyParameters()

	in := p.frameIn[:channels]
	out := p.frameOut[:channels]
	for i := 0; i < len(buf); i += channels {
		for c := 0; c < channels; c++ {
			in[c] = float64(buf[i+c])
		}
		p.tank.ProcessFrame(in, out, channels, channels)
		for c := 0; c < channels; c++ {
			buf[i+c] = float32(out[c])
		}
	}
	return nil
}
