// Package impulse captures impulse responses from the reverb tank and
// synthesizes reference room responses to fit against.
package impulse

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

// Config controls tank impulse capture.
type Config struct {
	SampleRate int
	DurationS  float64
	Params     reverb.TankParameters

	// IncludeDry keeps the dry path in the capture. Otherwise the dry level
	// is forced to silence.
	IncludeDry bool

	// TrimBelowDB cuts the tail once both channels stay this far below the
	// peak. 0 disables trimming.
	TrimBelowDB float64
}

// DefaultConfig captures three seconds of the host default sound.
func DefaultConfig() Config {
	v := host.DefaultValues()
	return Config{
		SampleRate: 48000,
		DurationS:  3.0,
		Params:     v.Tank(),
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Params.KRT < 0 || c.Params.KRT >= 1 {
		return fmt.Errorf("krt must be in [0,1)")
	}
	if c.TrimBelowDB > 0 {
		return fmt.Errorf("trim level must be <= 0 dB")
	}
	return nil
}

// Capture feeds a unit impulse into a freshly reset tank and records the
// stereo response.
func Capture(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	p := cfg.Params
	if !cfg.IncludeDry {
		p.DryLevelDB = math.Inf(-1)
	}

	tank := reverb.NewTank()
	tank.SetParameters(p)
	tank.Reset(float64(cfg.SampleRate))

	n := max(int(math.Round(cfg.DurationS*float64(cfg.SampleRate))), 1)
	left := make([]float32, n)
	right := make([]float32, n)
	in := make([]float64, reverb.NumChannels)
	out := make([]float64, reverb.NumChannels)
	for i := 0; i < n; i++ {
		in[0], in[1] = 0, 0
		if i == 0 {
			in[0], in[1] = 1, 1
		}
		tank.ProcessFrame(in, out, reverb.NumChannels, reverb.NumChannels)
		left[i] = float32(out[0])
		right[i] = float32(out[1])
	}

	if cfg.TrimBelowDB < 0 {
		left, right = TrimTail(left, right, cfg.TrimBelowDB)
	}
	return left, right, nil
}

// TrimTail drops the trailing samples where both channels stay below
// belowDB relative to the overall peak.
func TrimTail(left, right []float32, belowDB float64) ([]float32, []float32) {
	n := min(len(left), len(right))
	var peak float64
	for i := 0; i < n; i++ {
		peak = math.Max(peak, math.Max(math.Abs(float64(left[i])), math.Abs(float64(right[i]))))
	}
	if peak == 0 {
		return left[:0], right[:0]
	}
	threshold := peak * math.Pow(10, belowDB/20)
	end := n
	for end > 0 {
		i := end - 1
		if math.Abs(float64(left[i])) > threshold || math.Abs(float64(right[i])) > threshold {
			break
		}
		end--
	}
	return left[:end], right[:end]
}
