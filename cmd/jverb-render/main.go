package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-jverb/automation"
	"github.com/cwbudde/algo-jverb/convolver"
	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
	"github.com/cwbudde/algo-jverb/preset"
)

func main() {
	input := flag.String("input", "", "Input WAV (empty renders an impulse)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	presetName := flag.String("preset", "default", "Builtin preset name or preset JSON path")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz (input is resampled)")
	tail := flag.Float64("tail", 4.0, "Seconds rendered after the input ends")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop the tail when block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	blockSize := flag.Int("block", 128, "Processing block size in frames")
	smoothing := flag.Float64("smoothing-ms", 0, "Parameter smoothing time in ms (0 = step at block boundaries)")
	script := flag.String("automation", "", "Lua automation script defining params(t)")
	irPath := flag.String("ir", "", "Convolve with this IR WAV instead of running the tank")
	flag.Parse()

	p, err := preset.Load(*presetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetName, err)
		os.Exit(1)
	}
	if *irPath != "" {
		p.IRWavPath = *irPath
	}

	sr := *sampleRate
	in, channels, err := loadInput(*input, sr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		os.Exit(1)
	}
	inFrames := len(in) / channels

	var samples []float32
	if p.IRWavPath != "" {
		fmt.Printf("Convolving %d frames with %s (preset: %s)...\n", inFrames, p.IRWavPath, p.Name)
		samples, err = renderConvolved(p, in, channels, sr, *tail, *blockSize)
		channels = 2
	} else {
		fmt.Printf("Rendering %d frames x %d ch at %d Hz through the tank (preset: %s)...\n", inFrames, channels, sr, p.Name)
		samples, err = renderTank(p, in, channels, sr, renderOptions{
			tailS:      *tail,
			blockSize:  *blockSize,
			smoothing:  *smoothing,
			script:     *script,
			decayDBFS:  *decayDBFS,
			holdBlocks: *decayHoldBlocks,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := audiofile.WriteInterleaved(*output, samples, channels, sr); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	peak := audiofile.Peak(samples)
	fmt.Printf("Successfully wrote %s (%d frames, peak %.1f dBFS)\n",
		*output, len(samples)/channels, dspcore.LinearToDB(math.Max(float64(peak), 1e-12)))
}

// loadInput returns interleaved input at sr. Without a path it returns a
// single stereo impulse frame.
func loadInput(path string, sr int) ([]float32, int, error) {
	if path == "" {
		return []float32{1, 1}, 2, nil
	}
	a, err := audiofile.Read(path)
	if err != nil {
		return nil, 0, err
	}
	if a.Channels > 2 {
		left, right := a.Stereo()
		a = interleave(left, right, a.SampleRate)
	}
	if a.SampleRate == sr {
		return a.Data, a.Channels, nil
	}
	if a.Channels == 1 {
		out, err := audiofile.Resample32(a.Data, a.SampleRate, sr)
		return out, 1, err
	}
	left, right := a.Stereo()
	if left, err = audiofile.Resample32(left, a.SampleRate, sr); err != nil {
		return nil, 0, err
	}
	if right, err = audiofile.Resample32(right, a.SampleRate, sr); err != nil {
		return nil, 0, err
	}
	return interleave(left, right, sr).Data, 2, nil
}

func interleave(left, right []float32, sr int) *audiofile.Audio {
	n := min(len(left), len(right))
	data := make([]float32, n*2)
	for i := 0; i < n; i++ {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return &audiofile.Audio{SampleRate: sr, Channels: 2, Data: data}
}

type renderOptions struct {
	tailS      float64
	blockSize  int
	smoothing  float64
	script     string
	decayDBFS  float64
	holdBlocks int
}

func renderTank(p *preset.Preset, in []float32, channels, sr int, opt renderOptions) ([]float32, error) {
	if opt.blockSize < 1 {
		opt.blockSize = 128
	}
	proc := host.NewProcessor()
	if err := proc.SetBusLayout(channels, channels); err != nil {
		return nil, err
	}
	proc.SetState(p.Values)
	proc.SetSmoothing(opt.smoothing)
	if err := proc.Prepare(float64(sr), opt.blockSize); err != nil {
		return nil, err
	}

	var auto *automation.Script
	if opt.script != "" {
		s, err := automation.Load(opt.script)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		auto = s
		fmt.Printf("Automation: %s\n", opt.script)
	}

	inFrames := len(in) / channels
	totalFrames := inFrames + max(int(opt.tailS*float64(sr)), 0)
	autoStop := !math.IsInf(opt.decayDBFS, 1)
	thresholdLin := dspcore.DBToLinear(opt.decayDBFS)
	holdBlocks := max(opt.holdBlocks, 1)

	out := make([]float32, 0, totalFrames*channels)
	block := make([]float32, opt.blockSize*channels)
	belowCount := 0
	for rendered := 0; rendered < totalFrames; {
		frames := min(opt.blockSize, totalFrames-rendered)
		buf := block[:frames*channels]
		clear(buf)
		if rendered < inFrames {
			copy(buf, in[rendered*channels:min(rendered+frames, inFrames)*channels])
		}

		if auto != nil {
			if err := auto.Apply(float64(rendered)/float64(sr), proc); err != nil {
				return nil, err
			}
		}
		if err := proc.ProcessBlock32(buf, channels); err != nil {
			return nil, err
		}
		out = append(out, buf...)
		rendered += frames

		if autoStop && rendered >= inFrames {
			if blockRMS(buf) < thresholdLin {
				belowCount++
				if belowCount >= holdBlocks {
					fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n",
						rendered, float64(rendered)/float64(sr), opt.decayDBFS)
					break
				}
			} else {
				belowCount = 0
			}
		}
	}
	return out, nil
}

// renderConvolved runs the mono sum of the input through the preset IR and
// mixes it with the dry signal at the preset levels.
func renderConvolved(p *preset.Preset, in []float32, channels, sr int, tailS float64, blockSize int) ([]float32, error) {
	conv := convolver.NewStereo(sr, blockSize)
	if err := conv.SetIRFromWAV(p.IRWavPath); err != nil {
		return nil, err
	}
	wetDB, _ := p.Values.Get(host.IDWetLevel)
	dryDB, _ := p.Values.Get(host.IDDryLevel)
	wet := float32(dspcore.DBToLinear(wetDB))
	dry := float32(dspcore.DBToLinear(dryDB))

	inFrames := len(in) / channels
	total := inFrames + max(int(tailS*float64(sr)), conv.IRLen())
	mono := make([]float32, total)
	for i := 0; i < inFrames; i++ {
		var s float32
		for c := 0; c < channels; c++ {
			s += in[i*channels+c]
		}
		mono[i] = s / float32(channels)
	}

	wetOut := conv.Process(mono)
	out := make([]float32, total*2)
	for i := 0; i < total; i++ {
		var dl, dr float32
		if i < inFrames {
			dl = in[i*channels]
			dr = in[i*channels+channels-1]
		}
		out[i*2] = dry*dl + wet*wetOut[i*2]
		out[i*2+1] = dry*dr + wet*wetOut[i*2+1]
	}
	return out, nil
}

func blockRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}
