package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/impulse"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
	"github.com/cwbudde/algo-jverb/preset"
	"github.com/cwbudde/algo-jverb/reverb"
)

func main() {
	cfg := impulse.DefaultConfig()
	room := impulse.DefaultRoomConfig()

	output := flag.String("output", "out/ir.wav", "Output WAV path")
	presetName := flag.String("preset", "default", "Builtin preset name or preset JSON path")
	rt60 := flag.Float64("rt60", 0, "Override kRT to reach this decay time in seconds (0 = keep preset)")
	synthRoom := flag.Bool("synth-room", false, "Write a synthetic reference room IR instead of capturing the tank")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.BoolVar(&cfg.IncludeDry, "include-dry", cfg.IncludeDry, "Keep the dry path in the captured IR")
	flag.Float64Var(&cfg.TrimBelowDB, "trim-db", cfg.TrimBelowDB, "Trim the tail below this level relative to peak (0 = off)")
	flag.Int64Var(&room.Seed, "seed", room.Seed, "Random seed (synth-room)")
	flag.Float64Var(&room.PreDelayS, "pre-delay", room.PreDelayS, "Pre-delay in seconds (synth-room)")
	flag.Float64Var(&room.DirectLevel, "direct", room.DirectLevel, "Direct impulse level (synth-room)")
	flag.IntVar(&room.EarlyCount, "early", room.EarlyCount, "Number of early reflections (synth-room)")
	flag.Float64Var(&room.LateLevel, "late", room.LateLevel, "Diffuse late-tail level (synth-room)")
	flag.Float64Var(&room.StereoWidth, "stereo-width", room.StereoWidth, "Stereo spread of early reflections (synth-room)")
	flag.Float64Var(&room.Brightness, "brightness", room.Brightness, "Spectral brightness control, >0 (synth-room)")
	flag.Float64Var(&room.LowRT60S, "low-rt60", room.LowRT60S, "Low band RT60 in seconds (synth-room)")
	flag.Float64Var(&room.HighRT60S, "high-rt60", room.HighRT60S, "High band RT60 in seconds (synth-room)")
	flag.Float64Var(&room.NormalizePeak, "normalize", room.NormalizePeak, "Peak normalization target (synth-room)")
	flag.Parse()

	var left, right []float32
	var err error
	if *synthRoom {
		room.SampleRate = cfg.SampleRate
		room.DurationS = cfg.DurationS
		left, right, err = impulse.SynthesizeRoom(room)
	} else {
		p, perr := preset.Load(*presetName)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetName, perr)
			os.Exit(1)
		}
		cfg.Params = p.Values.Tank()
		if *rt60 > 0 {
			cfg.Params.KRT = reverb.FeedbackForDecay(*rt60, cfg.Params)
		}
		fmt.Printf("Capturing preset %s: kRT=%.4f loop=%.2fms model RT60=%.3fs\n",
			p.Name, cfg.Params.KRT, reverb.LoopTimeMs(cfg.Params), reverb.DecayForFeedback(cfg.Params.KRT, cfg.Params))
		left, right, err = impulse.Capture(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "jverb-ir error: %v\n", err)
		os.Exit(1)
	}

	if err := audiofile.WriteStereo(*output, left, right, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	mono := make([]float64, len(left))
	l64 := make([]float64, len(left))
	r64 := make([]float64, len(right))
	for i := range left {
		l64[i] = float64(left[i])
		r64[i] = float64(right[i])
		mono[i] = 0.5 * (l64[i] + r64[i])
	}
	d := analysis.MeasureDecay(mono, cfg.SampleRate)

	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, float64(len(left))/float64(cfg.SampleRate), len(left))
	fmt.Printf("Peak: L=%.6f R=%.6f, L/R correlation: %.3f\n",
		audiofile.Peak(left), audiofile.Peak(right), analysis.StereoCorrelation(l64, r64))
	fmt.Printf("EDT: %s  T20: %s  T30: %s  RT60: %s\n", seconds(d.EDT), seconds(d.T20), seconds(d.T30), seconds(d.RT60))
}

func seconds(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}
