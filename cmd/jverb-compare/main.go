package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/impulse"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
	"github.com/cwbudde/algo-jverb/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/ir.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, capture the tank IR of -preset")
	presetName := flag.String("preset", "default", "Builtin preset name or preset JSON path for the captured candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	duration := flag.Float64("duration", 4.0, "Captured candidate length in seconds")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the captured candidate WAV")
	bands := flag.Bool("bands", true, "Print the STFT band report")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readMono(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		p, err := preset.Load(*presetName)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		cfg := impulse.DefaultConfig()
		cfg.SampleRate = *sampleRate
		cfg.DurationS = *duration
		cfg.Params = p.Values.Tank()
		left, right, err := impulse.Capture(cfg)
		if err != nil {
			die("failed to capture candidate: %v", err)
		}
		if *writeCandidate != "" {
			if err := audiofile.WriteStereo(*writeCandidate, left, right, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
		cand = make([]float64, len(left))
		for i := range left {
			cand[i] = 0.5 * float64(left[i]+right[i])
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", metrics.TimeRMSE), metrics.TimeNorm, analysis.WeightTime, metrics.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", metrics.EnvelopeRMSEDB), metrics.EnvelopeNorm, analysis.WeightEnvelope, metrics.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", metrics.SpectralRMSEDB), metrics.SpectralNorm, analysis.WeightSpectral, metrics.Dominant == "spectral")
	printComp("Decay diff", fmt.Sprintf("%.2f oct", metrics.DecayDiffOct), metrics.DecayNorm, analysis.WeightDecay, metrics.Dominant == "decay")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
	fmt.Printf("Dominant factor:  %s\n", metrics.Dominant)
	fmt.Printf("\nRT60: ref=%s  cand=%s\n\n", seconds(metrics.RefRT60), seconds(metrics.CandRT60))

	if !*bands {
		return
	}
	reports, err := analysis.BandReport(ref, cand, *sampleRate, analysis.DefaultBands(), analysis.DefaultTimeWindows())
	if err != nil {
		die("band report: %v", err)
	}
	for _, w := range reports {
		fmt.Printf("--- %s (%d STFT frames) ---\n", w.Window.Name, w.Frames)
		for _, b := range w.Bands {
			marker := ""
			if b.RMSEDB > 15 {
				marker = " <<<"
			}
			if b.RMSEDB > 25 {
				marker = " <<< !!!"
			}
			fmt.Printf("  %-22s RMSE=%5.1fdB  ref=%6.1fdB  cand=%6.1fdB  diff=%+5.1fdB%s\n",
				b.Band.Name, b.RMSEDB, b.RefDB, b.CandDB, b.DiffDB, marker)
		}
		fmt.Println()
	}
}

func readMono(path string, sampleRate int) ([]float64, error) {
	x, sr, err := audiofile.ReadMono(path)
	if err != nil {
		return nil, err
	}
	if sr == sampleRate {
		return x, nil
	}
	return audiofile.Resample(x, sr, sampleRate)
}

func seconds(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
