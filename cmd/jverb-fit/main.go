package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/impulse"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
	"github.com/cwbudde/algo-jverb/preset"
)

type runReport struct {
	ReferencePath   string             `json:"reference_path"`
	PresetPath      string             `json:"preset_path"`
	OutputPreset    string             `json:"output_preset"`
	OutputIR        string             `json:"output_ir,omitempty"`
	SampleRate      int                `json:"sample_rate"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestSimilarity  float64            `json:"best_similarity"`
	BestMetrics     analysis.Metrics   `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
	CheckpointCount int                `json:"checkpoint_count"`
	TopCandidates   []topCandidate     `json:"top_candidates,omitempty"`
}

func main() {
	referencePath := flag.String("reference", "reference/ir.wav", "Reference IR WAV path")
	synthRoom := flag.Bool("synth-room", false, "Fit against a synthetic room IR instead of -reference")
	roomLowRT60 := flag.Float64("room-low-rt60", 1.2, "Synthetic room low band RT60 in seconds")
	roomHighRT60 := flag.Float64("room-high-rt60", 0.4, "Synthetic room high band RT60 in seconds")
	presetName := flag.String("preset", "default", "Base preset name or JSON path")
	outputPreset := flag.String("output-preset", "out/fit/fitted.json", "Path to write the best fitted preset JSON")
	outputIR := flag.String("output-ir", "", "Optional path to write the best candidate IR WAV")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	sampleRate := flag.Int("sample-rate", 48000, "Capture/analysis sample rate")
	maxDuration := flag.Float64("max-duration", 6.0, "Longest candidate capture in seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 4000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	checkpointEvery := flag.Int("checkpoint-every", 1, "Write checkpoint every N best-score improvements")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	optimizeMix := flag.Bool("optimize-mix", false, "Also optimize wet/dry levels")
	optimizeDensity := flag.Bool("optimize-density", false, "Also optimize tap density")
	workersRaw := flag.String("workers", "auto", "Parallel workers: integer >= 1 or 'auto'")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	workers, err := parseWorkersFlag(*workersRaw)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	*reportEvery = max(*reportEvery, 1)
	*checkpointEvery = max(*checkpointEvery, 1)
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, *mayflyPop*2)
	if *reportPath == "" {
		*reportPath = *outputPreset + ".report.json"
	}

	base, err := preset.Load(*presetName)
	if err != nil {
		die("failed to load preset: %v", err)
	}

	var ref []float64
	refLabel := *referencePath
	if *synthRoom {
		room := impulse.DefaultRoomConfig()
		room.SampleRate = *sampleRate
		room.LowRT60S = *roomLowRT60
		room.HighRT60S = *roomHighRT60
		room.DurationS = min(*maxDuration, 1.5*room.LowRT60S+0.2)
		left, right, err := impulse.SynthesizeRoom(room)
		if err != nil {
			die("failed to synthesize reference: %v", err)
		}
		ref = make([]float64, len(left))
		for i := range left {
			ref[i] = 0.5 * (float64(left[i]) + float64(right[i]))
		}
		refLabel = fmt.Sprintf("synth-room(low=%.2fs,high=%.2fs)", room.LowRT60S, room.HighRT60S)
	} else {
		x, sr, err := audiofile.ReadMono(*referencePath)
		if err != nil {
			die("failed to read reference: %v", err)
		}
		if sr != *sampleRate {
			if x, err = audiofile.Resample(x, sr, *sampleRate); err != nil {
				die("failed to resample reference: %v", err)
			}
		}
		ref = x
	}
	durationS := min(float64(len(ref))/float64(*sampleRate), *maxDuration)
	if durationS <= 0 {
		die("reference is empty")
	}
	fmt.Printf("Reference: %s, %d frames @ %d Hz, capturing %.2fs per candidate\n", refLabel, len(ref), *sampleRate, durationS)

	defs, initCand := initCandidate(base.Values, *optimizeMix, *optimizeDensity)
	if *resume {
		if resumed, ok, err := loadCandidateFromReport(*reportPath, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", *reportPath, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", *reportPath)
		}
	}

	variant := strings.ToLower(*mayflyVariant)
	out := outputs{
		presetPath:    *outputPreset,
		irPath:        *outputIR,
		reportPath:    *reportPath,
		referencePath: refLabel,
		basePreset:    *presetName,
		sampleRate:    *sampleRate,
		durationS:     durationS,
		variant:       variant,
		base:          base.Values,
		defs:          defs,
	}

	res, err := runOptimization(&optimizationConfig{
		reference:        ref,
		base:             base.Values,
		defs:             defs,
		initCandidate:    initCand,
		sampleRate:       *sampleRate,
		durationS:        durationS,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		checkpointEvery:  *checkpointEvery,
		topK:             *topK,
		mayflyVariant:    variant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          workers,
		checkpoint: func(best candidate, m analysis.Metrics, evals int, top []topCandidate) error {
			return out.write(best, m, evals, 0, 0, top, false)
		},
	})
	if err != nil {
		die("%v", err)
	}

	if err := out.write(res.best, res.bestMetrics, res.evals, res.elapsed, res.checkpoints, res.top, true); err != nil {
		die("failed to write outputs: %v", err)
	}
	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		res.evals, res.elapsed, res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, variant)
}

type outputs struct {
	presetPath    string
	irPath        string
	reportPath    string
	referencePath string
	basePreset    string
	sampleRate    int
	durationS     float64
	variant       string
	base          host.Values
	defs          []knobDef
}

// write stores the fitted preset and report. The IR is only rendered for
// the final result.
func (o *outputs) write(best candidate, m analysis.Metrics, evals int, elapsed float64, checkpoints int, top []topCandidate, final bool) error {
	v := applyCandidate(o.base, o.defs, best)
	name := strings.TrimSuffix(filepath.Base(o.presetPath), filepath.Ext(o.presetPath))
	if err := preset.SaveJSON(o.presetPath, &preset.Preset{Name: name, Values: v}); err != nil {
		return err
	}

	if final && o.irPath != "" {
		cfg := impulse.DefaultConfig()
		cfg.SampleRate = o.sampleRate
		cfg.DurationS = o.durationS
		cfg.Params = v.Tank()
		cfg.IncludeDry = true
		left, right, err := impulse.Capture(cfg)
		if err != nil {
			return err
		}
		if err := audiofile.WriteStereo(o.irPath, left, right, o.sampleRate); err != nil {
			return err
		}
	}

	rep := runReport{
		ReferencePath:   o.referencePath,
		PresetPath:      o.basePreset,
		OutputPreset:    o.presetPath,
		OutputIR:        o.irPath,
		SampleRate:      o.sampleRate,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   o.variant,
		BestScore:       m.Score,
		BestSimilarity:  m.Similarity,
		BestMetrics:     m,
		BestKnobs:       knobMap(o.defs, best),
		CheckpointCount: checkpoints,
		TopCandidates:   top,
	}
	return writeJSON(o.reportPath, rep)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
