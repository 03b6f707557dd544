package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-jverb/analysis"
	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/impulse"
	"github.com/cwbudde/mayfly"
)

type optimizationConfig struct {
	reference        []float64
	base             host.Values
	defs             []knobDef
	initCandidate    candidate
	sampleRate       int
	durationS        float64
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	checkpointEvery  int
	topK             int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int

	// checkpoint is called with the best candidate after every
	// checkpointEvery improvements.
	checkpoint func(best candidate, m analysis.Metrics, evals int, top []topCandidate) error
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
	checkpoints int
	top         []topCandidate
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
	checkpoints int
	top         []topCandidate
}

// captureMono renders the candidate's tank IR and sums it to mono.
func captureMono(v host.Values, sampleRate int, durationS float64) ([]float64, error) {
	cfg := impulse.DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.DurationS = durationS
	cfg.Params = v.Tank()
	cfg.IncludeDry = true
	left, right, err := impulse.Capture(cfg)
	if err != nil {
		return nil, err
	}
	mono := make([]float64, len(left))
	for i := range left {
		mono[i] = 0.5 * (float64(left[i]) + float64(right[i]))
	}
	return mono, nil
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	evaluate := func(c candidate) (analysis.Metrics, error) {
		v := applyCandidate(cfg.base, cfg.defs, c)
		mono, err := captureMono(v, cfg.sampleRate, cfg.durationS)
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(cfg.reference, mono, cfg.sampleRate), nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	variant := strings.ToLower(cfg.mayflyVariant)
	topK := max(cfg.topK, 1)

	best := cloneCandidate(cfg.initCandidate)
	bestM, err := evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	fmt.Printf("Start score=%.4f similarity=%.2f%% (ref RT60 %.3fs, cand %.3fs)\n",
		bestM.Score, bestM.Similarity*100.0, bestM.RefRT60, bestM.CandRT60)

	state := &optimizationState{
		best:        best,
		bestMetrics: bestM,
		top:         updateTopCandidates(nil, topK, 1, bestM, cfg.defs, best),
	}
	var evals int64 = 1
	var rounds int64
	var improves int64
	var outputMu sync.Mutex
	var latestPersistedImprove int64

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(workers, 1)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if time.Now().After(deadline) {
					return
				}
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return
				}

				round := int(atomic.AddInt64(&rounds, 1))
				budget := min(cfg.mayflyRoundEvals, remaining)
				iters := max(1, budget/(2*cfg.mayflyPop))

				mayflyConfig, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
					return
				}
				mayflyConfig.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
				mayflyConfig.ObjectiveFunc = func(pos []float64) float64 {
					if time.Now().After(deadline) {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}

					cand := fromNormalized(pos, cfg.defs)
					m, err := evaluate(cand)
					if err != nil {
						return currentBestScore(state) + 0.8
					}

					improved := false
					checkpointDue := false
					var improveNum int64
					var bestSnapshot candidate
					var bestMetrics analysis.Metrics
					var topSnapshot []topCandidate

					state.mu.Lock()
					state.top = updateTopCandidates(state.top, topK, int(evalNum), m, cfg.defs, cand)
					if m.Score < state.bestMetrics.Score {
						state.best = cloneCandidate(cand)
						state.bestMetrics = m
						improved = true
						improveNum = atomic.AddInt64(&improves, 1)
						checkpointDue = cfg.checkpointEvery > 0 && improveNum%int64(cfg.checkpointEvery) == 0
					}
					bestSnapshot = cloneCandidate(state.best)
					bestMetrics = state.bestMetrics
					topSnapshot = append([]topCandidate(nil), state.top...)
					state.mu.Unlock()

					if improved {
						fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%% rt60=%.3fs\n",
							improveNum, evalNum, bestMetrics.Score, bestMetrics.Similarity*100.0, bestMetrics.CandRT60)
						outputMu.Lock()
						if checkpointDue && improveNum > latestPersistedImprove && cfg.checkpoint != nil {
							latestPersistedImprove = improveNum
							if err := cfg.checkpoint(bestSnapshot, bestMetrics, int(atomic.LoadInt64(&evals)), topSnapshot); err != nil {
								fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
							} else {
								state.mu.Lock()
								state.checkpoints++
								state.mu.Unlock()
							}
						}
						outputMu.Unlock()
					}

					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evalNum, time.Since(start).Seconds(), bestMetrics.Score)
					}
					return m.Score
				}

				if _, err := runMayfly(mayflyConfig); err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	return &optimizationResult{
		best:        cloneCandidate(state.best),
		bestMetrics: state.bestMetrics,
		evals:       int(atomic.LoadInt64(&evals)),
		elapsed:     time.Since(start).Seconds(),
		checkpoints: state.checkpoints,
		top:         append([]topCandidate(nil), state.top...),
	}, nil
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	score := state.bestMetrics.Score
	state.mu.Unlock()
	return score
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// NC/2 parent pairs are drawn from both populations.
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
