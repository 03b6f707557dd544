package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Band is a frequency range of a band report.
type Band struct {
	Name string
	LoHz float64
	HiHz float64
}

// TimeWindow is a time range of a band report.
type TimeWindow struct {
	Name    string
	StartMs float64
	EndMs   float64
}

// BandStat compares one band within one window.
type BandStat struct {
	Band   Band
	RMSEDB float64 // per-bin level error
	RefDB  float64
	CandDB float64
	DiffDB float64 // CandDB - RefDB
}

// WindowReport holds the band statistics of one time window.
type WindowReport struct {
	Window TimeWindow
	Frames int
	Bands  []BandStat
}

const (
	bandFFTSize = 4096
	bandHop     = 2048
)

func DefaultBands() []Band {
	return []Band{
		{"sub-bass (20-100Hz)", 20, 100},
		{"bass (100-300Hz)", 100, 300},
		{"low-mid (300-1kHz)", 300, 1000},
		{"mid (1-3kHz)", 1000, 3000},
		{"hi-mid (3-6kHz)", 3000, 6000},
		{"high (6-12kHz)", 6000, 12000},
		{"air (12-20kHz)", 12000, 20000},
	}
}

// DefaultTimeWindows splits a reverb response into direct sound, early
// reflections and the tail.
func DefaultTimeWindows() []TimeWindow {
	return []TimeWindow{
		{"direct (0-20ms)", 0, 20},
		{"early (20-80ms)", 20, 80},
		{"build-up (80-300ms)", 80, 300},
		{"tail (0.3-1s)", 300, 1000},
		{"late (1-3s)", 1000, 3000},
	}
}

// BandReport compares averaged STFT magnitudes of ref and cand per band and
// time window. Windows that start past the shorter signal are skipped.
func BandReport(ref, cand []float64, sampleRate int, bands []Band, windows []TimeWindow) ([]WindowReport, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0")
	}
	n := min(len(ref), len(cand))
	if n == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	plan, err := algofft.NewPlanReal64(bandFFTSize)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}

	sr := float64(sampleRate)
	binHz := sr / bandFFTSize
	nBins := bandFFTSize / 2
	window := make([]float64, bandFFTSize)
	for i := range window {
		window[i] = hann(i, bandFFTSize)
	}

	specRef := make([]complex128, nBins+1)
	specCand := make([]complex128, nBins+1)
	bufRef := make([]float64, bandFFTSize)
	bufCand := make([]float64, bandFFTSize)

	var reports []WindowReport
	for _, tw := range windows {
		start := int(tw.StartMs / 1000.0 * sr)
		end := min(int(tw.EndMs/1000.0*sr), n)
		if start >= end {
			continue
		}

		avgRef := make([]float64, nBins)
		avgCand := make([]float64, nBins)
		frames := 0
		accumulate := func() {
			plan.Forward(specRef, bufRef)
			plan.Forward(specCand, bufCand)
			for k := 1; k < nBins; k++ {
				avgRef[k] += cmplx.Abs(specRef[k])
				avgCand[k] += cmplx.Abs(specCand[k])
			}
			frames++
		}
		for pos := start; pos+bandFFTSize <= end; pos += bandHop {
			for i := 0; i < bandFFTSize; i++ {
				bufRef[i] = ref[pos+i] * window[i]
				bufCand[i] = cand[pos+i] * window[i]
			}
			accumulate()
		}
		if frames == 0 {
			// Window shorter than one frame: zero-padded single frame.
			for i := range bufRef {
				bufRef[i], bufCand[i] = 0, 0
			}
			for i := 0; i < end-start && i < bandFFTSize; i++ {
				bufRef[i] = ref[start+i] * window[i]
				bufCand[i] = cand[start+i] * window[i]
			}
			accumulate()
		}
		scale := 1.0 / float64(frames)
		for k := range avgRef {
			avgRef[k] *= scale
			avgCand[k] *= scale
		}

		wr := WindowReport{Window: tw, Frames: frames}
		for _, b := range bands {
			loK := max(int(b.LoHz/binHz), 1)
			hiK := min(int(b.HiHz/binHz), nBins-1)
			if loK > hiK {
				continue
			}
			var sumSq, refPow, candPow float64
			cnt := 0
			for k := loK; k <= hiK; k++ {
				d := linToDB(avgRef[k]) - linToDB(avgCand[k])
				sumSq += d * d
				refPow += avgRef[k] * avgRef[k]
				candPow += avgCand[k] * avgCand[k]
				cnt++
			}
			st := BandStat{
				Band:   b,
				RMSEDB: math.Sqrt(sumSq / float64(cnt)),
				RefDB:  10 * math.Log10(math.Max(refPow/float64(cnt), 1e-24)),
				CandDB: 10 * math.Log10(math.Max(candPow/float64(cnt), 1e-24)),
			}
			st.DiffDB = st.CandDB - st.RefDB
			wr.Bands = append(wr.Bands, st)
		}
		reports = append(reports, wr)
	}
	return reports, nil
}
