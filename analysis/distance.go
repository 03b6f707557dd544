package analysis

import (
	"math"
	"math/cmplx"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	algofft "github.com/cwbudde/algo-fft"
)

// Metrics contains distance and similarity measurements between two
// impulse responses or renders.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`
	RefRT60        float64 `json:"ref_rt60_s"`
	CandRT60       float64 `json:"cand_rt60_s"`
	DecayDiffOct   float64 `json:"decay_diff_oct"`

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	DecayNorm    float64 `json:"decay_norm"`
	Dominant     string  `json:"dominant"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Score weights of the normalized components.
const (
	WeightTime     = 0.25
	WeightEnvelope = 0.25
	WeightSpectral = 0.30
	WeightDecay    = 0.20
)

const (
	envelopeFrame = 256
	envelopeHop   = 128
	maxSpectrumN  = 4096
	minSpectrumN  = 512
)

// Compare returns objective distance metrics and a combined score in [0,1]
// where 0 means identical.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	worst := func() Metrics {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return worst()
	}

	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	if len(ref) == 0 || len(cand) == 0 {
		return worst()
	}

	ref = normalizeRMS(ref, 0.1)
	cand = normalizeRMS(cand, 0.1)

	maxLag := min(sampleRate/2, len(ref)-1, len(cand)-1)
	maxLag = max(maxLag, 1)
	lag := estimateLag(ref, cand, maxLag)
	m.LagSamples = lag

	refA, candA := alignByLag(ref, cand, lag)
	n := min(len(refA), len(candA), sampleRate*12)
	if n < 256 {
		return worst()
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	refEnv := rmsEnvelope(refA, envelopeFrame, envelopeHop)
	candEnv := rmsEnvelope(candA, envelopeFrame, envelopeHop)
	if envN := min(len(refEnv), len(candEnv)); envN > 0 {
		envDiff := make([]float64, envN)
		for i := 0; i < envN; i++ {
			envDiff[i] = linToDB(refEnv[i]) - linToDB(candEnv[i])
		}
		m.EnvelopeRMSEDB = rms1(envDiff)
	}

	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	// RT60 stays 0 when a decay cannot be measured.
	if rt := MeasureDecay(refA, sampleRate).RT60; isFinite(rt) {
		m.RefRT60 = rt
	}
	if rt := MeasureDecay(candA, sampleRate).RT60; isFinite(rt) {
		m.CandRT60 = rt
	}
	if m.RefRT60 > 0 && m.CandRT60 > 0 {
		m.DecayDiffOct = math.Abs(math.Log2(m.CandRT60 / m.RefRT60))
	}

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30.0)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30.0)
	m.DecayNorm = clamp01(m.DecayDiffOct)
	m.Score = clamp01(WeightTime*m.TimeNorm + WeightEnvelope*m.EnvelopeNorm +
		WeightSpectral*m.SpectralNorm + WeightDecay*m.DecayNorm)

	m.Dominant = "time"
	best := WeightTime * m.TimeNorm
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"envelope", WeightEnvelope * m.EnvelopeNorm},
		{"spectral", WeightSpectral * m.SpectralNorm},
		{"decay", WeightDecay * m.DecayNorm},
	} {
		if c.v > best {
			best = c.v
			m.Dominant = c.name
		}
	}
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))

	return m
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := 0; i < len(x); i++ {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	if len(x) == 0 {
		return x
	}
	r := rms1(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// estimateLag returns the lag in [-maxLag, maxLag] that maximizes
// sum(ref[i+lag]*cand[i]). The cross-correlation is computed as an FFT
// convolution of ref with the reversed candidate.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	a := make([]float32, len(ref))
	for i, v := range ref {
		a[i] = float32(v)
	}
	b := make([]float32, len(cand))
	for i, v := range cand {
		b[len(cand)-1-i] = float32(v)
	}
	xcorr := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(xcorr, a, b); err != nil {
		return 0
	}

	zero := len(cand) - 1
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		k := zero + lag
		if k < 0 || k >= len(xcorr) {
			continue
		}
		if s := float64(xcorr[k]); s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

// spectralRMSEDB compares Hann-windowed magnitude spectra of the first
// power-of-two block (512..4096 samples) of both signals.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n < minSpectrumN {
		return 0
	}
	size := maxSpectrumN
	for size > n {
		size /= 2
	}
	ma, err := windowedMagnitudes(a[:size])
	if err != nil {
		return 0
	}
	mb, err := windowedMagnitudes(b[:size])
	if err != nil {
		return 0
	}
	bins := size / 2
	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(ma[k]) - linToDB(mb[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func windowedMagnitudes(x []float64) ([]float64, error) {
	n := len(x)
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, err
	}
	buf := make([]float64, n)
	for i := range x {
		buf[i] = x[i] * hann(i, n)
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)
	mags := make([]float64, len(spec))
	for k, c := range spec {
		mags[k] = cmplx.Abs(c)
	}
	return mags, nil
}

func hann(i, n int) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
}

func linToDB(x float64) float64 {
	return dspcore.LinearToDB(math.Max(x, 1e-12))
}

func clamp01(x float64) float64 {
	return dspcore.Clamp(x, 0, 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
