package impulse

import (
	"fmt"
	"math"
	"math/rand"
)

// RoomConfig controls synthetic stereo room IR generation.
type RoomConfig struct {
	SampleRate  int
	DurationS   float64
	Seed        int64
	PreDelayS   float64
	DirectLevel float64
	EarlyCount  int
	LateLevel   float64
	StereoWidth float64
	Brightness  float64
	LowRT60S    float64 // 60 dB decay of the low band
	HighRT60S   float64 // 60 dB decay of the high band
	FadeOutS    float64 // cosine fade at the end, 0 = none

	NormalizePeak float64
}

// DefaultRoomConfig is a medium room.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		SampleRate:    48000,
		DurationS:     2.0,
		Seed:          1,
		PreDelayS:     0.01,
		DirectLevel:   0,
		EarlyCount:    24,
		LateLevel:     0.06,
		StereoWidth:   0.6,
		Brightness:    0.8,
		LowRT60S:      1.2,
		HighRT60S:     0.4,
		FadeOutS:      0.01,
		NormalizePeak: 0.9,
	}
}

func (c *RoomConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.PreDelayS < 0 || c.PreDelayS >= c.DurationS {
		return fmt.Errorf("pre-delay must be in [0,duration)")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.StereoWidth < 0 {
		return fmt.Errorf("stereo width must be >= 0")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.LowRT60S <= 0 || c.HighRT60S <= 0 {
		return fmt.Errorf("rt60 must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// SynthesizeRoom builds a deterministic stereo room IR: an optional direct
// impulse, a cluster of early reflections and a two-band noise tail whose
// bands decay by 60 dB in LowRT60S and HighRT60S.
func SynthesizeRoom(cfg RoomConfig) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sr := float64(cfg.SampleRate)
	n := max(int(math.Round(cfg.DurationS*sr)), 1)
	left := make([]float64, n)
	right := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	start := int(cfg.PreDelayS * sr)
	left[start] += cfg.DirectLevel
	right[start] += cfg.DirectLevel

	// Early reflections, 1-50 ms after the direct sound.
	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.001 + 0.049*rng.Float64()
		idx := start + int(t*sr)
		if idx >= n {
			continue
		}
		amp := (0.10 + 0.35*rng.Float64()) * math.Exp(-t*20.0)
		amp *= math.Pow(0.5+0.5*rng.Float64(), 1.0/cfg.Brightness)
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		left[idx] += amp * (1.0 - 0.5*pan)
		right[idx] += amp * (1.0 + 0.5*pan)
	}

	if cfg.LateLevel > 0 {
		lowK := -3.0 * math.Ln10 / cfg.LowRT60S
		highK := -3.0 * math.Ln10 / cfg.HighRT60S
		airScale := math.Max(0.3*(cfg.Brightness-0.3), 0)
		var lpL, lpR, hpL, hpR float64
		for i := start; i < n; i++ {
			t := float64(i-start) / sr
			lowEnv := math.Exp(lowK * t)
			highEnv := math.Exp(highK * t)

			nL := rng.NormFloat64()
			nR := rng.NormFloat64()
			lpL = 0.985*lpL + 0.015*nL
			lpR = 0.985*lpR + 0.015*nR
			hpL = 0.15*nL - 0.15*hpL
			hpR = 0.15*nR - 0.15*hpR

			left[i] += cfg.LateLevel * (lowEnv*lpL + airScale*highEnv*hpL)
			right[i] += cfg.LateLevel * (lowEnv*lpR + airScale*highEnv*hpR)
		}
	}

	highpassDC(left, 0.995)
	highpassDC(right, 0.995)
	applyFadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	applyFadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak := math.Max(maxAbs(left), maxAbs(right))
	s := cfg.NormalizePeak / math.Max(peak, 1e-12)
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := 0; i < n; i++ {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

func highpassDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// applyFadeOut applies a cosine fade-out to the last fadeS seconds of buf.
func applyFadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := min(int(math.Round(fadeS*float64(sampleRate))), len(buf))
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}
