package analysis

import "math"

// DecayTimes holds reverberation times in seconds. Fields are NaN when the
// energy decay curve never reaches the required level.
type DecayTimes struct {
	EDT  float64 `json:"edt_s"`
	T20  float64 `json:"t20_s"`
	T30  float64 `json:"t30_s"`
	RT60 float64 `json:"rt60_s"` // T30, else T20, else EDT
}

// EnergyDecayCurve returns the Schroeder backward integral of x in dB,
// normalized to 0 dB at the first sample. It returns nil for silence.
func EnergyDecayCurve(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	acc := make([]float64, len(x))
	var sum float64
	for i := len(x) - 1; i >= 0; i-- {
		sum += x[i] * x[i]
		acc[i] = sum
	}
	total := acc[0]
	if total <= 0 {
		return nil
	}
	for i := range acc {
		acc[i] = 10 * math.Log10(math.Max(acc[i]/total, 1e-30))
	}
	return acc
}

// MeasureDecay estimates EDT, T20 and T30 from the energy decay curve of x.
func MeasureDecay(x []float64, sampleRate int) DecayTimes {
	nan := math.NaN()
	d := DecayTimes{EDT: nan, T20: nan, T30: nan, RT60: nan}
	if sampleRate <= 0 {
		return d
	}
	edc := EnergyDecayCurve(x)
	if edc == nil {
		return d
	}
	fs := float64(sampleRate)
	d.EDT = decayFit(edc, fs, 0, -10)
	d.T20 = decayFit(edc, fs, -5, -25)
	d.T30 = decayFit(edc, fs, -5, -35)
	switch {
	case isFinite(d.T30):
		d.RT60 = d.T30
	case isFinite(d.T20):
		d.RT60 = d.T20
	default:
		d.RT60 = d.EDT
	}
	return d
}

// decayFit fits a line to the curve between the hi and lo dB levels and
// extrapolates it to a 60 dB decay.
func decayFit(edc []float64, fs, hiDB, loDB float64) float64 {
	start, end := -1, -1
	for i, v := range edc {
		if start < 0 && v <= hiDB {
			start = i
		}
		if v <= loDB {
			end = i
			break
		}
	}
	if start < 0 || end < 0 || end-start < 2 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start + 1)
	for i := start; i <= end; i++ {
		x := float64(i-start) / fs
		y := edc[i]
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-18 {
		return math.NaN()
	}
	slope := (n*sxy - sx*sy) / den
	if slope >= 0 {
		return math.NaN()
	}
	return -60.0 / slope
}
