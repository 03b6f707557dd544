package filter

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-jverb/dsp"
)

// maxTanArg keeps tan() arguments away from the pi/2 pole.
const maxTanArg = 0.95 * math.Pi / 2

const butterworthQ = 1 / math.Sqrt2

// Design computes the coefficient vector for p at sampleRate. Every design
// starts from a0 = 1, c0 = 1, d0 = 0 with all other slots cleared.
func Design(p Parameters, sampleRate float64) [dsp.NumCoeffs]float64 {
	var c [dsp.NumCoeffs]float64
	c[dsp.CoeffA0] = 1
	c[dsp.CoeffC0] = 1
	c[dsp.CoeffD0] = 0

	fc := p.Fc
	q := p.Q
	if q <= 0 {
		q = defaultQ
	}
	fs := sampleRate
	theta := 2 * math.Pi * fc / fs

	switch p.Algorithm {
	case ImpInvLP1:
		eT := math.Exp(-theta)
		c[dsp.CoeffA0] = 1 - eT
		c[dsp.CoeffB1] = -eT

	case ImpInvLP2:
		alpha := theta
		pRe := -alpha / (2 * q)
		zeta := 1 / (2 * q)
		root := math.Sqrt(1 - zeta*zeta)
		pIm := alpha * root
		cRe := 0.0
		cIm := alpha / (2 * root)
		eRe := math.Exp(pRe)
		c[dsp.CoeffA0] = cRe
		c[dsp.CoeffA1] = -2 * (cRe*math.Cos(pIm) + cIm*math.Sin(pIm)) * eRe
		c[dsp.CoeffB1] = -2 * eRe * math.Cos(pIm)
		c[dsp.CoeffB2] = math.Exp(2 * pRe)

	case MatchLP2A:
		b1, b2 := matchedPoles(theta, q)
		B0, B1, B2, phi0, phi1, phi2 := matchedTerms(b1, b2, theta)
		R1 := (B0*phi0 + B1*phi1 + B2*phi2) * q * q
		A0 := B0
		A1 := (R1 - A0*phi0) / phi1
		A0 = math.Max(A0, 0)
		A1 = math.Max(A1, 0)
		a0 := 0.5 * (math.Sqrt(A0) + math.Sqrt(A1))
		c[dsp.CoeffA0] = a0
		c[dsp.CoeffA1] = math.Sqrt(A0) - a0
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2

	case MatchLP2B:
		b1, b2 := matchedPoles(theta, q)
		f0 := theta / math.Pi
		r0 := 1 + b1 + b2
		den := math.Sqrt((1-f0*f0)*(1-f0*f0) + f0*f0/(q*q))
		r1 := (1 - b1 + b2) * f0 * f0 / den
		a0 := (r0 + r1) / 2
		c[dsp.CoeffA0] = a0
		c[dsp.CoeffA1] = r0 - a0
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2

	case MatchBP2A:
		b1, b2 := matchedPoles(theta, q)
		B0, B1, B2, phi0, phi1, phi2 := matchedTerms(b1, b2, theta)
		R1 := B0*phi0 + B1*phi1 + B2*phi2
		R2 := -B0 + B1 + 4*(phi0-phi1)*B2
		A2 := (R1 - R2*phi1) / (4 * phi1 * phi1)
		A1 := R2 + 4*(phi1-phi0)*A2
		a1 := -0.5 * math.Sqrt(math.Max(A1, 0))
		a0 := 0.5 * (math.Sqrt(math.Max(A2+a1*a1, 0)) - a1)
		c[dsp.CoeffA0] = a0
		c[dsp.CoeffA1] = a1
		c[dsp.CoeffA2] = -a0 - a1
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2

	case MatchBP2B:
		b1, b2 := matchedPoles(theta, q)
		f0 := theta / math.Pi
		r0 := (1 + b1 + b2) / (math.Pi * f0 * q)
		den := math.Sqrt((1-f0*f0)*(1-f0*f0) + f0*f0/(q*q))
		r1 := (1 - b1 + b2) * (f0 / q) / den
		a1 := -r1 / 2
		a0 := (r0 - a1) / 2
		c[dsp.CoeffA0] = a0
		c[dsp.CoeffA1] = a1
		c[dsp.CoeffA2] = -a0 - a1
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2

	case LPF1P:
		gamma := 2 - math.Cos(theta)
		b1 := math.Sqrt(gamma*gamma-1) - gamma
		c[dsp.CoeffA0] = 1 + b1
		c[dsp.CoeffB1] = b1

	case LPF1, HPF1:
		gamma := math.Cos(theta) / (1 + math.Sin(theta))
		if p.Algorithm == LPF1 {
			c[dsp.CoeffA0] = (1 - gamma) / 2
			c[dsp.CoeffA1] = (1 - gamma) / 2
		} else {
			c[dsp.CoeffA0] = (1 + gamma) / 2
			c[dsp.CoeffA1] = -(1 + gamma) / 2
		}
		c[dsp.CoeffB1] = -gamma

	case LPF2:
		setSection(&c, design.Lowpass(fc, q, fs))

	case HPF2:
		setSection(&c, design.Highpass(fc, q, fs))

	case BSF2:
		setSection(&c, design.Notch(fc, q, fs))

	case ButterLPF2:
		setSection(&c, design.Lowpass(fc, butterworthQ, fs))

	case ButterHPF2:
		setSection(&c, design.Highpass(fc, butterworthQ, fs))

	case BPF2:
		K := math.Tan(math.Pi * fc / fs)
		delta := K*K*q + K + q
		c[dsp.CoeffA0] = K / delta
		c[dsp.CoeffA1] = 0
		c[dsp.CoeffA2] = -K / delta
		c[dsp.CoeffB1] = 2 * q * (K*K - 1) / delta
		c[dsp.CoeffB2] = (K*K*q - K + q) / delta

	case ButterBPF2, ButterBSF2:
		bw := fc / q
		deltaC := math.Min(math.Pi*bw/fs, maxTanArg)
		D := 2 * math.Cos(theta)
		if p.Algorithm == ButterBPF2 {
			C := 1 / math.Tan(deltaC)
			a0 := 1 / (1 + C)
			c[dsp.CoeffA0] = a0
			c[dsp.CoeffA1] = 0
			c[dsp.CoeffA2] = -a0
			c[dsp.CoeffB1] = -a0 * C * D
			c[dsp.CoeffB2] = a0 * (C - 1)
		} else {
			C := math.Tan(deltaC)
			a0 := 1 / (1 + C)
			c[dsp.CoeffA0] = a0
			c[dsp.CoeffA1] = -a0 * D
			c[dsp.CoeffA2] = a0
			c[dsp.CoeffB1] = -a0 * D
			c[dsp.CoeffB2] = a0 * (1 - C)
		}

	case MMALPF2, MMALPF2B:
		resonanceDB := 0.0
		if q > 0.707 {
			peak := q * q / math.Sqrt(q*q-0.25)
			resonanceDB = 20 * math.Log10(peak)
		}
		res := (math.Cos(theta) + math.Sin(theta)*math.Sqrt(math.Pow(10, resonanceDB/10)-1)) /
			(math.Pow(10, resonanceDB/20)*math.Sin(theta) + 1)
		g := math.Pow(10, -resonanceDB/40)
		if p.Algorithm == MMALPF2B {
			g = 1
		}
		b1 := -2 * res * math.Cos(theta)
		b2 := res * res
		c[dsp.CoeffA0] = g * (1 + b1 + b2)
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2

	case LowShelf:
		mu := math.Pow(10, p.BoostCutDB/20)
		beta := 4 / (1 + mu)
		delta := beta * math.Tan(theta/2)
		gamma := (1 - delta) / (1 + delta)
		c[dsp.CoeffA0] = (1 - gamma) / 2
		c[dsp.CoeffA1] = (1 - gamma) / 2
		c[dsp.CoeffB1] = -gamma
		c[dsp.CoeffC0] = mu - 1
		c[dsp.CoeffD0] = 1

	case HiShelf:
		mu := math.Pow(10, p.BoostCutDB/20)
		beta := (1 + mu) / 4
		delta := beta * math.Tan(theta/2)
		gamma := (1 - delta) / (1 + delta)
		c[dsp.CoeffA0] = (1 + gamma) / 2
		c[dsp.CoeffA1] = -(1 + gamma) / 2
		c[dsp.CoeffB1] = -gamma
		c[dsp.CoeffC0] = mu - 1
		c[dsp.CoeffD0] = 1

	case CQParaEQ:
		K := math.Tan(math.Pi * fc / fs)
		vo := math.Pow(10, p.BoostCutDB/20)
		d0 := 1 + K/q + K*K
		e0 := 1 + K/(vo*q) + K*K
		alpha := 1 + vo*K/q + K*K
		beta := 2 * (K*K - 1)
		gamma := 1 - vo*K/q + K*K
		delta := 1 - K/q + K*K
		eta := 1 - K/(vo*q) + K*K
		if p.BoostCutDB >= 0 {
			c[dsp.CoeffA0] = alpha / d0
			c[dsp.CoeffA1] = beta / d0
			c[dsp.CoeffA2] = gamma / d0
			c[dsp.CoeffB1] = beta / d0
			c[dsp.CoeffB2] = delta / d0
		} else {
			c[dsp.CoeffA0] = d0 / e0
			c[dsp.CoeffA1] = beta / e0
			c[dsp.CoeffA2] = delta / e0
			c[dsp.CoeffB1] = beta / e0
			c[dsp.CoeffB2] = eta / e0
		}

	case NCQParaEQ:
		mu := math.Pow(10, p.BoostCutDB/20)
		tanArg := math.Min(theta/(2*q), maxTanArg)
		zeta := 4 / (1 + mu)
		t := zeta * math.Tan(tanArg)
		beta := 0.5 * (1 - t) / (1 + t)
		gamma := (0.5 + beta) * math.Cos(theta)
		alpha := 0.5 - beta
		c[dsp.CoeffA0] = alpha
		c[dsp.CoeffA1] = 0
		c[dsp.CoeffA2] = -alpha
		c[dsp.CoeffB1] = -2 * gamma
		c[dsp.CoeffB2] = 2 * beta
		c[dsp.CoeffC0] = mu - 1
		c[dsp.CoeffD0] = 1

	case LWRLPF2, LWRHPF2:
		omegaC := math.Pi * fc
		k := omegaC / math.Tan(math.Pi*fc/fs)
		den := k*k + omegaC*omegaC + 2*k*omegaC
		if p.Algorithm == LWRLPF2 {
			c[dsp.CoeffA0] = omegaC * omegaC / den
			c[dsp.CoeffA1] = 2 * omegaC * omegaC / den
			c[dsp.CoeffA2] = omegaC * omegaC / den
		} else {
			c[dsp.CoeffA0] = k * k / den
			c[dsp.CoeffA1] = -2 * k * k / den
			c[dsp.CoeffA2] = k * k / den
		}
		c[dsp.CoeffB1] = (-2*k*k + 2*omegaC*omegaC) / den
		c[dsp.CoeffB2] = (-2*k*omegaC + k*k + omegaC*omegaC) / den

	case APF1:
		t := math.Tan(math.Pi * fc / fs)
		alpha := (t - 1) / (t + 1)
		c[dsp.CoeffA0] = alpha
		c[dsp.CoeffA1] = 1
		c[dsp.CoeffB1] = alpha

	case APF2:
		bw := fc / q
		t := math.Tan(math.Min(math.Pi*bw/fs, maxTanArg))
		alpha := (t - 1) / (t + 1)
		beta := -math.Cos(theta)
		c[dsp.CoeffA0] = -alpha
		c[dsp.CoeffA1] = beta * (1 - alpha)
		c[dsp.CoeffA2] = 1
		c[dsp.CoeffB1] = beta * (1 - alpha)
		c[dsp.CoeffB2] = -alpha

	case ResonA, ResonB:
		bw := fc / q
		b2 := math.Exp(-2 * math.Pi * bw / fs)
		b1 := (-4 * b2 / (1 + b2)) * math.Cos(theta)
		if p.Algorithm == ResonA {
			c[dsp.CoeffA0] = (1 - b2) * math.Sqrt(1-b1*b1/(4*b2))
		} else {
			c[dsp.CoeffA0] = 1 - math.Sqrt(b2)
			c[dsp.CoeffA2] = -(1 - math.Sqrt(b2))
		}
		c[dsp.CoeffB1] = b1
		c[dsp.CoeffB2] = b2
	}

	return c
}

// setSection copies normalized section coefficients into the a/b slots.
func setSection(c *[dsp.NumCoeffs]float64, s biquad.Coefficients) {
	c[dsp.CoeffA0] = s.B0
	c[dsp.CoeffA1] = s.B1
	c[dsp.CoeffA2] = s.B2
	c[dsp.CoeffB1] = s.A1
	c[dsp.CoeffB2] = s.A2
}

// matchedPoles places the digital poles at the exact analog pole locations.
func matchedPoles(theta, q float64) (b1, b2 float64) {
	zeta := 1 / (2 * q)
	b2 = math.Exp(-2 * zeta * theta)
	if zeta <= 1 {
		b1 = -2 * math.Exp(-zeta*theta) * math.Cos(math.Sqrt(1-zeta*zeta)*theta)
	} else {
		b1 = -2 * math.Exp(-zeta*theta) * math.Cosh(math.Sqrt(zeta*zeta-1)*theta)
	}
	return b1, b2
}

func matchedTerms(b1, b2, theta float64) (B0, B1, B2, phi0, phi1, phi2 float64) {
	B0 = (1 + b1 + b2) * (1 + b1 + b2)
	B1 = (1 - b1 + b2) * (1 - b1 + b2)
	B2 = -4 * b2
	s := math.Sin(theta / 2)
	phi1 = s * s
	phi0 = 1 - phi1
	phi2 = 4 * phi0 * phi1
	return
}
