package dsp

// Structure selects one of four realizations of the same second-order
// transfer function H(z) = (a0 + a1 z^-1 + a2 z^-2) / (1 + b1 z^-1 + b2 z^-2).
type Structure int

const (
	Direct Structure = iota
	Canonical
	TransposeDirect
	TransposeCanonical
)

func (s Structure) String() string {
	switch s {
	case Direct:
		return "direct"
	case Canonical:
		return "canonical"
	case TransposeDirect:
		return "transpose-direct"
	case TransposeCanonical:
		return "transpose-canonical"
	default:
		return "unknown"
	}
}

// Coefficient slots. c0 and d0 are the wet/dry weights used by designers that
// mix the filtered signal with the input.
const (
	CoeffA0 = iota
	CoeffA1
	CoeffA2
	CoeffB1
	CoeffB2
	CoeffC0
	CoeffD0
	NumCoeffs
)

// State register slots. Transposed forms only use XZ1 and XZ2 for their
// internal delays, except TransposeDirect which also keeps YZ1/YZ2.
const (
	StateXZ1 = iota
	StateXZ2
	StateYZ1
	StateYZ2
	NumStates
)

// BiquadParameters selects the structure.
type BiquadParameters struct {
	Structure Structure
}

// Biquad is a second-order IIR section with selectable structure.
type Biquad struct {
	MonoOnly

	params BiquadParameters
	coeffs [NumCoeffs]float64
	state  [NumStates]float64
}

// NewBiquad returns a Direct form biquad with zero coefficients.
func NewBiquad() *Biquad {
	return &Biquad{}
}

// Reset clears the state registers.
func (b *Biquad) Reset(sampleRate float64) bool {
	b.state = [NumStates]float64{}
	return true
}

func (b *Biquad) Parameters() BiquadParameters { return b.params }

func (b *Biquad) SetParameters(p BiquadParameters) { b.params = p }

// SetCoefficients copies all seven coefficient slots.
func (b *Biquad) SetCoefficients(c [NumCoeffs]float64) { b.coeffs = c }

func (b *Biquad) Coefficients() [NumCoeffs]float64 { return b.coeffs }

// State returns a copy of the state registers.
func (b *Biquad) State() [NumStates]float64 { return b.state }

// GValue is the instantaneous gain a0, used by zero-delay feedback wrappers.
func (b *Biquad) GValue() float64 { return b.coeffs[CoeffA0] }

// SValue is the storage component: the part of the next output that does not
// depend on the next input. It is only defined for Direct and
// TransposeCanonical; other structures return 0.
func (b *Biquad) SValue() float64 {
	switch b.params.Structure {
	case Direct:
		return b.coeffs[CoeffA1]*b.state[StateXZ1] +
			b.coeffs[CoeffA2]*b.state[StateXZ2] -
			b.coeffs[CoeffB1]*b.state[StateYZ1] -
			b.coeffs[CoeffB2]*b.state[StateYZ2]
	case TransposeCanonical:
		return b.state[StateXZ1]
	default:
		return 0
	}
}

// ProcessSample runs one sample through the selected structure.
func (b *Biquad) ProcessSample(x float64) float64 {
	c := &b.coeffs
	s := &b.state

	switch b.params.Structure {
	case Direct:
		y := c[CoeffA0]*x + c[CoeffA1]*s[StateXZ1] + c[CoeffA2]*s[StateXZ2] -
			c[CoeffB1]*s[StateYZ1] - c[CoeffB2]*s[StateYZ2]
		y, _ = FlushUnderflow(y)
		s[StateXZ2] = s[StateXZ1]
		s[StateXZ1] = x
		s[StateYZ2] = s[StateYZ1]
		s[StateYZ1] = y
		return y

	case Canonical:
		w := x - c[CoeffB1]*s[StateXZ1] - c[CoeffB2]*s[StateXZ2]
		y := c[CoeffA0]*w + c[CoeffA1]*s[StateXZ1] + c[CoeffA2]*s[StateXZ2]
		y, _ = FlushUnderflow(y)
		s[StateXZ2] = s[StateXZ1]
		s[StateXZ1] = w
		return y

	case TransposeDirect:
		w := x + s[StateYZ1]
		y := c[CoeffA0]*w + s[StateXZ1]
		y, _ = FlushUnderflow(y)
		s[StateYZ1] = s[StateYZ2] - c[CoeffB1]*w
		s[StateYZ2] = -c[CoeffB2] * w
		s[StateXZ1] = s[StateXZ2] + c[CoeffA1]*w
		s[StateXZ2] = c[CoeffA2] * w
		return y

	case TransposeCanonical:
		y := c[CoeffA0]*x + s[StateXZ1]
		y, _ = FlushUnderflow(y)
		s[StateXZ1] = c[CoeffA1]*x - c[CoeffB1]*y + s[StateXZ2]
		s[StateXZ2] = c[CoeffA2]*x - c[CoeffB2]*y
		return y
	}
	return x
}
