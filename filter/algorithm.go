package filter

import (
	"fmt"
	"strings"
)

// Algorithm selects the coefficient design used by AudioFilter.
type Algorithm int

const (
	LPF1P Algorithm = iota // one-pole lowpass
	LPF1
	HPF1
	LPF2
	HPF2
	BPF2
	BSF2
	ButterLPF2
	ButterHPF2
	ButterBPF2
	ButterBSF2
	MMALPF2  // Massberg analog-matched resonant lowpass, gain compensated
	MMALPF2B // as MMALPF2 without gain compensation
	LowShelf
	HiShelf
	NCQParaEQ // non-constant-Q parametric EQ
	CQParaEQ  // constant-Q parametric EQ
	LWRLPF2   // Linkwitz-Riley
	LWRHPF2
	APF1
	APF2
	ResonA
	ResonB
	MatchLP2A // magnitude-matched lowpass, tight fit
	MatchLP2B // magnitude-matched lowpass, loose fit
	MatchBP2A
	MatchBP2B
	ImpInvLP1 // impulse-invariant lowpass
	ImpInvLP2

	numAlgorithms
)

var algorithmNames = [numAlgorithms]string{
	"lpf1p", "lpf1", "hpf1", "lpf2", "hpf2", "bpf2", "bsf2",
	"butterlpf2", "butterhpf2", "butterbpf2", "butterbsf2",
	"mmalpf2", "mmalpf2b", "lowshelf", "hishelf", "ncqparaeq", "cqparaeq",
	"lwrlpf2", "lwrhpf2", "apf1", "apf2", "resona", "resonb",
	"matchlp2a", "matchlp2b", "matchbp2a", "matchbp2b", "impinvlp1", "impinvlp2",
}

func (a Algorithm) String() string {
	if a < 0 || a >= numAlgorithms {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Algorithms lists every supported design in declaration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, numAlgorithms)
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}

// ParseAlgorithm resolves a case-insensitive algorithm name such as "LowShelf"
// or "butterlpf2". A leading "k" as in kLPF2 is accepted.
func ParseAlgorithm(name string) (Algorithm, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	for i, n := range algorithmNames {
		if s == n || s == "k"+n {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter algorithm %q", name)
}
