package noise

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Kind selects the noise generator used for the initial field and jitter.
type Kind int

const (
	Uniform Kind = iota
	LCG
	Sobol
	Simplex
)

var kindNames = [...]string{
	Uniform: "uniform",
	LCG:     "lcg",
	Sobol:   "sobol",
	Simplex: "simplex",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a generator name to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Uniform, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("noise: unknown generator %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// Names lists the generator names in Kind order.
func Names() []string { return append([]string(nil), kindNames[:]...) }

// Offset is subtracted from raw samples before scaling. The lcg field is
// not centered.
func (k Kind) Offset() float64 {
	if k == LCG {
		return 0
	}
	return 0.5
}

// Source produces n×n samples in [0,1]. Successive calls continue the
// underlying stream.
type Source interface {
	Sample(n int) *mat.Dense
}

// NewSource returns the generator for k seeded with seed.
func NewSource(k Kind, seed int64) (Source, error) {
	switch k {
	case Uniform:
		return NewUniform(seed), nil
	case LCG:
		return NewLCG(seed), nil
	case Sobol:
		return NewSobol(seed), nil
	case Simplex:
		return NewSimplex(seed), nil
	}
	return nil, fmt.Errorf("noise: unsupported generator %v", k)
}
