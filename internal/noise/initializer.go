package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Initializer builds initial concentration fields around a mean X0 and
// supplies per-step jitter from the same stream.
type Initializer struct {
	kind      Kind
	src       Source
	x0        float64
	amplitude float64
}

func NewInitializer(kind Kind, seed int64, x0, amplitude float64) (*Initializer, error) {
	src, err := NewSource(kind, seed)
	if err != nil {
		return nil, err
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise: negative amplitude %g", amplitude)
	}
	return &Initializer{kind: kind, src: src, x0: x0, amplitude: amplitude}, nil
}

func (in *Initializer) Kind() Kind { return in.kind }

// Field returns U0 = X0 + amplitude·(noise − offset).
func (in *Initializer) Field(n int) *mat.Dense {
	u := in.src.Sample(n)
	off := in.kind.Offset()
	u.Apply(func(_, _ int, v float64) float64 {
		return in.x0 + in.amplitude*(v-off)
	}, u)
	return u
}

// Jitter adds amp·(2·noise − 1) to u in place.
func (in *Initializer) Jitter(u *mat.Dense, amp float64) {
	if amp == 0 {
		return
	}
	n, _ := u.Dims()
	z := in.src.Sample(n)
	u.Apply(func(i, j int, v float64) float64 {
		return v + amp*(2*z.At(i, j)-1)
	}, u)
}
