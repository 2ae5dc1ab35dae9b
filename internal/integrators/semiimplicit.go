package integrators

import (
	"fmt"

	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/physics"
	"github.com/san-kum/spinodal/internal/spectral"
	"gonum.org/v1/gonum/mat"
)

// Jitterer perturbs a field in place.
type Jitterer interface {
	Jitter(u *mat.Dense, amp float64)
}

// SemiImplicit advances the Cahn-Hilliard field one step in cosine space:
// the fourth-order term is implicit, the chemical potential explicit.
//
//	hat_U ← (hat_U + Seig ⊙ DCT(μ(U))) / CHeig
//
// The field and its transform are kept between calls.
type SemiImplicit struct {
	mat  *physics.Material
	coef *spectral.Coefficients
	tr   spectral.Transform

	jitter float64
	noise  Jitterer

	u, hat    *mat.Dense
	mu, muHat *mat.Dense
	ready     bool
}

func NewSemiImplicit(m *physics.Material, coef *spectral.Coefficients, tr spectral.Transform) *SemiImplicit {
	n := m.N
	return &SemiImplicit{
		mat:   m,
		coef:  coef,
		tr:    tr,
		u:     mat.NewDense(n, n, nil),
		hat:   mat.NewDense(n, n, nil),
		mu:    mat.NewDense(n, n, nil),
		muHat: mat.NewDense(n, n, nil),
	}
}

// SetJitter enables per-step noise of amplitude amp drawn from src.
func (s *SemiImplicit) SetJitter(amp float64, src Jitterer) {
	s.jitter, s.noise = amp, src
}

// Load copies u into the engine and takes its transform.
func (s *SemiImplicit) Load(u *mat.Dense) error {
	r, c := u.Dims()
	if r != s.mat.N || c != s.mat.N {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", dynamo.ErrShapeMismatch, r, c, s.mat.N, s.mat.N)
	}
	s.u.Copy(u)
	s.tr.Forward(s.hat, s.u)
	s.ready = true
	return nil
}

func (s *SemiImplicit) Ready() bool { return s.ready }

// Field returns the current field. It is overwritten by the next Step.
func (s *SemiImplicit) Field() *mat.Dense { return s.u }

// Spectral returns the transform of the current field.
func (s *SemiImplicit) Spectral() *mat.Dense { return s.hat }

// ChemicalPotential evaluates μ on the current field.
func (s *SemiImplicit) ChemicalPotential() *mat.Dense {
	return s.mat.ChemicalPotentialField(s.mu, s.u)
}

func (s *SemiImplicit) Step() error {
	if !s.ready {
		return dynamo.ErrNotReady
	}
	s.mat.ChemicalPotentialField(s.mu, s.u)
	s.tr.Forward(s.muHat, s.mu)

	h := s.hat.RawMatrix()
	g := s.muHat.RawMatrix()
	se := s.coef.Seig.RawMatrix()
	ch := s.coef.CHeig.RawMatrix()
	n := s.mat.N
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := i*h.Stride + j
			h.Data[k] = (h.Data[k] + se.Data[i*se.Stride+j]*g.Data[i*g.Stride+j]) / ch.Data[i*ch.Stride+j]
		}
	}
	s.tr.Inverse(s.u, s.hat)

	if s.jitter > 0 && s.noise != nil {
		s.noise.Jitter(s.u, s.jitter)
		// The spectral state follows the jittered field.
		s.tr.Forward(s.hat, s.u)
	}
	return nil
}
