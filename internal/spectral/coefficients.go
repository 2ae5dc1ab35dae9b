package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Eigenvalues returns the 1-D eigenvalues 2cos(πk/(N−1)) − 2 of the
// discrete Neumann Laplacian, k = 0..N−1.
func Eigenvalues(n int) []float64 {
	eig := make([]float64, n)
	for k := range eig {
		eig[k] = 2*math.Cos(math.Pi*float64(k)/float64(n-1)) - 2
	}
	return eig
}

// Coefficients are the semi-implicit multipliers for one (kappa, delt) pair.
// CHeig is the divisor and Seig the multiplier of the transformed potential.
type Coefficients struct {
	N     int
	Kappa float64
	Delt  float64
	Delx2 float64
	Eig   []float64
	CHeig *mat.Dense
	Seig  *mat.Dense
}

// NewCoefficients builds CHeig = 1 + (delt/delx²)²·Λ² and
// Seig = (delt/delx²)/kappa·Λ with Λ[i][j] = eig[i] + eig[j].
func NewCoefficients(n int, kappa, delt, delx2 float64) *Coefficients {
	c := &Coefficients{
		N:     n,
		Eig:   Eigenvalues(n),
		CHeig: mat.NewDense(n, n, nil),
		Seig:  mat.NewDense(n, n, nil),
	}
	c.update(kappa, delt, delx2)
	return c
}

// Update recomputes the matrices in place when delt or kappa differ from the
// current values. It reports whether anything changed.
func (c *Coefficients) Update(kappa, delt float64) bool {
	if kappa == c.Kappa && delt == c.Delt {
		return false
	}
	c.update(kappa, delt, c.Delx2)
	return true
}

func (c *Coefficients) update(kappa, delt, delx2 float64) {
	c.Kappa, c.Delt, c.Delx2 = kappa, delt, delx2
	r := delt / delx2
	r2 := r * r
	s := r / kappa
	ch := c.CHeig.RawMatrix()
	se := c.Seig.RawMatrix()
	for i := 0; i < c.N; i++ {
		for j := 0; j < c.N; j++ {
			lam := c.Eig[i] + c.Eig[j]
			ch.Data[i*ch.Stride+j] = 1 + r2*lam*lam
			se.Data[i*se.Stride+j] = s * lam
		}
	}
}
