package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is an orthonormal 2-D DCT-II with its DCT-III inverse.
// dst and src must be distinct N×N matrices.
type Transform interface {
	Forward(dst, src *mat.Dense)
	Inverse(dst, src *mat.Dense)
	Size() int
}

// Backend names accepted by NewTransform.
const (
	BackendMatrix = "matrix"
	BackendFFT    = "fft"
)

func NewTransform(backend string, n int) (Transform, error) {
	switch backend {
	case "", BackendMatrix:
		return NewMatrixDCT(n), nil
	case BackendFFT:
		return NewFFTDCT(n), nil
	}
	return nil, fmt.Errorf("spectral: unknown transform backend %q", backend)
}

// MatrixDCT applies the transform as two dense products with the
// orthonormal basis C: hat = C·U·Cᵀ and U = Cᵀ·hat·C.
type MatrixDCT struct {
	n   int
	c   *mat.Dense
	tmp *mat.Dense
}

func NewMatrixDCT(n int) *MatrixDCT {
	return &MatrixDCT{n: n, c: Basis(n), tmp: mat.NewDense(n, n, nil)}
}

// Basis returns the orthonormal DCT-II matrix with rows indexed by frequency.
func Basis(n int) *mat.Dense {
	c := mat.NewDense(n, n, nil)
	s0, sk := math.Sqrt(1/float64(n)), math.Sqrt(2/float64(n))
	for k := 0; k < n; k++ {
		s := sk
		if k == 0 {
			s = s0
		}
		for j := 0; j < n; j++ {
			c.Set(k, j, s*math.Cos(math.Pi*float64(k)*float64(2*j+1)/float64(2*n)))
		}
	}
	return c
}

func (m *MatrixDCT) Size() int { return m.n }

func (m *MatrixDCT) Forward(dst, src *mat.Dense) {
	m.tmp.Mul(m.c, src)
	dst.Mul(m.tmp, m.c.T())
}

func (m *MatrixDCT) Inverse(dst, src *mat.Dense) {
	m.tmp.Mul(m.c.T(), src)
	dst.Mul(m.tmp, m.c)
}
