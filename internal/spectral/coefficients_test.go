package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestEigenvalues(t *testing.T) {
	eig := Eigenvalues(5)
	assert.InDelta(t, 0, eig[0], 1e-15)
	assert.InDelta(t, -4, eig[4], 1e-15)
	assert.InDelta(t, 2*math.Cos(math.Pi/4)-2, eig[1], 1e-15)
}

func TestCoefficientsFormula(t *testing.T) {
	n, kappa, delt, delx2 := 4, 0.3, 1e-11, 1.0/9.0
	c := NewCoefficients(n, kappa, delt, delx2)
	eig := Eigenvalues(n)
	r := delt / delx2
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lam := eig[i] + eig[j]
			assert.Equal(t, 1+r*r*lam*lam, c.CHeig.At(i, j))
			assert.Equal(t, r/kappa*lam, c.Seig.At(i, j))
		}
	}
	assert.Equal(t, 1.0, c.CHeig.At(0, 0))
	assert.Equal(t, 0.0, c.Seig.At(0, 0))
}

func TestCoefficientsArePure(t *testing.T) {
	a := NewCoefficients(8, 0.285, 1e-11, 0.08)
	b := NewCoefficients(8, 0.285, 1e-11, 0.08)
	assert.True(t, mat.Equal(a.CHeig, b.CHeig))
	assert.True(t, mat.Equal(a.Seig, b.Seig))
}

func TestCoefficientsUpdate(t *testing.T) {
	c := NewCoefficients(8, 0.285, 1e-11, 0.08)
	assert.False(t, c.Update(0.285, 1e-11))
	assert.True(t, c.Update(0.285, 2e-11))
	want := NewCoefficients(8, 0.285, 2e-11, 0.08)
	assert.True(t, mat.Equal(want.CHeig, c.CHeig))
	assert.True(t, mat.Equal(want.Seig, c.Seig))
}
