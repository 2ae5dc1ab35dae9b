package physics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// logAbs is the real part of the complex logarithm.
func logAbs(x float64) float64 { return math.Log(math.Abs(x)) }

// ChemicalPotential returns dG/du at a single concentration value.
func (m *Material) ChemicalPotential(u float64) float64 {
	inv := 1 - u
	d := inv - u
	return m.Amr * (m.RT*logAbs(u/inv) - m.BRT + (m.A0+m.A1*d)*d - 2*m.A1*u*inv)
}

// BulkDensity is the Flory-Huggins plus Redlich-Kister free energy density.
func (m *Material) BulkDensity(u float64) float64 {
	inv := 1 - u
	return m.Amr * (m.RT*(u*(logAbs(u)-m.B)+inv*logAbs(inv)) + (m.A0+m.A1*(inv-u))*u*inv)
}

// ChemicalPotentialField writes μ(u) into dst, allocating it when nil.
func (m *Material) ChemicalPotentialField(dst, u *mat.Dense) *mat.Dense {
	if dst == nil {
		r, c := u.Dims()
		dst = mat.NewDense(r, c, nil)
	}
	dst.Apply(func(_, _ int, v float64) float64 { return m.ChemicalPotential(v) }, u)
	return dst
}
