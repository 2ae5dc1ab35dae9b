package metrics

import (
	"math"

	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Diagnostics computes the per-step scalar record of a field. It keeps
// gradient scratch space and is not safe for concurrent use.
type Diagnostics struct {
	mat       *physics.Material
	threshold float64
	dux, duy  *mat.Dense
}

func NewDiagnostics(m *physics.Material, threshold float64) *Diagnostics {
	return &Diagnostics{
		mat:       m,
		threshold: threshold,
		dux:       mat.NewDense(m.N, m.N, nil),
		duy:       mat.NewDense(m.N, m.N, nil),
	}
}

// Compute evaluates all diagnostics of u. elapsed is the rescaled time
// accumulated so far and delt the step that produced u.
func (d *Diagnostics) Compute(u *mat.Dense, step int, elapsed, delt float64) dynamo.Record {
	n := d.mat.N
	nn := float64(n * n)
	Gradient(d.dux, d.duy, u, d.mat.Delx)

	raw := u.RawMatrix()
	gx, gy := d.dux.RawMatrix(), d.duy.RawMatrix()
	var du2, bulk, mean float64
	var below int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := raw.Data[i*raw.Stride+j]
			a, b := gx.Data[i*gx.Stride+j], gy.Data[i*gy.Stride+j]
			du2 += a*a + b*b
			bulk += d.mat.BulkDensity(v)
			mean += v
			if v < d.threshold {
				below++
			}
		}
	}
	mean /= nn
	e2 := 0.5 * d.mat.Eps2 * du2 / nn

	var ps, l2 float64
	for i := 0; i < n; i++ {
		for _, v := range raw.Data[i*raw.Stride : i*raw.Stride+n] {
			um := v - mean
			ps += math.Abs(um)
			l2 += um * um
		}
	}

	return dynamo.Record{
		Step:    step,
		E:       bulk/nn + e2,
		E2:      e2,
		SA:      float64(below) / nn,
		DomTime: math.Cbrt(elapsed),
		Ra:      Roughness(u),
		L2:      l2 / nn,
		PS:      ps / nn,
		Delt:    delt,
	}
}

// RoughnessRow is the row sampled by Roughness: N/2+1, clamped to the grid.
func RoughnessRow(n int) int {
	return min(n/2+1, n-1)
}

// Roughness is the mean absolute deviation of one row from its mean.
func Roughness(u *mat.Dense) float64 {
	n, _ := u.Dims()
	row := mat.Row(nil, RoughnessRow(n), u)
	m := floats.Sum(row) / float64(len(row))
	var s float64
	for _, v := range row {
		s += math.Abs(v - m)
	}
	return s / float64(len(row))
}

// Gradient writes ∂u/∂axis0 into dx and ∂u/∂axis1 into dy using central
// differences inside and one-sided first-order differences at the edges.
// Both dimensions of u must be at least 2.
func Gradient(dx, dy, u *mat.Dense, h float64) {
	r, c := u.Dims()
	for i := 0; i < r; i++ {
		lo, hi := max(i-1, 0), min(i+1, r-1)
		for j := 0; j < c; j++ {
			dx.Set(i, j, (u.At(hi, j)-u.At(lo, j))/(float64(hi-lo)*h))
		}
	}
	for j := 0; j < c; j++ {
		lo, hi := max(j-1, 0), min(j+1, c-1)
		for i := 0; i < r; i++ {
			dy.Set(i, j, (u.At(i, hi)-u.At(i, lo))/(float64(hi-lo)*h))
		}
	}
}

// GradientRMS is the root mean square of |∇f|.
func GradientRMS(dx, dy, f *mat.Dense, h float64) float64 {
	Gradient(dx, dy, f, h)
	r, c := f.Dims()
	var s float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a, b := dx.At(i, j), dy.At(i, j)
			s += a*a + b*b
		}
	}
	return math.Sqrt(s / float64(r*c))
}
