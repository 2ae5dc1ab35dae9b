package noise

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimplexSource samples normalized 3-D OpenSimplex noise on a 4×4 period
// lattice; each draw moves one unit along z.
type SimplexSource struct {
	noise opensimplex.Noise
	z     float64
	coord []float64
}

func NewSimplex(seed int64) *SimplexSource {
	return &SimplexSource{noise: opensimplex.NewNormalized(seed)}
}

func (s *SimplexSource) Sample(n int) *mat.Dense {
	if len(s.coord) != n {
		s.coord = make([]float64, n)
		if n > 1 {
			floats.Span(s.coord, 0, 4*float64(n-1)/float64(n))
		}
	}
	u := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u.Set(i, j, s.noise.Eval3(s.coord[j], s.coord[i], s.z))
		}
	}
	s.z++
	return u
}
