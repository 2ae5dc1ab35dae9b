package noise

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformSource draws independent U(0,1) samples from a seeded PCG stream.
type UniformSource struct {
	dist distuv.Uniform
}

func NewUniform(seed int64) *UniformSource {
	return &UniformSource{dist: distuv.Uniform{
		Min: 0,
		Max: 1,
		Src: rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15),
	}}
}

// Sample fills row-major.
func (s *UniformSource) Sample(n int) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = s.dist.Rand()
	}
	return mat.NewDense(n, n, data)
}
