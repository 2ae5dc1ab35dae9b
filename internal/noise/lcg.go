package noise

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	lcgA = 1103515245.0
	lcgC = 12345.0
	lcgM = 2147483648.0 // 2^31
)

// LCGSource is the BSD linear congruential generator evaluated in double
// precision. The stream is reproducible bit for bit across platforms but
// visibly patterned.
type LCGSource struct {
	x float64
}

func NewLCG(seed int64) *LCGSource {
	return &LCGSource{x: float64(seed)}
}

// Next advances the generator and returns the raw state.
func (g *LCGSource) Next() float64 {
	// The conversion forces rounding of the product and prevents fusing
	// into an FMA, which would change the stream.
	g.x = math.Mod(float64(lcgA*g.x)+lcgC, lcgM)
	return g.x
}

// Sample fills column-major and scales by 1/(2^31−1).
func (g *LCGSource) Sample(n int) *mat.Dense {
	u := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			u.Set(i, j, g.Next()/(lcgM-1))
		}
	}
	return u
}
