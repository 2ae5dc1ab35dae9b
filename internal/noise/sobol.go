package noise

import (
	"math/bits"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

const sobolBits = 32

// SobolSource yields a randomized Sobol low-discrepancy sequence. Sampling
// an n×n field draws n consecutive points of an n-dimensional sequence, so
// row i holds point i. Direction numbers are seeded per dimension and the
// points carry a random digital shift.
type SobolSource struct {
	rng *rand.Rand
	seq *sobolSeq
}

func NewSobol(seed int64) *SobolSource {
	return &SobolSource{rng: rand.New(rand.NewPCG(uint64(seed), 0x5851f42d4c957f2d))}
}

func (s *SobolSource) Sample(n int) *mat.Dense {
	if s.seq == nil || s.seq.dim != n {
		s.seq = newSobolSeq(n, s.rng, true)
	}
	u := mat.NewDense(n, n, nil)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		s.seq.next(row)
		u.SetRow(i, row)
	}
	return u
}

// SobolPoints returns count points of a scrambled dim-dimensional Sobol
// sequence in [0,1)^dim, one point per row.
func SobolPoints(count, dim int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5851f42d4c957f2d))
	seq := newSobolSeq(dim, rng, true)
	pts := mat.NewDense(count, dim, nil)
	row := make([]float64, dim)
	for i := 0; i < count; i++ {
		seq.next(row)
		pts.SetRow(i, row)
	}
	return pts
}

type sobolSeq struct {
	dim   int
	index uint64
	v     [][sobolBits]uint32
	x     []uint32
	shift []uint32
}

// newSobolSeq builds direction numbers for dim dimensions. Dimension 0 is
// the van der Corput sequence; dimension j ≥ 1 uses the j-th primitive
// polynomial over GF(2) with random odd initial values m_k < 2^k, or all
// ones when rng is nil.
func newSobolSeq(dim int, rng *rand.Rand, shifted bool) *sobolSeq {
	s := &sobolSeq{
		dim:   dim,
		v:     make([][sobolBits]uint32, dim),
		x:     make([]uint32, dim),
		shift: make([]uint32, dim),
	}
	for k := 0; k < sobolBits; k++ {
		s.v[0][k] = 1 << (sobolBits - 1 - k)
	}
	polys := primitivePolynomials(dim - 1)
	for j := 1; j < dim; j++ {
		p := polys[j-1]
		deg := bits.Len64(p) - 1
		m := make([]uint32, sobolBits)
		for k := 0; k < deg && k < sobolBits; k++ {
			// odd and below 2^(k+1)
			m[k] = 1
			if rng != nil {
				m[k] = uint32(rng.IntN(1<<k))<<1 | 1
			}
		}
		for k := deg; k < sobolBits; k++ {
			val := m[k-deg] ^ (m[k-deg] << deg)
			for i := 1; i < deg; i++ {
				if p>>(deg-i)&1 == 1 {
					val ^= m[k-i] << i
				}
			}
			m[k] = val
		}
		for k := 0; k < sobolBits; k++ {
			s.v[j][k] = m[k] << (sobolBits - 1 - k)
		}
	}
	if shifted && rng != nil {
		for j := range s.shift {
			s.shift[j] = rng.Uint32()
		}
	}
	return s
}

// next writes the current point into dst and advances in Gray-code order.
func (s *sobolSeq) next(dst []float64) {
	for j := 0; j < s.dim; j++ {
		dst[j] = float64(s.x[j]^s.shift[j]) / (1 << sobolBits)
	}
	c := bits.TrailingZeros64(^s.index)
	if c >= sobolBits {
		c = sobolBits - 1
	}
	for j := 0; j < s.dim; j++ {
		s.x[j] ^= s.v[j][c]
	}
	s.index++
}

// primitivePolynomials returns the first count primitive polynomials over
// GF(2), ordered by degree then by coefficient bits. Bit i is the
// coefficient of x^i.
func primitivePolynomials(count int) []uint64 {
	out := make([]uint64, 0, count)
	for deg := 1; len(out) < count; deg++ {
		order := uint64(1)<<deg - 1
		factors := primeFactors(order)
		for p := uint64(1)<<deg | 1; p < uint64(1)<<(deg+1) && len(out) < count; p += 2 {
			if isPrimitive(p, deg, order, factors) {
				out = append(out, p)
			}
		}
	}
	return out
}

// isPrimitive checks that x has multiplicative order exactly 2^deg − 1
// modulo p, which also implies p is irreducible.
func isPrimitive(p uint64, deg int, order uint64, factors []uint64) bool {
	if polyPowMod(2, order, p, deg) != 1 {
		return false
	}
	for _, q := range factors {
		if polyPowMod(2, order/q, p, deg) == 1 {
			return false
		}
	}
	return true
}

// polyMulMod multiplies a and b modulo p; a must have degree at most deg.
func polyMulMod(a, b, p uint64, deg int) uint64 {
	if a>>deg&1 == 1 {
		a ^= p
	}
	var r uint64
	for b != 0 {
		if b&1 == 1 {
			r ^= a
		}
		b >>= 1
		a <<= 1
		if a>>deg&1 == 1 {
			a ^= p
		}
	}
	return r
}

func polyPowMod(base, e, p uint64, deg int) uint64 {
	r := uint64(1)
	for e > 0 {
		if e&1 == 1 {
			r = polyMulMod(r, base, p, deg)
		}
		base = polyMulMod(base, base, p, deg)
		e >>= 1
	}
	return r
}

func primeFactors(n uint64) []uint64 {
	var out []uint64
	for q := uint64(2); q*q <= n; q++ {
		if n%q == 0 {
			out = append(out, q)
			for n%q == 0 {
				n /= q
			}
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}
