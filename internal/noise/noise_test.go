package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"uniform", Uniform, false},
		{"", Uniform, false},
		{"LCG", LCG, false},
		{" sobol ", Sobol, false},
		{"simplex", Simplex, false},
		{"perlin", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), Names()[tt.want])
		})
	}
}

func TestLCGFirstValues(t *testing.T) {
	g := NewLCG(2023)
	// Double-precision stream; the integer recurrence diverges after the
	// first value.
	want := []float64{1175842708, 1724795392, 1549906432, 1171585536, 2077925888, 628304384}
	for i, w := range want {
		assert.Equal(t, w, g.Next(), "value %d", i)
	}
}

func TestLCGColumnMajor(t *testing.T) {
	u := NewLCG(2023).Sample(2)
	assert.InDelta(t, 0.5475444293336684, u.At(0, 0), 1e-15)
	assert.InDelta(t, 0.8031704429551821, u.At(1, 0), 1e-15)
	assert.InDelta(t, 0.7217314246677474, u.At(0, 1), 1e-15)
	assert.InDelta(t, 0.5455620291389348, u.At(1, 1), 1e-15)
}

func TestSobolVanDerCorput(t *testing.T) {
	seq := newSobolSeq(3, nil, false)
	want := []float64{0, 0.5, 0.75, 0.25, 0.375, 0.875, 0.625, 0.125}
	p := make([]float64, 3)
	for i, w := range want {
		seq.next(p)
		assert.Equal(t, w, p[0], "point %d", i)
	}
}

func TestSobolSecondDimension(t *testing.T) {
	// x+1 with m_1 = 1 gives the classic second Sobol coordinate.
	seq := newSobolSeq(2, nil, false)
	want := []float64{0, 0.5, 0.25, 0.75, 0.375, 0.875, 0.125, 0.625}
	p := make([]float64, 2)
	for i, w := range want {
		seq.next(p)
		assert.Equal(t, w, p[1], "point %d", i)
	}
}

func TestPrimitivePolynomials(t *testing.T) {
	got := primitivePolynomials(8)
	assert.Equal(t, []uint64{0b11, 0b111, 0b1011, 0b1101, 0b10011, 0b11001, 0b100101, 0b101001}, got)
	// 511 dimensions beyond the first need degree 13.
	ps := primitivePolynomials(511)
	assert.Len(t, ps, 511)
	assert.Equal(t, uint64(1)<<13, ps[510]&^(uint64(1)<<13-1))
}

func TestSourcesRangeAndDeterminism(t *testing.T) {
	for _, k := range []Kind{Uniform, LCG, Sobol, Simplex} {
		t.Run(k.String(), func(t *testing.T) {
			a, err := NewSource(k, 2023)
			require.NoError(t, err)
			b, err := NewSource(k, 2023)
			require.NoError(t, err)
			ua, ub := a.Sample(16), b.Sample(16)
			assert.True(t, mat.Equal(ua, ub))
			assert.GreaterOrEqual(t, mat.Min(ua), 0.0)
			assert.LessOrEqual(t, mat.Max(ua), 1.0)

			// The stream continues on the next draw.
			assert.False(t, mat.Equal(ua, a.Sample(16)))
		})
	}
}

func TestInitializerCentering(t *testing.T) {
	in, err := NewInitializer(Uniform, 2023, 0.875, 0.01)
	require.NoError(t, err)
	u := in.Field(64)
	mean := stat.Mean(u.RawMatrix().Data, nil)
	assert.InDelta(t, 0.875, mean, 1e-3)
	assert.GreaterOrEqual(t, mat.Min(u), 0.875-0.005)
	assert.LessOrEqual(t, mat.Max(u), 0.875+0.005)
}

func TestInitializerLCGNotCentered(t *testing.T) {
	in, err := NewInitializer(LCG, 2023, 0.875, 0.01)
	require.NoError(t, err)
	u := in.Field(2)
	assert.InDelta(t, 0.875+0.01*0.5475444293336684, u.At(0, 0), 1e-15)
}

func TestInitializerJitter(t *testing.T) {
	in, err := NewInitializer(Uniform, 1, 0.5, 0.01)
	require.NoError(t, err)
	u := mat.NewDense(4, 4, nil)
	u.Apply(func(_, _ int, _ float64) float64 { return 0.5 }, u)
	orig := mat.DenseCopyOf(u)
	in.Jitter(u, 0)
	assert.True(t, mat.Equal(orig, u))
	in.Jitter(u, 0.01)
	assert.False(t, mat.Equal(orig, u))
	assert.GreaterOrEqual(t, mat.Min(u), 0.49)
	assert.LessOrEqual(t, mat.Max(u), 0.51)
}

func TestNegativeAmplitude(t *testing.T) {
	_, err := NewInitializer(Uniform, 1, 0.5, -1)
	assert.Error(t, err)
}

func TestSobolPoints(t *testing.T) {
	a := SobolPoints(16, 2, 7)
	b := SobolPoints(16, 2, 7)
	require.True(t, mat.Equal(a, b))

	r, c := a.Dims()
	assert.Equal(t, 16, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			assert.True(t, v >= 0 && v < 1, "point %d,%d = %v", i, j, v)
		}
	}
}
