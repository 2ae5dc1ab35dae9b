package integrators

import (
	"testing"

	"github.com/san-kum/spinodal/internal/noise"
	"github.com/san-kum/spinodal/internal/spectral"
)

func benchmarkStep(b *testing.B, backend string, n int) {
	m := newTestMaterial(b, n)
	tr, err := spectral.NewTransform(backend, n)
	if err != nil {
		b.Fatal(err)
	}
	coef := spectral.NewCoefficients(n, m.Kappa, 1e-11, m.Delx2)
	engine := NewSemiImplicit(m, coef, tr)
	in, _ := noise.NewInitializer(noise.Uniform, 2023, 0.875, 0.01)
	if err := engine.Load(in.Field(n)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := engine.Step(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSemiImplicitMatrix64(b *testing.B)  { benchmarkStep(b, spectral.BackendMatrix, 64) }
func BenchmarkSemiImplicitFFT64(b *testing.B)     { benchmarkStep(b, spectral.BackendFFT, 64) }
func BenchmarkSemiImplicitMatrix128(b *testing.B) { benchmarkStep(b, spectral.BackendMatrix, 128) }
func BenchmarkSemiImplicitFFT128(b *testing.B)    { benchmarkStep(b, spectral.BackendFFT, 128) }
