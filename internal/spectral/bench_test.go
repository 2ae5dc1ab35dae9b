package spectral

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func benchmarkForward(b *testing.B, tr Transform) {
	n := tr.Size()
	u := randomField(n, 1)
	dst := mat.NewDense(n, n, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Forward(dst, u)
	}
}

func BenchmarkMatrixDCT64(b *testing.B)  { benchmarkForward(b, NewMatrixDCT(64)) }
func BenchmarkFFTDCT64(b *testing.B)     { benchmarkForward(b, NewFFTDCT(64)) }
func BenchmarkMatrixDCT128(b *testing.B) { benchmarkForward(b, NewMatrixDCT(128)) }
func BenchmarkFFTDCT128(b *testing.B)    { benchmarkForward(b, NewFFTDCT(128)) }
