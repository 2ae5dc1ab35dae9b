package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"
)

// StructureFactor returns the radially averaged power spectrum of the
// fluctuations of u about its mean, binned by integer wavenumber |k| up to
// min(rows, cols)/2.
func StructureFactor(u mat.Matrix) []float64 {
	r, c := u.Dims()
	mean := mat.Sum(u) / float64(r*c)
	x := make([][]float64, r)
	for i := range x {
		x[i] = make([]float64, c)
		for j := range x[i] {
			x[i][j] = u.At(i, j) - mean
		}
	}
	f := fft.FFT2Real(x)

	bins := min(r, c)/2 + 1
	s := make([]float64, bins)
	count := make([]int, bins)
	for i := 0; i < r; i++ {
		ki := wavenumber(i, r)
		for j := 0; j < c; j++ {
			k := int(math.Round(math.Hypot(ki, wavenumber(j, c))))
			if k >= bins {
				continue
			}
			a := cmplx.Abs(f[i][j])
			s[k] += a * a
			count[k]++
		}
	}
	norm := float64(r * c)
	for k := range s {
		if count[k] > 0 {
			s[k] /= float64(count[k]) * norm
		}
	}
	return s
}

func wavenumber(i, n int) float64 {
	if i > n/2 {
		return float64(i - n)
	}
	return float64(i)
}

// DomainLength estimates the characteristic domain size as length/<k>,
// <k> the mean wavenumber weighted by the structure factor. It is 0 for a
// flat field.
func DomainLength(u mat.Matrix, length float64) float64 {
	s := StructureFactor(u)
	var num, den float64
	for k := 1; k < len(s); k++ {
		num += float64(k) * s[k]
		den += s[k]
	}
	if den == 0 {
		return 0
	}
	return length * den / num
}
