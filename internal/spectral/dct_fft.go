package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"
)

// FFTDCT computes the transform row by row and column by column with
// length-N complex FFTs (Makhoul's reordering).
type FFTDCT struct {
	n     int
	tw    []complex128 // e^{-iπk/2N}
	scale []float64    // ortho scaling of the unnormalized DCT-II
	buf   []complex128
	line  []float64
	out   []float64
}

func NewFFTDCT(n int) *FFTDCT {
	d := &FFTDCT{
		n:     n,
		tw:    make([]complex128, n),
		scale: make([]float64, n),
		buf:   make([]complex128, n),
		line:  make([]float64, n),
		out:   make([]float64, n),
	}
	for k := 0; k < n; k++ {
		d.tw[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(2*n)))
		d.scale[k] = math.Sqrt(1 / float64(2*n))
	}
	d.scale[0] = math.Sqrt(1 / float64(4*n))
	return d
}

func (d *FFTDCT) Size() int { return d.n }

func (d *FFTDCT) Forward(dst, src *mat.Dense) {
	d.apply(dst, src, d.forward1)
}

func (d *FFTDCT) Inverse(dst, src *mat.Dense) {
	d.apply(dst, src, d.inverse1)
}

func (d *FFTDCT) apply(dst, src *mat.Dense, f func(x, y []float64)) {
	n := d.n
	for i := 0; i < n; i++ {
		mat.Row(d.line, i, src)
		f(d.line, d.out)
		dst.SetRow(i, d.out)
	}
	for j := 0; j < n; j++ {
		mat.Col(d.line, j, dst)
		f(d.line, d.out)
		dst.SetCol(j, d.out)
	}
}

func (d *FFTDCT) forward1(x, y []float64) {
	n := d.n
	for k := 0; 2*k < n; k++ {
		d.buf[k] = complex(x[2*k], 0)
	}
	for k := 0; 2*k+1 < n; k++ {
		d.buf[n-1-k] = complex(x[2*k+1], 0)
	}
	v := fft.FFT(d.buf)
	for k := 0; k < n; k++ {
		y[k] = 2 * real(d.tw[k]*v[k]) * d.scale[k]
	}
}

func (d *FFTDCT) inverse1(y, x []float64) {
	n := d.n
	for k := 0; k < n; k++ {
		xk := y[k] / d.scale[k]
		var xnk float64
		if k > 0 {
			xnk = y[n-k] / d.scale[n-k]
		}
		d.buf[k] = 0.5 * cmplx.Conj(d.tw[k]) * complex(xk, -xnk)
	}
	v := fft.IFFT(d.buf)
	for k := 0; 2*k < n; k++ {
		x[2*k] = real(v[k])
	}
	for k := 0; 2*k+1 < n; k++ {
		x[2*k+1] = real(v[n-1-k])
	}
}
