package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ValidateField reports whether u is an n×n field with every value strictly
// inside (0,1). NaN values count as domain violations.
func ValidateField(u mat.Matrix, n int) error {
	if u == nil {
		return fmt.Errorf("%w: nil field", ErrShapeMismatch)
	}
	r, c := u.Dims()
	if r != n || c != n {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShapeMismatch, r, c, n, n)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := u.At(i, j); !(v > 0 && v < 1) {
				return fmt.Errorf("%w: U[%d,%d]=%g", ErrDomainViolation, i, j, v)
			}
		}
	}
	return nil
}

// InDomain reports whether every value of u lies strictly inside (0,1).
func InDomain(u *mat.Dense) bool {
	raw := u.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for _, v := range row {
			if !(v > 0 && v < 1) {
				return false
			}
		}
	}
	return true
}
