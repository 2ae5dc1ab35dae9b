package dynamo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestValidateField(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{0.5, 0.9, 0.1, 0.875})
	tests := []struct {
		name string
		u    mat.Matrix
		n    int
		want error
	}{
		{"valid", ok, 2, nil},
		{"nil", nil, 2, ErrShapeMismatch},
		{"wrong dims", ok, 3, ErrShapeMismatch},
		{"non square", mat.NewDense(2, 3, nil), 2, ErrShapeMismatch},
		{"zero", mat.NewDense(2, 2, []float64{0, 0.5, 0.5, 0.5}), 2, ErrDomainViolation},
		{"one", mat.NewDense(2, 2, []float64{0.5, 1, 0.5, 0.5}), 2, ErrDomainViolation},
		{"nan", mat.NewDense(2, 2, []float64{0.5, 0.5, math.NaN(), 0.5}), 2, ErrDomainViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.u, tt.n)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestInDomain(t *testing.T) {
	assert.True(t, InDomain(mat.NewDense(1, 2, []float64{0.2, 0.8})))
	assert.False(t, InDomain(mat.NewDense(1, 2, []float64{0.2, 1.2})))
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 1.5, Wrapped: ErrDomainViolation}
	assert.ErrorIs(t, err, ErrDomainViolation)
	assert.Contains(t, err.Error(), "step 3")
}
