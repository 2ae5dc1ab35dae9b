package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrShapeMismatch indicates a supplied field that is not N×N.
	ErrShapeMismatch = errors.New("dynamo: field shape does not match grid resolution")

	// ErrDomainViolation indicates concentrations at or outside the open interval (0,1).
	ErrDomainViolation = errors.New("dynamo: concentration outside (0,1)")

	// ErrConfiguration indicates inconsistent or out-of-range parameters.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNotPrepared indicates a solve was requested before Prepare.
	ErrNotPrepared = errors.New("dynamo: solver not prepared")

	// ErrNotReady indicates the step engine was advanced before a field was loaded.
	ErrNotReady = errors.New("dynamo: step engine has no field loaded")
)

// SimulationError wraps an error with step context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
