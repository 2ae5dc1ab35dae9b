package sim

import (
	"github.com/san-kum/spinodal/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// State is the observable progress of a Solver.
type State struct {
	field   *mat.Dense
	hat     *mat.Dense
	history *dynamo.History

	// Tau0 is the step at which separation was detected, 0 if not yet.
	Tau0 int
	// T0 is the rescaled time at Tau0.
	T0 float64
	// LegacyT0 is (1/M·kappa)·Tau0·delt evaluated left to right, kept for
	// comparison with earlier published numbers.
	LegacyT0      float64
	ComputedSteps int
	TimePassed    float64
	Delt          float64
	StopReason    dynamo.StopReason
}

// Field is the current concentration field. The solver reuses it, so
// callers that keep it across SolveOrResume calls must copy it.
func (s *State) Field() *mat.Dense { return s.field }

// Spectral is the cosine transform of Field.
func (s *State) Spectral() *mat.Dense { return s.hat }

func (s *State) History() *dynamo.History { return s.history }

// SeparationStep returns Tau0, or the last computed step when no separation
// was detected.
func (s *State) SeparationStep() (step int, detected bool) {
	if s.Tau0 > 0 {
		return s.Tau0, true
	}
	return s.ComputedSteps - 1, false
}

// SeparationTime is T0, or the elapsed time when nothing was detected.
func (s *State) SeparationTime() float64 {
	if s.Tau0 > 0 {
		return s.T0
	}
	return s.TimePassed
}

// Terminal reports whether further SolveOrResume calls are no-ops.
func (s *State) Terminal(fullSim bool) bool {
	switch s.StopReason {
	case dynamo.StopTimeLimit, dynamo.StopStepLimit:
		return true
	case dynamo.StopEnergyPlateau:
		return !fullSim
	}
	return false
}

func (s *State) dropFields() {
	s.field, s.hat = nil, nil
}
