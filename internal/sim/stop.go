package sim

import "gonum.org/v1/gonum/floats"

const (
	minDetectStep = 100
	detectWindow  = 25
)

// StopDetector recognises the kinetic end of separation from the gradient
// energy history: E2 has stopped growing over the last 50 steps and has
// just turned down from a level above its starting value.
type StopDetector struct {
	found bool
}

// Check reports whether step it completes the separation. e2 holds the
// gradient energies of steps 0..it.
func (d *StopDetector) Check(e2 []float64, it int) bool {
	if it < minDetectStep || len(e2) < 2*detectWindow || it >= len(e2) {
		return false
	}
	n := len(e2)
	s1 := floats.Sum(e2[n-2*detectWindow : n-detectWindow])
	s2 := floats.Sum(e2[n-detectWindow:])
	if s1 < s2 {
		return false
	}
	if e2[it-1] > e2[it] && e2[it] > e2[0] {
		d.found = true
		return true
	}
	return false
}

// Found reports whether separation has been detected.
func (d *StopDetector) Found() bool { return d.found }

func (d *StopDetector) Reset() { d.found = false }
