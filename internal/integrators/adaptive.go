package integrators

import (
	"math"

	"github.com/san-kum/spinodal/internal/metrics"
	"gonum.org/v1/gonum/mat"
)

// AdaptiveStep proposes time steps from the size of the chemical potential
// gradient: steeper potentials get smaller steps. Increases are blended in
// slowly, decreases quickly.
type AdaptiveStep struct {
	base, max float64
	cadence   int
	warmup    int
	growRatio float64
	slowBlend float64
	fastBlend float64

	g0     float64
	primed bool
	dt     float64
	dx, dy *mat.Dense
}

func NewAdaptiveStep(base, max float64, n int) *AdaptiveStep {
	return &AdaptiveStep{
		base:      base,
		max:       max,
		cadence:   5,
		warmup:    50,
		growRatio: 1.5,
		slowBlend: 0.1,
		fastBlend: 0.5,
		dt:        base,
		dx:        mat.NewDense(n, n, nil),
		dy:        mat.NewDense(n, n, nil),
	}
}

// Due reports whether iteration it is a consultation point.
func (a *AdaptiveStep) Due(it int) bool {
	return it >= a.warmup && it%a.cadence == 0
}

// Current returns the step in effect.
func (a *AdaptiveStep) Current() float64 { return a.dt }

// Propose updates the step from the potential mu sampled with spacing h
// and reports whether it changed.
func (a *AdaptiveStep) Propose(mu *mat.Dense, h float64) (float64, bool) {
	g := metrics.GradientRMS(a.dx, a.dy, mu, h)
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return a.dt, false
	}
	if !a.primed {
		a.g0, a.primed = g, true
	}
	cand := a.max
	if g > 0 {
		cand = clamp(a.base*(a.g0/g), a.base, a.max)
	}
	w := a.fastBlend
	if cand/a.dt > a.growRatio {
		w = a.slowBlend
	}
	next := clamp(a.dt+w*(cand-a.dt), a.base, a.max)
	changed := next != a.dt
	a.dt = next
	return next, changed
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
