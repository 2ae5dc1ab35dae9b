package metrics

import (
	"math"

	"github.com/san-kum/spinodal/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Metric accumulates a scalar over the records of one run.
type Metric interface {
	Name() string
	Observe(r dynamo.Record, u *mat.Dense)
	Value() float64
	Reset()
}

// MassDrift tracks the largest deviation of mean(U) from its first value.
// The scheme conserves mass, so this stays at round-off level.
type MassDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift { return &MassDrift{} }

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(_ dynamo.Record, u *mat.Dense) {
	r, c := u.Dims()
	mean := mat.Sum(u) / float64(r*c)
	if m.samples == 0 {
		m.initial = mean
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(mean-m.initial))
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial, m.maxDrift, m.samples = 0, 0, 0
}

// DomainStability is the fraction of observed fields inside (0,1).
type DomainStability struct {
	violations int
	samples    int
}

func NewDomainStability() *DomainStability { return &DomainStability{} }

func (s *DomainStability) Name() string { return "domain_stability" }

func (s *DomainStability) Observe(_ dynamo.Record, u *mat.Dense) {
	s.samples++
	if !dynamo.InDomain(u) {
		s.violations++
	}
}

func (s *DomainStability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *DomainStability) Reset() {
	s.violations, s.samples = 0, 0
}

// PeakE2 records the step at which the gradient energy peaked, a late
// marker of separation.
type PeakE2 struct {
	step int
	max  float64
	seen bool
}

func NewPeakE2() *PeakE2 { return &PeakE2{} }

func (p *PeakE2) Name() string { return "peak_e2_step" }

func (p *PeakE2) Observe(r dynamo.Record, _ *mat.Dense) {
	if !p.seen || r.E2 > p.max {
		p.step, p.max, p.seen = r.Step, r.E2, true
	}
}

func (p *PeakE2) Value() float64 { return float64(p.step) }

func (p *PeakE2) Reset() { *p = PeakE2{} }
