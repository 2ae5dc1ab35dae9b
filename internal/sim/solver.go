package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/integrators"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/noise"
	"github.com/san-kum/spinodal/internal/physics"
	"github.com/san-kum/spinodal/internal/spectral"
	"gonum.org/v1/gonum/mat"
)

// openHistory is the initial history capacity when only a time limit
// bounds the run.
const openHistory = 1024

// Observer is called after every recorded step.
type Observer func(*State)

type Option func(*Solver)

func WithLogger(l *log.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithObserver(fn Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, fn) }
}

// WithMetrics attaches run-level metrics. They are reset by Prepare.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(s *Solver) { s.metrics = append(s.metrics, ms...) }
}

// Solver integrates one run. Prepare sets it up and records step 0;
// SolveOrResume advances it in chunks. A Solver is not safe for concurrent
// use.
type Solver struct {
	params    *config.Params
	logger    *log.Logger
	observers []Observer
	metrics   []metrics.Metric

	material *physics.Material
	coef     *spectral.Coefficients
	engine   *integrators.SemiImplicit
	diag     *metrics.Diagnostics
	ctrl     *integrators.AdaptiveStep
	detector StopDetector
	latched  bool

	state *State
}

func New(p *config.Params, opts ...Option) *Solver {
	s := &Solver{params: p.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

func (s *Solver) Params() *config.Params { return s.params }

// Material is nil before Prepare.
func (s *Solver) Material() *physics.Material { return s.material }

// State is nil before Prepare.
func (s *Solver) State() *State { return s.state }

// Prepare builds the run and records step 0. initial may be nil, in which
// case the configured generator produces the field. Nothing is modified
// when an error is returned.
func (s *Solver) Prepare(initial *mat.Dense) error {
	p := s.params
	if err := p.Validate(); err != nil {
		return err
	}
	if initial != nil {
		if err := dynamo.ValidateField(initial, p.N); err != nil {
			return err
		}
	}
	m, err := p.Material()
	if err != nil {
		return err
	}
	kind, err := noise.ParseKind(p.Generator)
	if err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}
	gen, err := noise.NewInitializer(kind, p.Seed, p.Cinit, p.Amplitude)
	if err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}
	tr, err := spectral.NewTransform(p.Transform, p.N)
	if err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}

	u := initial
	if u == nil {
		u = gen.Field(p.N)
		if err := dynamo.ValidateField(u, p.N); err != nil {
			return err
		}
	}

	coef := spectral.NewCoefficients(p.N, m.Kappa, p.Delt, m.Delx2)
	engine := integrators.NewSemiImplicit(m, coef, tr)
	if p.Jitter > 0 {
		engine.SetJitter(p.Jitter, gen)
	}
	if err := engine.Load(u); err != nil {
		return err
	}

	s.material, s.coef, s.engine = m, coef, engine
	s.diag = metrics.NewDiagnostics(m, p.Threshold)
	s.ctrl = nil
	if p.AdaptiveTime {
		s.ctrl = integrators.NewAdaptiveStep(p.Delt, p.DeltMax, p.N)
	}
	s.detector.Reset()
	s.latched = false

	capacity := p.StepBudget()
	if capacity == 0 {
		capacity = openHistory
	}
	st := &State{
		field:         engine.Field(),
		hat:           engine.Spectral(),
		history:       dynamo.NewHistory(capacity),
		ComputedSteps: 1,
		Delt:          p.Delt,
	}
	rec := s.diag.Compute(st.field, 0, 0, p.Delt)
	st.history.Append(rec)
	s.state = st

	for _, mt := range s.metrics {
		mt.Reset()
		mt.Observe(rec, st.field)
	}
	s.logger.Debug("prepared",
		"n", p.N, "generator", kind.String(), "transform", p.Transform, "kappa", m.Kappa, "M", m.M,
		"E", rec.E, "E2", rec.E2)
	return nil
}

// SolveOrResume advances up to n steps. It stops early on a terminal stop
// reason, and does nothing for n ≤ 0 or once a terminal reason is set.
func (s *Solver) SolveOrResume(n int) (*State, error) {
	st := s.state
	if st == nil {
		return nil, dynamo.ErrNotPrepared
	}
	p := s.params
	if n <= 0 || st.Terminal(p.FullSim) {
		return st, nil
	}
	if s.limitReached() {
		return st, nil
	}

	for k := 0; k < n; k++ {
		it := st.ComputedSteps
		if s.ctrl != nil && s.ctrl.Due(it) {
			if dt, changed := s.ctrl.Propose(s.engine.ChemicalPotential(), s.material.Delx); changed {
				s.coef.Update(s.material.Kappa, dt)
				s.logger.Debug("time step adjusted", "step", it, "from", st.Delt, "to", dt)
				st.Delt = dt
			}
		}

		if err := s.engine.Step(); err != nil {
			return st, &SimulationError{Step: it, Time: st.TimePassed, Wrapped: err}
		}
		elapsed := st.TimePassed + s.material.TimeFactor(st.Delt)
		rec := s.diag.Compute(st.field, it, elapsed, st.Delt)
		if p.StrictDomain && (!dynamo.InDomain(st.field) || !rec.Valid()) {
			return st, &SimulationError{Step: it, Time: elapsed, Wrapped: dynamo.ErrDomainViolation}
		}

		st.history.Append(rec)
		st.ComputedSteps++
		st.TimePassed = elapsed
		for _, mt := range s.metrics {
			mt.Observe(rec, st.field)
		}
		for _, obs := range s.observers {
			obs(st)
		}

		if !s.latched && s.detector.Check(st.history.E2(), it) {
			st.Tau0 = it
			st.T0 = elapsed
			st.LegacyT0 = s.material.LegacyTimeFactor(p.Delt) * float64(it)
			st.StopReason = dynamo.StopEnergyPlateau
			s.logger.Info("separation detected", "tau0", it, "t0", st.T0)
			if !p.FullSim {
				return st, nil
			}
			s.latched = true
		}
		if s.limitReached() {
			return st, nil
		}
	}
	return st, nil
}

func (s *Solver) limitReached() bool {
	st, p := s.state, s.params
	switch {
	case p.TimeMax > 0 && st.TimePassed >= p.TimeMax*60:
		st.StopReason = dynamo.StopTimeLimit
	case p.TimeMax <= 0 && st.ComputedSteps >= p.NtMax:
		st.StopReason = dynamo.StopStepLimit
	default:
		return false
	}
	s.logger.Info("run finished", "reason", st.StopReason, "steps", st.ComputedSteps, "time", st.TimePassed)
	return true
}

// Run advances the prepared solver in chunks of chunk steps until a
// terminal stop reason is reached or ctx is done.
func (s *Solver) Run(ctx context.Context, chunk int) (*State, error) {
	if s.state == nil {
		return nil, dynamo.ErrNotPrepared
	}
	if chunk <= 0 {
		chunk = 100
	}
	for !s.state.Terminal(s.params.FullSim) {
		if err := ctx.Err(); err != nil {
			return s.state, err
		}
		if _, err := s.SolveOrResume(chunk); err != nil {
			return s.state, err
		}
	}
	return s.state, nil
}

// MetricValues returns the attached metrics by name.
func (s *Solver) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, mt := range s.metrics {
		out[mt.Name()] = mt.Value()
	}
	return out
}
