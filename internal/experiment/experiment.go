package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/sim"
	"github.com/san-kum/spinodal/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Experiment runs the same base parameters many times with perturbed
// A0/A1, all runs sharing one initial field.
type Experiment struct {
	base      *config.Params
	cfg       config.ExperimentConfig
	registry  *Registry
	initial   *mat.Dense
	logger    *log.Logger
	collector *metrics.Collector
}

type Option func(*Experiment)

func WithInitial(u *mat.Dense) Option {
	return func(e *Experiment) { e.initial = u }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithCollector(c *metrics.Collector) Option {
	return func(e *Experiment) { e.collector = c }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(base *config.Params, opts ...Option) (*Experiment, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	cfg := base.Experiment
	switch {
	case cfg.Runs < 1:
		return nil, fmt.Errorf("%w: experiment runs must be at least 1, got %d", dynamo.ErrConfiguration, cfg.Runs)
	case !(cfg.FactorLow > 0 && cfg.FactorLow <= cfg.FactorHigh):
		return nil, fmt.Errorf("%w: bad factor range [%g,%g]", dynamo.ErrConfiguration, cfg.FactorLow, cfg.FactorHigh)
	}
	e := &Experiment{base: base.Clone(), cfg: cfg, registry: NewRegistry()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Points resolves the configured source.
func (e *Experiment) Points() ([]Point, error) {
	return e.registry.GetSource(e.cfg.Source)(e.cfg)
}

// Jobs builds one ensemble job per point.
func (e *Experiment) Jobs() ([]sim.Job, []Point, error) {
	pts, err := e.Points()
	if err != nil {
		return nil, nil, fmt.Errorf("experiment source %q: %w", e.cfg.Source, err)
	}
	jobs := make([]sim.Job, len(pts))
	for i, pt := range pts {
		jobs[i] = sim.Job{ID: i, Params: pt.Apply(e.base), Initial: e.initial}
	}
	return jobs, pts, nil
}

// Run executes every point and collects one row per run. Failed runs keep
// their row with Err set and are left out of the aggregate.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	jobs, pts, err := e.Jobs()
	if err != nil {
		return nil, err
	}
	if e.logger != nil {
		e.logger.Info("experiment starting", "runs", len(jobs), "source", e.cfg.Source, "independent", e.cfg.Independent)
	}

	opts := []sim.EnsembleOption{
		sim.WithWorkers(e.cfg.Workers),
		sim.WithoutFields(),
		sim.WithRunMetrics(func() []metrics.Metric {
			return []metrics.Metric{metrics.NewPeakE2(), metrics.NewMassDrift()}
		}),
	}
	if e.logger != nil {
		opts = append(opts, sim.WithEnsembleLogger(e.logger))
	}
	if e.collector != nil {
		opts = append(opts, sim.WithCollector(e.collector))
	}

	results, err := sim.NewEnsemble(opts...).Run(ctx, jobs)
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = newRow(res, pts[i])
	}
	report := &Report{Rows: rows, Aggregate: Aggregate(rows)}
	if err != nil {
		return report, err
	}
	if e.logger != nil {
		e.logger.Info("experiment finished", "runs", len(rows), "failed", report.Failed())
	}
	return report, nil
}

func newRow(res sim.Result, pt Point) Row {
	row := Row{ID: res.ID, FacA0: math.NaN(), FacA1: math.NaN()}
	if !pt.Absolute {
		row.FacA0, row.FacA1 = pt.FacA0, pt.FacA1
	}
	if m, err := res.Params.Material(); err == nil {
		row.A0, row.A1 = m.A0, m.A1
	}
	if res.Err != nil {
		row.Err = res.Err
		return row
	}
	st := res.State
	row.Tau0, row.Detected = st.SeparationStep()
	row.T0 = st.SeparationTime()
	row.TSep = floats.MaxIdx(st.History().E2())
	row.Steps = st.ComputedSteps
	row.MassDrift = res.Metrics["mass_drift"]
	return row
}

// LoadInitial reads a shared initial field for WithInitial.
func LoadInitial(path string) (*mat.Dense, error) {
	return storage.ReadMatrixCSV(path)
}

func filePoints(path string, runs int) ([]Point, error) {
	a, err := storage.ReadMatrixCSV(path)
	if err != nil {
		return nil, err
	}
	r, c := a.Dims()
	if c < 2 {
		return nil, fmt.Errorf("%s: want A0,A1 columns, got %d", path, c)
	}
	if runs > 0 && runs < r {
		r = runs
	}
	pts := make([]Point, r)
	for i := range pts {
		pts[i] = Point{A0: a.At(i, 0), A1: a.At(i, 1), Absolute: true}
	}
	return pts, nil
}
