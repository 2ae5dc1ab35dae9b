package sim

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Job is one independent run of an ensemble.
type Job struct {
	ID      int
	Params  *config.Params
	Initial *mat.Dense
}

// Result carries the final state of a job. Err is set when the run failed;
// other jobs are unaffected.
type Result struct {
	ID      int
	Params  *config.Params
	State   *State
	Metrics map[string]float64
	Err     error
}

// Ensemble runs jobs on a bounded number of workers, each run strictly
// sequential.
type Ensemble struct {
	workers    int
	chunk      int
	logger     *log.Logger
	collector  *metrics.Collector
	metrics    func() []metrics.Metric
	dropFields bool
}

type EnsembleOption func(*Ensemble)

func WithWorkers(n int) EnsembleOption {
	return func(e *Ensemble) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithEnsembleLogger(l *log.Logger) EnsembleOption {
	return func(e *Ensemble) { e.logger = l }
}

func WithCollector(c *metrics.Collector) EnsembleOption {
	return func(e *Ensemble) { e.collector = c }
}

// WithRunMetrics attaches fresh metrics built by fn to every run.
func WithRunMetrics(fn func() []metrics.Metric) EnsembleOption {
	return func(e *Ensemble) { e.metrics = fn }
}

// WithoutFields discards final fields so that only histories and scalars
// are retained across large ensembles.
func WithoutFields() EnsembleOption {
	return func(e *Ensemble) { e.dropFields = true }
}

func NewEnsemble(opts ...EnsembleOption) *Ensemble {
	e := &Ensemble{workers: runtime.NumCPU(), chunk: 500}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes all jobs and returns their results in job order. It returns
// ctx.Err() if the context was cancelled before every job started.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = Result{ID: job.ID, Params: job.Params}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i] = e.runOne(ctx, job)
			return nil
		})
	}
	// Jobs report failures through Result.Err, so Wait never errors.
	_ = g.Wait()
	return results, ctx.Err()
}

func (e *Ensemble) runOne(ctx context.Context, job Job) Result {
	res := Result{ID: job.ID, Params: job.Params}
	var opts []Option
	if e.logger != nil {
		opts = append(opts, WithLogger(e.logger.With("run", job.ID)))
	}
	if e.metrics != nil {
		opts = append(opts, WithMetrics(e.metrics()...))
	}
	if e.collector != nil {
		e.collector.RunStarted()
	}

	s := New(job.Params, opts...)
	err := s.Prepare(job.Initial)
	if err == nil {
		res.State, err = s.Run(ctx, e.chunk)
	}
	res.Metrics = s.MetricValues()
	res.Err = err
	if res.State != nil && e.dropFields {
		res.State.dropFields()
	}

	if e.collector != nil {
		if err != nil {
			e.collector.RunFailed()
		} else {
			e.collector.RunFinished(res.State.StopReason.String(), res.State.ComputedSteps, res.State.Tau0)
		}
	}
	return res
}
