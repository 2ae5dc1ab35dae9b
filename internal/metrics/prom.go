package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exports ensemble progress.
type Collector struct {
	registry  *prometheus.Registry
	started   prometheus.Counter
	completed *prometheus.CounterVec
	failed    prometheus.Counter
	steps     prometheus.Counter
	active    prometheus.Gauge
	tau0      prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spinodal",
			Name:      "runs_started_total",
			Help:      "Solver runs started.",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spinodal",
			Name:      "runs_completed_total",
			Help:      "Solver runs completed, by stop reason.",
		}, []string{"reason"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spinodal",
			Name:      "runs_failed_total",
			Help:      "Solver runs that returned an error.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spinodal",
			Name:      "steps_total",
			Help:      "Time steps computed across all runs.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spinodal",
			Name:      "runs_active",
			Help:      "Runs currently executing.",
		}),
		tau0: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spinodal",
			Name:      "separation_step",
			Help:      "Step at which separation was detected.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),
	}
	c.registry.MustRegister(c.started, c.completed, c.failed, c.steps, c.active, c.tau0)
	return c
}

func (c *Collector) RunStarted() {
	c.started.Inc()
	c.active.Inc()
}

// RunFinished records a completed run. tau0 of 0 means no separation.
func (c *Collector) RunFinished(reason string, steps, tau0 int) {
	c.active.Dec()
	c.completed.WithLabelValues(reason).Inc()
	c.steps.Add(float64(steps))
	if tau0 > 0 {
		c.tau0.Observe(float64(tau0))
	}
}

func (c *Collector) RunFailed() {
	c.active.Dec()
	c.failed.Inc()
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
