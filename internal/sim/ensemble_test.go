package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/sim"
)

var _ = Describe("Ensemble", func() {
	jobs := func(n int) []sim.Job {
		out := make([]sim.Job, n)
		for i := range out {
			p := smallParams(8, 10)
			p.Seed = int64(100 + i)
			out[i] = sim.Job{ID: i, Params: p}
		}
		return out
	}

	It("runs every job and keeps job order", func() {
		c := metrics.NewCollector()
		e := sim.NewEnsemble(sim.WithWorkers(2), sim.WithCollector(c),
			sim.WithRunMetrics(func() []metrics.Metric { return []metrics.Metric{metrics.NewMassDrift()} }))
		results, err := e.Run(context.Background(), jobs(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(5))
		for i, r := range results {
			Expect(r.ID).To(Equal(i))
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.State.StopReason).To(Equal(dynamo.StopStepLimit))
			Expect(r.State.ComputedSteps).To(Equal(10))
			Expect(r.Metrics).To(HaveKey("mass_drift"))
		}
	})

	It("matches a sequential run", func() {
		js := jobs(3)
		results, err := sim.NewEnsemble(sim.WithWorkers(3)).Run(context.Background(), js)
		Expect(err).NotTo(HaveOccurred())

		s := sim.New(js[1].Params)
		Expect(s.Prepare(nil)).To(Succeed())
		st, err := s.SolveOrResume(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[1].State.History().E()).To(Equal(st.History().E()))
	})

	It("records per-job failures without stopping the others", func() {
		js := jobs(2)
		js[0].Params.Delt = 0
		results, err := sim.NewEnsemble(sim.WithoutFields()).Run(context.Background(), js)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Err).To(MatchError(dynamo.ErrConfiguration))
		Expect(results[1].Err).NotTo(HaveOccurred())
		Expect(results[1].State.Field()).To(BeNil())
		Expect(results[1].State.History().Len()).To(Equal(10))
	})

	It("stops starting jobs once cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results, err := sim.NewEnsemble().Run(ctx, jobs(3))
		Expect(err).To(MatchError(context.Canceled))
		for _, r := range results {
			Expect(r.Err).To(MatchError(context.Canceled))
		}
	})
})
