package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/sim"
	"gonum.org/v1/gonum/mat"
)

func lcgParams() *config.Params {
	p := config.DefaultParams()
	p.N = 8
	p.NtMax = 5
	p.Generator = "lcg"
	p.FullSim = true
	return p
}

func smallParams(n, ntmax int) *config.Params {
	p := config.DefaultParams()
	p.N = n
	p.NtMax = ntmax
	p.FullSim = true
	return p
}

var _ = Describe("Solver", func() {
	Describe("before Prepare", func() {
		It("has no state", func() {
			Expect(sim.New(lcgParams()).State()).To(BeNil())
		})

		It("refuses to solve", func() {
			_, err := sim.New(lcgParams()).SolveOrResume(3)
			Expect(errors.Is(err, dynamo.ErrNotPrepared)).To(BeTrue())
		})
	})

	Describe("Prepare", func() {
		It("records step 0", func() {
			s := sim.New(lcgParams())
			Expect(s.Prepare(nil)).To(Succeed())
			st := s.State()
			Expect(st.ComputedSteps).To(Equal(1))
			Expect(st.History().Len()).To(Equal(1))
			Expect(st.StopReason).To(Equal(dynamo.StopNone))
			Expect(st.History().SA()[0]).To(Equal(1.0))
		})

		It("rejects a field of the wrong shape without touching state", func() {
			s := sim.New(lcgParams())
			Expect(s.Prepare(nil)).To(Succeed())
			before := s.State()

			err := s.Prepare(mat.NewDense(7, 8, nil))
			Expect(errors.Is(err, dynamo.ErrShapeMismatch)).To(BeTrue())
			Expect(s.State()).To(BeIdenticalTo(before))
		})

		It("rejects a supplied field outside (0,1)", func() {
			u := mat.NewDense(8, 8, nil)
			err := sim.New(lcgParams()).Prepare(u)
			Expect(errors.Is(err, dynamo.ErrDomainViolation)).To(BeTrue())
		})

		It("rejects invalid configuration", func() {
			p := lcgParams()
			p.Delt = -1
			err := sim.New(p).Prepare(nil)
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("the LCG reference run", func() {
		// Independent reference: orthonormal DCT by definition, one-sided
		// gradients at the edges, N=8, X0=0.875, seed 2023, five records.
		wantE := []float64{
			-97228.63656419005, -97228.636567347, -97228.63657050415,
			-97228.63657366147, -97228.63657681903,
		}
		wantE2 := []float64{
			7.389207747291968e-06, 7.389620942028244e-06, 7.390034162959173e-06,
			7.390447410086317e-06, 7.390860683411546e-06,
		}
		wantRa := []float64{
			0.002740701214755281, 0.0027408026063821672, 0.002740904002000416,
			0.0027410054016104857, 0.002741106805212612,
		}

		for _, backend := range []string{"matrix", "fft"} {
			It("reproduces the energy trace with the "+backend+" transform", func() {
				p := lcgParams()
				p.Transform = backend
				s := sim.New(p)
				Expect(s.Prepare(nil)).To(Succeed())
				st, err := s.SolveOrResume(100)
				Expect(err).NotTo(HaveOccurred())

				Expect(st.ComputedSteps).To(Equal(5))
				Expect(st.StopReason).To(Equal(dynamo.StopStepLimit))
				h := st.History()
				Expect(h.Steps()).To(Equal([]int{0, 1, 2, 3, 4}))
				for i := range wantE {
					Expect(h.E()[i]).To(BeNumerically("~", wantE[i], 1e-7))
					Expect(h.E()[i] - h.E()[0]).To(BeNumerically("~", wantE[i]-wantE[0], 1e-9))
					Expect(h.E2()[i]).To(BeNumerically("~", wantE2[i], 1e-15))
					Expect(h.Ra()[i]).To(BeNumerically("~", wantRa[i], 1e-14))
					Expect(h.SA()[i]).To(Equal(1.0))
				}
				Expect(st.Field().At(0, 0)).To(BeNumerically("~", 0.8804754203560377, 1e-13))
				Expect(st.Field().At(7, 7)).To(BeNumerically("~", 0.8781029554198448, 1e-13))
				Expect(h.DomTime()[1]).To(BeNumerically("~", 0.1260924311445841, 1e-12))
			})
		}
	})

	Describe("SolveOrResume", func() {
		It("is a no-op for n <= 0", func() {
			s := sim.New(lcgParams())
			Expect(s.Prepare(nil)).To(Succeed())
			st, err := s.SolveOrResume(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.ComputedSteps).To(Equal(1))
		})

		It("does nothing after a terminal stop", func() {
			s := sim.New(lcgParams())
			Expect(s.Prepare(nil)).To(Succeed())
			_, err := s.SolveOrResume(10)
			Expect(err).NotTo(HaveOccurred())
			st, err := s.SolveOrResume(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.ComputedSteps).To(Equal(5))
		})

		It("is deterministic for a fixed seed", func() {
			run := func() *mat.Dense {
				s := sim.New(smallParams(16, 30))
				Expect(s.Prepare(nil)).To(Succeed())
				st, err := s.SolveOrResume(30)
				Expect(err).NotTo(HaveOccurred())
				return mat.DenseCopyOf(st.Field())
			}
			Expect(mat.Equal(run(), run())).To(BeTrue())
		})

		DescribeTable("gives the same result for any split",
			func(splits []int) {
				whole := sim.New(smallParams(16, 40))
				Expect(whole.Prepare(nil)).To(Succeed())
				want, err := whole.SolveOrResume(40)
				Expect(err).NotTo(HaveOccurred())

				parts := sim.New(smallParams(16, 40))
				Expect(parts.Prepare(nil)).To(Succeed())
				var got *sim.State
				for _, n := range splits {
					got, err = parts.SolveOrResume(n)
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(got.ComputedSteps).To(Equal(want.ComputedSteps))
				Expect(mat.Equal(got.Field(), want.Field())).To(BeTrue())
				Expect(got.History().E2()).To(Equal(want.History().E2()))
			},
			Entry("halves", []int{20, 20}),
			Entry("uneven", []int{1, 7, 0, 13, 19}),
			Entry("one at a time", []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
				1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}),
		)

		It("conserves mass", func() {
			drift := metrics.NewMassDrift()
			s := sim.New(smallParams(32, 50), sim.WithMetrics(drift))
			Expect(s.Prepare(nil)).To(Succeed())
			_, err := s.SolveOrResume(50)
			Expect(err).NotTo(HaveOccurred())
			Expect(drift.Value()).To(BeNumerically("<", 1e-12))
		})

		It("notifies observers once per step", func() {
			var steps []int
			s := sim.New(lcgParams(), sim.WithObserver(func(st *sim.State) {
				steps = append(steps, st.ComputedSteps-1)
			}))
			Expect(s.Prepare(nil)).To(Succeed())
			_, err := s.SolveOrResume(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal([]int{1, 2, 3, 4}))
		})

		It("stops on the time limit", func() {
			p := smallParams(8, 0)
			s0 := sim.New(smallParams(8, 2))
			Expect(s0.Prepare(nil)).To(Succeed())
			stepTime := s0.Material().TimeFactor(p.Delt)
			// Three steps' worth of rescaled time, in minutes.
			p.TimeMax = 3 * stepTime / 60 * 0.999

			s := sim.New(p)
			Expect(s.Prepare(nil)).To(Succeed())
			st, err := s.Run(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.StopReason).To(Equal(dynamo.StopTimeLimit))
			Expect(st.ComputedSteps).To(Equal(4))
		})

		It("reports domain violations when strict", func() {
			p := smallParams(8, 20)
			p.StrictDomain = true
			p.Jitter = 0.09
			p.Cinit = 0.995
			p.Amplitude = 0
			s := sim.New(p)
			Expect(s.Prepare(nil)).To(Succeed())
			_, err := s.SolveOrResume(20)
			Expect(errors.Is(err, dynamo.ErrDomainViolation)).To(BeTrue())
			var simErr *sim.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(BeNumerically(">=", 1))
		})

		It("propagates out-of-domain values by default", func() {
			p := smallParams(8, 20)
			p.Jitter = 0.09
			p.Cinit = 0.995
			p.Amplitude = 0
			s := sim.New(p)
			Expect(s.Prepare(nil)).To(Succeed())
			st, err := s.SolveOrResume(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.ComputedSteps).To(Equal(20))
		})
	})

	Describe("energy plateau", Ordered, func() {
		plateauParams := func(fullSim bool) *config.Params {
			p := config.DefaultParams()
			p.N = 128
			p.Transform = "fft"
			p.NtMax = 3000
			p.FullSim = fullSim
			return p
		}

		var stopped *sim.State
		var legacyFactor float64

		BeforeAll(func() {
			s := sim.New(plateauParams(false))
			Expect(s.Prepare(nil)).To(Succeed())
			var err error
			stopped, err = s.SolveOrResume(3000)
			Expect(err).NotTo(HaveOccurred())
			legacyFactor = s.Material().LegacyTimeFactor(config.DefaultParams().Delt)
		})

		It("stops at the detected step without full_sim", func() {
			Expect(stopped.StopReason).To(Equal(dynamo.StopEnergyPlateau))
			Expect(stopped.Tau0).To(BeNumerically(">", 100))
			Expect(stopped.Tau0).To(BeNumerically("<", 3000))
			Expect(stopped.ComputedSteps).To(Equal(stopped.Tau0 + 1))
			Expect(stopped.Terminal(false)).To(BeTrue())
		})

		It("detects on a falling energy above the initial level", func() {
			e2 := stopped.History().E2()
			tau0 := stopped.Tau0
			Expect(e2[tau0]).To(BeNumerically("<", e2[tau0-1]))
			Expect(e2[tau0]).To(BeNumerically(">", e2[0]))
		})

		It("records the separation times", func() {
			Expect(stopped.T0).To(Equal(stopped.TimePassed))
			Expect(stopped.LegacyT0).To(Equal(legacyFactor * float64(stopped.Tau0)))
			step, detected := stopped.SeparationStep()
			Expect(detected).To(BeTrue())
			Expect(step).To(Equal(stopped.Tau0))
		})

		It("latches the detection and keeps going with full_sim", func() {
			s := sim.New(plateauParams(true))
			Expect(s.Prepare(nil)).To(Succeed())
			st, err := s.SolveOrResume(3000)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.StopReason).To(Equal(dynamo.StopStepLimit))
			Expect(st.ComputedSteps).To(Equal(3000))
			Expect(st.Tau0).To(Equal(stopped.Tau0))
			Expect(st.T0).To(Equal(stopped.T0))
		})

		It("detects the same step when resumed across it", func() {
			s := sim.New(plateauParams(false))
			Expect(s.Prepare(nil)).To(Succeed())
			first := stopped.Tau0 / 2
			st, err := s.SolveOrResume(first)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Tau0).To(Equal(0))
			Expect(st.StopReason).To(Equal(dynamo.StopNone))

			st, err = s.SolveOrResume(3000)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.StopReason).To(Equal(dynamo.StopEnergyPlateau))
			Expect(st.Tau0).To(Equal(stopped.Tau0))
			Expect(st.History().E2()).To(Equal(stopped.History().E2()))
		})
	})

	Describe("adaptive stepping", func() {
		It("keeps the step within bounds and records it", func() {
			p := smallParams(16, 120)
			p.AdaptiveTime = true
			p.DeltMax = 1e-10
			s := sim.New(p)
			Expect(s.Prepare(nil)).To(Succeed())
			st, err := s.SolveOrResume(120)
			Expect(err).NotTo(HaveOccurred())
			for i, dt := range st.History().Delt() {
				Expect(dt).To(BeNumerically(">=", p.Delt), "step %d", i)
				Expect(dt).To(BeNumerically("<=", p.DeltMax), "step %d", i)
				if i < 50 {
					Expect(dt).To(Equal(p.Delt))
				}
			}
			// The first consultation only fixes the reference gradient.
			Expect(st.History().Delt()[50]).To(Equal(p.Delt))
		})
	})
})
