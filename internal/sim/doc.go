// Package sim runs Cahn-Hilliard simulations.
//
// A [Solver] is prepared once and then advanced in chunks, which lets
// callers redraw a live view between calls:
//
//	s := sim.New(params, sim.WithLogger(logger))
//	if err := s.Prepare(nil); err != nil {
//	    return err
//	}
//	for !s.State().Terminal(params.FullSim) {
//	    st, err := s.SolveOrResume(100)
//	    ...
//	}
//
// [Ensemble] runs many independent solvers on a bounded worker pool.
package sim
