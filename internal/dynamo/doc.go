// Package dynamo provides the core data types shared by the phase-field solver.
//
// The package defines the primitives that flow between the numerical kernel,
// the diagnostics and the run loop:
//
//   - [History]: append-only, columnar time series of per-step diagnostics
//   - [Record]: one row of the history
//   - [StopReason]: why a run stopped advancing
//   - [ValidateField]: shape and domain check for concentration fields
//
// # Errors
//
// Domain errors are sentinel values ([ErrShapeMismatch], [ErrDomainViolation],
// [ErrConfiguration], ...) meant to be matched with errors.Is. Failures that
// happen inside the step loop are wrapped in a [SimulationError] carrying the
// step index and elapsed time.
//
// # Thread Safety
//
// None of the types here are safe for concurrent mutation. A History is owned
// by exactly one solver; readers must not observe it while a solve is running.
package dynamo
