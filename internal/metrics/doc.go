// Package metrics computes per-step diagnostics of the concentration field
// and accumulates run-level metrics.
//
// [Diagnostics] produces one [dynamo.Record] per step (energies, SA, Ra,
// L2, PS, domain time). [Metric] implementations such as [MassDrift]
// observe those records over a run, and [Collector] exports ensemble
// progress to Prometheus.
package metrics
