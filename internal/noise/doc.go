// Package noise generates the random perturbations of the concentration
// field: seeded uniform noise, the portable BSD LCG, a randomized Sobol
// sequence and OpenSimplex noise. An [Initializer] wraps one [Source] for
// both the initial field and per-step jitter.
package noise
