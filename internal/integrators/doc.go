// Package integrators advances the concentration field in time.
//
// [SemiImplicit] is the spectral step kernel; [AdaptiveStep] optionally
// resizes its time step between calls.
package integrators
