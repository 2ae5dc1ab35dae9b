// Package physics provides the free-energy model of the Na2O-SiO2 melt.
//
// A [Material] is derived once per run from raw inputs and carries the
// constants the step kernel and the diagnostics read:
//
//	m, err := physics.NewMaterial(physics.MaterialInput{N: 512, L: 2, Temp: 923.15, ...})
//	mu := m.ChemicalPotential(0.875)
//
// Logarithms follow the real part of the complex logarithm, so values that
// drift outside (0,1) produce finite numbers rather than NaN.
package physics
