package physics

import (
	"fmt"
	"math"
)

// Reference constants for 12.5 mol% Na2O-SiO2.
const (
	GasConstant   = 0.0083144626181532 // kJ/(mol K)
	Avogadro      = 6.02214076e23
	MolarVolume   = 25.13e6 // µm³/mol
	TuningB       = 12.86
	KappaScale    = 105.1939
	DefaultTemp   = 923.15
	DefaultKappa0 = 30.0
)

// A0 is the zeroth Redlich-Kister coefficient (kJ/mol) at temperature t (K).
func A0(t float64) float64 { return 186.0575 - 0.3654*t }

// A1 is the first Redlich-Kister coefficient (kJ/mol) at temperature t (K).
func A1(t float64) float64 { return 43.7207 - 0.1401*t }

// Diffusivity is the interdiffusion coefficient D(T) in µm²/s. It is negative
// inside the spinodal.
func Diffusivity(r, t float64) float64 {
	return -3.474e-4 * math.Exp(-272.4/(r*t)) * 1e12
}

// MaterialInput is the raw physical input a Material is derived from.
type MaterialInput struct {
	N         int
	L         float64
	Temp      float64
	R         float64
	B         float64
	NA        float64
	Vmm       float64
	KappaBase float64
	Mobility  float64 // 0 derives M from D(T)
	A0, A1    *float64
	A0Factor  float64
	A1Factor  float64
}

// Material holds the constants derived once per run.
type Material struct {
	N      int
	Am     float64
	Amr    float64
	RT     float64
	BRT    float64
	B      float64
	A0, A1 float64
	Kappa  float64
	Eps2   float64
	Delx   float64
	Delx2  float64
	M      float64
}

func NewMaterial(in MaterialInput) (*Material, error) {
	if in.N < 2 {
		return nil, fmt.Errorf("physics: grid needs at least 2 points, got %d", in.N)
	}
	if in.Temp <= 0 || in.R <= 0 {
		return nil, fmt.Errorf("physics: temperature and gas constant must be positive")
	}
	m := &Material{N: in.N, B: in.B}
	m.Am = math.Pow(in.Vmm, 2.0/3.0) * math.Pow(in.NA, -1.0/3.0)
	m.Amr = 1 / m.Am
	m.RT = in.R * in.Temp
	m.BRT = in.B * m.RT

	m.A0, m.A1 = A0(in.Temp), A1(in.Temp)
	if in.A0 != nil {
		m.A0 = *in.A0
	}
	if in.A1 != nil {
		m.A1 = *in.A1
	}
	m.A0 *= factor(in.A0Factor)
	m.A1 *= factor(in.A1Factor)

	m.Kappa = in.KappaBase / KappaScale
	m.Eps2 = m.Kappa * m.Kappa
	m.Delx = in.L / float64(in.N-1)
	m.Delx2 = m.Delx * m.Delx

	m.M = in.Mobility
	if m.M == 0 {
		m.M = math.Abs(Diffusivity(in.R, in.Temp)) / m.RT
	}
	if m.Kappa <= 0 || m.M <= 0 {
		return nil, fmt.Errorf("physics: kappa and mobility must be positive")
	}
	return m, nil
}

func factor(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// TimeFactor converts one step of length delt to rescaled time.
func (m *Material) TimeFactor(delt float64) float64 {
	return delt / (m.M * m.Kappa)
}

// LegacyTimeFactor reproduces the unparenthesized (1/M·kappa)·delt form.
func (m *Material) LegacyTimeFactor(delt float64) float64 {
	return (1 / m.M * m.Kappa) * delt
}

func (m *Material) GetParams() map[string]float64 {
	return map[string]float64{
		"Am": m.Am, "Amr": m.Amr, "RT": m.RT, "BRT": m.BRT,
		"A0": m.A0, "A1": m.A1, "kappa": m.Kappa, "eps2": m.Eps2,
		"delx": m.Delx, "delx2": m.Delx2, "M": m.M,
	}
}
