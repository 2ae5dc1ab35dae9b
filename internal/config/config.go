package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/noise"
	"github.com/san-kum/spinodal/internal/physics"
	"github.com/san-kum/spinodal/internal/spectral"
	"gopkg.in/yaml.v3"
)

const (
	DefaultN         = 512
	DefaultL         = 2.0
	DefaultCinit     = 0.875
	DefaultDelt      = 1e-11
	DefaultDeltMax   = 1e-9
	DefaultThreshold = 0.9
	DefaultNtMax     = 1000
	DefaultAmplitude = 0.01
	DefaultSeed      = 2023
)

// Params are the inputs of one run. They do not change while it executes.
type Params struct {
	N            int      `yaml:"n"`
	L            float64  `yaml:"l"`
	Cinit        float64  `yaml:"cinit"`
	Temp         float64  `yaml:"temp"`
	A0           *float64 `yaml:"a0,omitempty"`
	A1           *float64 `yaml:"a1,omitempty"`
	A0Factor     float64  `yaml:"a0_factor"`
	A1Factor     float64  `yaml:"a1_factor"`
	B            float64  `yaml:"b"`
	R            float64  `yaml:"r"`
	NA           float64  `yaml:"na"`
	Vmm          float64  `yaml:"vmm"`
	KappaBase    float64  `yaml:"kappa_base"`
	Mobility     float64  `yaml:"mobility"`
	Delt         float64  `yaml:"delt"`
	DeltMax      float64  `yaml:"delt_max"`
	Threshold    float64  `yaml:"threshold"`
	NtMax        int      `yaml:"ntmax"`
	TimeMax      float64  `yaml:"time_max"`
	FullSim      bool     `yaml:"full_sim"`
	AdaptiveTime bool     `yaml:"adaptive_time"`
	Generator    string   `yaml:"generator"`
	Amplitude    float64  `yaml:"amplitude"`
	Jitter       float64  `yaml:"jitter"`
	Seed         int64    `yaml:"seed"`
	Transform    string   `yaml:"transform"`
	StrictDomain bool     `yaml:"strict_domain"`

	Experiment ExperimentConfig `yaml:"experiment"`
}

// ExperimentConfig drives Monte-Carlo runs over the A0/A1 factors.
type ExperimentConfig struct {
	Runs        int     `yaml:"runs"`
	Source      string  `yaml:"source"`
	ASeed       int64   `yaml:"a_seed"`
	FactorLow   float64 `yaml:"factor_low"`
	FactorHigh  float64 `yaml:"factor_high"`
	Independent bool    `yaml:"independent"`
	Workers     int     `yaml:"workers"`
	File        string  `yaml:"file,omitempty"`
}

func DefaultParams() *Params {
	return &Params{
		N:         DefaultN,
		L:         DefaultL,
		Cinit:     DefaultCinit,
		Temp:      physics.DefaultTemp,
		A0Factor:  1,
		A1Factor:  1,
		B:         physics.TuningB,
		R:         physics.GasConstant,
		NA:        physics.Avogadro,
		Vmm:       physics.MolarVolume,
		KappaBase: physics.DefaultKappa0,
		Delt:      DefaultDelt,
		DeltMax:   DefaultDeltMax,
		Threshold: DefaultThreshold,
		NtMax:     DefaultNtMax,
		Generator: noise.Uniform.String(),
		Amplitude: DefaultAmplitude,
		Seed:      DefaultSeed,
		Transform: spectral.BackendMatrix,
		Experiment: ExperimentConfig{
			Runs:       100,
			Source:     "uniform",
			ASeed:      DefaultSeed,
			FactorLow:  0.995,
			FactorHigh: 1.005,
			Workers:    4,
		},
	}
}

func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultParams()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

func Save(path string, p *Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	c := *p
	if p.A0 != nil {
		v := *p.A0
		c.A0 = &v
	}
	if p.A1 != nil {
		v := *p.A1
		c.A1 = &v
	}
	return &c
}

// Validate checks the invariants the solver relies on. Errors wrap
// dynamo.ErrConfiguration.
func (p *Params) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{dynamo.ErrConfiguration}, args...)...)
	}
	switch {
	case p.N < 2:
		return bad("n must be at least 2, got %d", p.N)
	case !(p.L > 0):
		return bad("l must be positive, got %g", p.L)
	case !(p.Cinit > 0 && p.Cinit < 1):
		return bad("cinit must lie in (0,1), got %g", p.Cinit)
	case !(p.Temp > 0):
		return bad("temp must be positive, got %g", p.Temp)
	case !(p.KappaBase > 0):
		return bad("kappa_base must be positive, got %g", p.KappaBase)
	case p.Mobility < 0:
		return bad("mobility must not be negative, got %g", p.Mobility)
	case !(p.Delt > 0):
		return bad("delt must be positive, got %g", p.Delt)
	case p.AdaptiveTime && p.DeltMax < p.Delt:
		return bad("delt_max %g below delt %g", p.DeltMax, p.Delt)
	case !(p.Threshold > 0 && p.Threshold < 1):
		return bad("threshold must lie in (0,1), got %g", p.Threshold)
	case p.TimeMax <= 0 && p.NtMax < 1:
		return bad("ntmax must be at least 1 without a time limit, got %d", p.NtMax)
	case p.TimeMax < 0 || math.IsNaN(p.TimeMax):
		return bad("time_max must not be negative, got %g", p.TimeMax)
	case p.Amplitude < 0:
		return bad("amplitude must not be negative, got %g", p.Amplitude)
	case !(p.Jitter >= 0 && p.Jitter < 0.1):
		return bad("jitter must lie in [0,0.1), got %g", p.Jitter)
	}
	if _, err := noise.ParseKind(p.Generator); err != nil {
		return bad("%v", err)
	}
	if p.Transform != "" && p.Transform != spectral.BackendMatrix && p.Transform != spectral.BackendFFT {
		return bad("unknown transform %q", p.Transform)
	}
	return nil
}

// Material derives the physical constants of the run.
func (p *Params) Material() (*physics.Material, error) {
	m, err := physics.NewMaterial(physics.MaterialInput{
		N:         p.N,
		L:         p.L,
		Temp:      p.Temp,
		R:         p.R,
		B:         p.B,
		NA:        p.NA,
		Vmm:       p.Vmm,
		KappaBase: p.KappaBase,
		Mobility:  p.Mobility,
		A0:        p.A0,
		A1:        p.A1,
		A0Factor:  p.A0Factor,
		A1Factor:  p.A1Factor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}
	return m, nil
}

// StepBudget is the number of records a run may hold, or 0 when a time
// limit makes it open-ended.
func (p *Params) StepBudget() int {
	if p.TimeMax > 0 {
		return 0
	}
	return p.NtMax
}
