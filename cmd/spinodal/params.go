package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/dynamo"
	"github.com/san-kum/spinodal/internal/noise"
	"github.com/san-kum/spinodal/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// flag values; they only override the preset or config file when set
var pf struct {
	n            int
	l            float64
	cinit        float64
	temp         float64
	a0, a1       float64
	b            float64
	kappaBase    float64
	mobility     float64
	delt         float64
	deltMax      float64
	threshold    float64
	ntmax        int
	timeMax      float64
	fullSim      bool
	adaptiveTime bool
	generator    string
	amplitude    float64
	jitter       float64
	seed         int64
	transform    string
	strictDomain bool

	runs        int
	source      string
	aSeed       int64
	factorLow   float64
	factorHigh  float64
	independent bool
	workers     int
}

func addParamFlags(cmd *cobra.Command) {
	d := config.DefaultParams()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	f.StringVar(&uinitFile, "uinit-file", "", "initial field from CSV (.csv or .csv.gz)")

	f.IntVarP(&pf.n, "n", "N", d.N, "grid points per side")
	f.Float64Var(&pf.l, "l", d.L, "domain length")
	f.Float64Var(&pf.cinit, "cinit", d.Cinit, "mean initial concentration")
	f.Float64Var(&pf.temp, "temp", d.Temp, "temperature in K")
	f.Float64Var(&pf.a0, "a0", 0, "override A0(temp)")
	f.Float64Var(&pf.a1, "a1", 0, "override A1(temp)")
	f.Float64Var(&pf.b, "b", d.B, "tuning parameter B")
	f.Float64Var(&pf.kappaBase, "kappa-base", d.KappaBase, "gradient energy base")
	f.Float64Var(&pf.mobility, "mobility", d.Mobility, "mobility M (0: derived from diffusivity)")
	f.Float64Var(&pf.delt, "delt", d.Delt, "time step")
	f.Float64Var(&pf.deltMax, "delt-max", d.DeltMax, "largest adaptive time step")
	f.Float64Var(&pf.threshold, "threshold", d.Threshold, "SA threshold")
	f.IntVar(&pf.ntmax, "ntmax", d.NtMax, "step limit")
	f.Float64Var(&pf.timeMax, "time-max", d.TimeMax, "time limit in minutes (overrides ntmax)")
	f.BoolVar(&pf.fullSim, "full-sim", d.FullSim, "keep running after separation")
	f.BoolVar(&pf.adaptiveTime, "adaptive-time", d.AdaptiveTime, "adapt delt to the chemical potential gradient")
	f.StringVar(&pf.generator, "generator", d.Generator, "noise generator ("+strings.Join(noise.Names(), ", ")+")")
	f.Float64Var(&pf.amplitude, "amplitude", d.Amplitude, "initial noise amplitude")
	f.Float64Var(&pf.jitter, "jitter", d.Jitter, "per-step noise amplitude")
	f.Int64Var(&pf.seed, "seed", d.Seed, "random seed")
	f.StringVar(&pf.transform, "transform", d.Transform, "DCT backend (matrix, fft)")
	f.BoolVar(&pf.strictDomain, "strict-domain", d.StrictDomain, "fail when U leaves (0,1)")
}

func addExperimentFlags(cmd *cobra.Command) {
	d := config.DefaultParams().Experiment
	f := cmd.Flags()
	f.IntVar(&pf.runs, "runs", d.Runs, "number of runs")
	f.StringVar(&pf.source, "source", d.Source, "factor source (uniform, sobol, grid, file or a CSV path)")
	f.Int64Var(&pf.aSeed, "a-seed", d.ASeed, "seed of the factor source")
	f.Float64Var(&pf.factorLow, "factor-low", d.FactorLow, "lowest factor")
	f.Float64Var(&pf.factorHigh, "factor-high", d.FactorHigh, "highest factor")
	f.BoolVar(&pf.independent, "independent", d.Independent, "vary A0 and A1 one at a time")
	f.IntVar(&pf.workers, "workers", d.Workers, "parallel runs")
}

// loadParams layers defaults, preset, config file and changed flags, in
// that order.
func loadParams(cmd *cobra.Command) (*config.Params, error) {
	p := config.DefaultParams()
	if preset != "" {
		p = config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		p = cfg
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Lookup(name) != nil && f.Changed(name) {
			apply()
		}
	}
	set("n", func() { p.N = pf.n })
	set("l", func() { p.L = pf.l })
	set("cinit", func() { p.Cinit = pf.cinit })
	set("temp", func() { p.Temp = pf.temp })
	set("a0", func() { v := pf.a0; p.A0 = &v })
	set("a1", func() { v := pf.a1; p.A1 = &v })
	set("b", func() { p.B = pf.b })
	set("kappa-base", func() { p.KappaBase = pf.kappaBase })
	set("mobility", func() { p.Mobility = pf.mobility })
	set("delt", func() { p.Delt = pf.delt })
	set("delt-max", func() { p.DeltMax = pf.deltMax })
	set("threshold", func() { p.Threshold = pf.threshold })
	set("ntmax", func() { p.NtMax = pf.ntmax })
	set("time-max", func() { p.TimeMax = pf.timeMax })
	set("full-sim", func() { p.FullSim = pf.fullSim })
	set("adaptive-time", func() { p.AdaptiveTime = pf.adaptiveTime })
	set("generator", func() { p.Generator = pf.generator })
	set("amplitude", func() { p.Amplitude = pf.amplitude })
	set("jitter", func() { p.Jitter = pf.jitter })
	set("seed", func() { p.Seed = pf.seed })
	set("transform", func() { p.Transform = pf.transform })
	set("strict-domain", func() { p.StrictDomain = pf.strictDomain })

	set("runs", func() { p.Experiment.Runs = pf.runs })
	set("source", func() { p.Experiment.Source = pf.source })
	set("a-seed", func() { p.Experiment.ASeed = pf.aSeed })
	set("factor-low", func() { p.Experiment.FactorLow = pf.factorLow })
	set("factor-high", func() { p.Experiment.FactorHigh = pf.factorHigh })
	set("independent", func() { p.Experiment.Independent = pf.independent })
	set("workers", func() { p.Experiment.Workers = pf.workers })

	if err := checkCLIBounds(p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// checkCLIBounds applies the tighter ranges accepted from the command line.
func checkCLIBounds(p *config.Params) error {
	switch {
	case p.Cinit < 0.85:
		return fmt.Errorf("%w: cinit must be at least 0.85, got %g", dynamo.ErrConfiguration, p.Cinit)
	case p.Threshold > 0.95:
		return fmt.Errorf("%w: threshold must be at most 0.95, got %g", dynamo.ErrConfiguration, p.Threshold)
	}
	return nil
}

func loadInitial() (*mat.Dense, error) {
	if uinitFile == "" {
		return nil, nil
	}
	u, err := storage.ReadMatrixCSV(uinitFile)
	if err != nil {
		return nil, fmt.Errorf("uinit file: %w", err)
	}
	return u, nil
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	}), nil
}
