package experiment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/noise"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Point is one run of an experiment: multiplicative factors on A0 and A1,
// or absolute values when Absolute is set.
type Point struct {
	FacA0, FacA1 float64
	A0, A1       float64
	Absolute     bool
}

// Apply sets the point on a copy of p.
func (pt Point) Apply(p *config.Params) *config.Params {
	c := p.Clone()
	if pt.Absolute {
		a0, a1 := pt.A0, pt.A1
		c.A0, c.A1 = &a0, &a1
		c.A0Factor, c.A1Factor = 1, 1
		return c
	}
	c.A0Factor, c.A1Factor = pt.FacA0, pt.FacA1
	return c
}

// Source generates the points of an experiment.
type Source func(cfg config.ExperimentConfig) ([]Point, error)

type Registry struct {
	sources map[string]Source
}

func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}
	r.sources["uniform"] = uniformPoints
	r.sources["sobol"] = sobolPoints
	r.sources["grid"] = gridPoints
	r.sources["file"] = func(cfg config.ExperimentConfig) ([]Point, error) {
		if cfg.File == "" {
			return nil, fmt.Errorf("source file needs a path")
		}
		return filePoints(cfg.File, cfg.Runs)
	}
	return r
}

// Register adds or replaces a named source.
func (r *Registry) Register(name string, s Source) {
	r.sources[name] = s
}

// GetSource resolves name. Names that are not registered are read as a CSV
// file of absolute A0,A1 values.
func (r *Registry) GetSource(name string) Source {
	if fn, ok := r.sources[name]; ok {
		return fn
	}
	return func(cfg config.ExperimentConfig) ([]Point, error) {
		return filePoints(name, cfg.Runs)
	}
}

func (r *Registry) ListSources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// randomPoints turns a runs×2 factor table into points. In independent mode
// A0 varies in the first half and A1 in the second.
func randomPoints(fac [][2]float64, independent bool) []Point {
	if !independent {
		pts := make([]Point, len(fac))
		for i, f := range fac {
			pts[i] = Point{FacA0: f[0], FacA1: f[1]}
		}
		return pts
	}
	pts := make([]Point, 2*len(fac))
	for i, f := range fac {
		pts[i] = Point{FacA0: f[0], FacA1: 1}
		pts[len(fac)+i] = Point{FacA0: 1, FacA1: f[1]}
	}
	return pts
}

func uniformPoints(cfg config.ExperimentConfig) ([]Point, error) {
	dist := distuv.Uniform{
		Min: cfg.FactorLow,
		Max: cfg.FactorHigh,
		Src: rand.NewPCG(uint64(cfg.ASeed), 0x9e3779b97f4a7c15),
	}
	fac := make([][2]float64, cfg.Runs)
	for i := range fac {
		fac[i][0] = dist.Rand()
		fac[i][1] = dist.Rand()
	}
	return randomPoints(fac, cfg.Independent), nil
}

// sobolPoints draws the first Runs points of a 2^m point set, m the
// smallest power covering Runs.
func sobolPoints(cfg config.ExperimentConfig) ([]Point, error) {
	m := int(math.Ceil(math.Log2(float64(cfg.Runs))))
	raw := noise.SobolPoints(1<<m, 2, cfg.ASeed)
	span := cfg.FactorHigh - cfg.FactorLow
	fac := make([][2]float64, cfg.Runs)
	for i := range fac {
		fac[i][0] = cfg.FactorLow + span*raw.At(i, 0)
		fac[i][1] = cfg.FactorLow + span*raw.At(i, 1)
	}
	return randomPoints(fac, cfg.Independent), nil
}

// gridPoints covers floor(sqrt(Runs)) factors per axis. Independent mode
// walks each axis alone.
func gridPoints(cfg config.ExperimentConfig) ([]Point, error) {
	nx := int(math.Floor(math.Sqrt(float64(cfg.Runs))))
	if nx < 1 {
		return nil, fmt.Errorf("grid needs at least one run")
	}
	axis := make([]float64, nx)
	if nx == 1 {
		axis[0] = cfg.FactorLow
	} else {
		floats.Span(axis, cfg.FactorLow, cfg.FactorHigh)
	}

	if cfg.Independent {
		pts := make([]Point, 0, 2*nx)
		for _, v := range axis {
			pts = append(pts, Point{FacA0: v, FacA1: 1})
		}
		for _, v := range axis {
			pts = append(pts, Point{FacA0: 1, FacA1: v})
		}
		return pts, nil
	}

	grid := NewGridSearch([]string{"a0", "a1"}, [][]float64{axis, axis})
	pts := make([]Point, 0, nx*nx)
	grid.Walk(func(v map[string]float64) {
		pts = append(pts, Point{FacA0: v["a0"], FacA1: v["a1"]})
	})
	return pts, nil
}
