package experiment

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/spinodal/internal/config"
)

func baseParams(runs int, source string) *config.Params {
	p := config.DefaultParams()
	p.N = 8
	p.NtMax = 5
	p.Generator = "lcg"
	p.FullSim = true
	p.Experiment.Runs = runs
	p.Experiment.Source = source
	p.Experiment.Workers = 2
	return p
}

func TestUniformPointsInRange(t *testing.T) {
	cfg := baseParams(10, "uniform").Experiment
	pts, err := uniformPoints(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 10 {
		t.Fatalf("expected 10 points, got %d", len(pts))
	}
	for i, pt := range pts {
		if pt.FacA0 < cfg.FactorLow || pt.FacA0 >= cfg.FactorHigh {
			t.Errorf("point %d: FacA0 %v out of range", i, pt.FacA0)
		}
		if pt.FacA1 < cfg.FactorLow || pt.FacA1 >= cfg.FactorHigh {
			t.Errorf("point %d: FacA1 %v out of range", i, pt.FacA1)
		}
	}

	again, _ := uniformPoints(cfg)
	for i := range pts {
		if pts[i] != again[i] {
			t.Fatalf("point %d not reproducible", i)
		}
	}
}

func TestIndependentPoints(t *testing.T) {
	for _, source := range []string{"uniform", "sobol"} {
		cfg := baseParams(3, source).Experiment
		cfg.Independent = true
		pts, err := NewRegistry().GetSource(source)(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(pts) != 6 {
			t.Fatalf("%s: expected 6 points, got %d", source, len(pts))
		}
		for i := 0; i < 3; i++ {
			if pts[i].FacA1 != 1 {
				t.Errorf("%s: point %d should keep A1", source, i)
			}
			if pts[3+i].FacA0 != 1 {
				t.Errorf("%s: point %d should keep A0", source, 3+i)
			}
		}
	}
}

func TestGridPoints(t *testing.T) {
	cfg := baseParams(10, "grid").Experiment
	pts, err := gridPoints(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 9 {
		t.Fatalf("expected 9 points, got %d", len(pts))
	}
	if pts[0].FacA0 != cfg.FactorLow || pts[0].FacA1 != cfg.FactorLow {
		t.Errorf("first point should be the low corner, got %+v", pts[0])
	}
	if pts[1].FacA0 != cfg.FactorLow || pts[1].FacA1 != pts[3].FacA0 {
		t.Errorf("second point should step A1, got %+v", pts[1])
	}
	if pts[8].FacA0 != cfg.FactorHigh || pts[8].FacA1 != cfg.FactorHigh {
		t.Errorf("last point should be the high corner, got %+v", pts[8])
	}

	cfg.Independent = true
	pts, _ = gridPoints(cfg)
	if len(pts) != 6 {
		t.Fatalf("expected 6 independent points, got %d", len(pts))
	}
}

func TestGridSearchWalk(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{1, 2}, {10, 20, 30}})
	if g.Size() != 6 {
		t.Errorf("expected size 6, got %d", g.Size())
	}
	var sums []float64
	g.Walk(func(v map[string]float64) { sums = append(sums, v["x"]+v["y"]) })
	want := []float64{11, 21, 31, 12, 22, 32}
	if len(sums) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(sums))
	}
	for i := range want {
		if sums[i] != want[i] {
			t.Errorf("visit %d: got %v, want %v", i, sums[i], want[i])
		}
	}
}

func TestFilePoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(path, []byte("-1e4,2e3\n-1.1e4,2.1e3\n-1.2e4,2.2e3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p := baseParams(2, path)
	pts, err := NewRegistry().GetSource(path)(p.Experiment)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 {
		t.Fatalf("expected runs to cap the list at 2, got %d", len(pts))
	}
	if !pts[1].Absolute || pts[1].A0 != -1.1e4 || pts[1].A1 != 2.1e3 {
		t.Errorf("unexpected point %+v", pts[1])
	}

	applied := pts[1].Apply(p)
	if applied.A0 == nil || *applied.A0 != -1.1e4 {
		t.Error("absolute A0 not applied")
	}
	if p.A0 != nil {
		t.Error("Apply must not modify the base parameters")
	}
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(baseParams(4, "grid"))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	report, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(report.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(report.Rows))
	}
	if report.Failed() != 0 {
		t.Fatalf("expected no failures, got %d", report.Failed())
	}
	for i, row := range report.Rows {
		if row.ID != i {
			t.Errorf("row %d has id %d", i, row.ID)
		}
		if row.Steps != 5 {
			t.Errorf("row %d: expected 5 steps, got %d", i, row.Steps)
		}
		if row.Detected {
			t.Errorf("row %d: five steps cannot detect separation", i)
		}
		if row.Tau0 != 4 {
			t.Errorf("row %d: expected fallback tau0 4, got %d", i, row.Tau0)
		}
	}
	if report.Rows[0].A0 == report.Rows[3].A0 {
		t.Error("factors should change A0 between grid corners")
	}

	var tau0 Summary
	for _, s := range report.Aggregate {
		if s.Column == "tau0" {
			tau0 = s
		}
	}
	if tau0.Count != 4 || tau0.Mean != 4 || tau0.Std != 0 {
		t.Errorf("unexpected tau0 summary %+v", tau0)
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, report.Rows); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Errorf("expected header plus 4 lines, got %d", len(recs))
	}
}

func TestExperimentRejectsNoRuns(t *testing.T) {
	if _, err := New(baseParams(0, "uniform")); err == nil {
		t.Error("expected error for zero runs")
	}
}

func TestSummariseSkipsEmpty(t *testing.T) {
	s := summarise("x", nil)
	if s.Count != 0 || !math.IsNaN(s.Mean) {
		t.Errorf("unexpected summary %+v", s)
	}
	s = summarise("x", []float64{1, 3})
	if s.Mean != 2 || s.Min != 1 || s.Max != 3 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.CV-math.Sqrt2/2) > 1e-15 {
		t.Errorf("unexpected cv %v", s.CV)
	}
}
