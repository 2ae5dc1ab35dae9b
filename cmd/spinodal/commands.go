package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/spinodal/internal/analysis"
	"github.com/san-kum/spinodal/internal/config"
	"github.com/san-kum/spinodal/internal/experiment"
	"github.com/san-kum/spinodal/internal/export"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/sim"
	"github.com/san-kum/spinodal/internal/spectral"
	"github.com/san-kum/spinodal/internal/storage"
	"github.com/san-kum/spinodal/internal/viz"
	"github.com/spf13/cobra"
)

func runMetrics() []metrics.Metric {
	return []metrics.Metric{metrics.NewMassDrift(), metrics.NewDomainStability(), metrics.NewPeakE2()}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}
	initial, err := loadInitial()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	solver := sim.New(p, sim.WithLogger(logger), sim.WithMetrics(runMetrics()...))
	if err := solver.Prepare(initial); err != nil {
		return err
	}

	logger.Info("running", "n", p.N, "generator", p.Generator, "ntmax", p.NtMax, "time_max", p.TimeMax)
	start := time.Now()
	state := solver.State()
	if updateEvery > 0 {
		for !state.Terminal(p.FullSim) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if state, err = solver.SolveOrResume(updateEvery); err != nil {
				return err
			}
			last, _ := state.History().Last()
			logger.Info("progress", "step", last.Step, "E", last.E, "E2", last.E2, "SA", last.SA)
		}
	} else if state, err = solver.Run(ctx, 0); err != nil {
		return err
	}
	elapsed := time.Since(start)

	values := solver.MetricValues()
	runID, err := st.Save(solver, storage.SaveOptions{Compress: compress, Field: !noField, Metrics: values})
	if err != nil {
		return err
	}

	tau0, detected := state.SeparationStep()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", state.ComputedSteps)
	fmt.Printf("stop: %s\n", state.StopReason)
	fmt.Printf("tau0: %d (detected: %v)\n", tau0, detected)
	fmt.Printf("t0: %.6g s\n", state.SeparationTime())
	fmt.Printf("domain length: %.6g\n", analysis.DomainLength(state.Field(), p.L))
	fmt.Println("\nmetrics:")
	for name, val := range values {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}
	initial, err := loadInitial()
	if err != nil {
		return err
	}

	solver := sim.New(p, sim.WithMetrics(runMetrics()...))
	if err := solver.Prepare(initial); err != nil {
		return err
	}

	final, err := tea.NewProgram(viz.NewModel(solver, initial, frameSteps), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("error running live view: %w", err)
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return m.Err()
	}

	if saveLive {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(solver, storage.SaveOptions{Field: true, Metrics: solver.MetricValues()})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}
	initial, err := loadInitial()
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	exp, err := experiment.New(p,
		experiment.WithInitial(initial),
		experiment.WithLogger(logger),
		experiment.WithCollector(collector))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	report, runErr := exp.Run(ctx)
	if report == nil {
		return runErr
	}

	if err := config.Save(outPrefix+"-params.yaml", p); err != nil {
		return err
	}
	if err := writeFile(outPrefix+"-results.csv", func(f *os.File) error {
		return experiment.WriteResults(f, report.Rows)
	}); err != nil {
		return err
	}
	if err := writeFile(outPrefix+"-results-agg.csv", func(f *os.File) error {
		return experiment.WriteAggregate(f, report.Aggregate)
	}); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tCOUNT\tMEAN\tSTD\tMIN\tMAX\tCV")
	for _, s := range report.Aggregate {
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%.6g\t%.6g\t%.4g\n", s.Column, s.Count, s.Mean, s.Std, s.Min, s.Max, s.CV)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs (%d failed) in %v\n", len(report.Rows), report.Failed(), time.Since(start))
	fmt.Println("output files:")
	for _, suffix := range []string{"-params.yaml", "-results.csv", "-results-agg.csv"} {
		fmt.Printf("  %s%s\n", outPrefix, suffix)
	}
	return runErr
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tGEN\tSTEPS\tTAU0\tT0\tSTOP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%.4g\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.N,
			run.Generator,
			run.ComputedSteps,
			run.Tau0,
			run.T0,
			run.StopReason,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	h, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	out, err := viz.PlotHistory(h, columns, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: n=%d generator=%s stop=%s tau0=%d\n\n", meta.ID, meta.N, meta.Generator, meta.StopReason, meta.Tau0)
	fmt.Print(out)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := csvOut
	if path == "" {
		path = runID + "-history.csv"
		if compress {
			path += ".gz"
		}
	}
	if err := storage.New(dataDir).ExportRunCSV(runID, path); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(args[0], jsonOut)
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	col, ok := h.Column(svgColumn)
	if !ok {
		return fmt.Errorf("unknown column %q", svgColumn)
	}
	files := map[string]string{
		runID + "-" + svgColumn + ".svg": export.SeriesToSVG(col, 800, 400, "#00ff88"),
	}
	if u, err := st.LoadField(runID); err == nil {
		files[runID+"-U.svg"] = export.FieldToSVG(u, svgScale)
	} else {
		fmt.Printf("no field stored for %s\n", runID)
	}
	for path, svg := range files {
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN\tNTMAX\tGEN\tADAPTIVE\tFULL_SIM")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%v\t%v\n", name, p.N, p.NtMax, p.Generator, p.AdaptiveTime, p.FullSim)
	}
	return w.Flush()
}

func benchSolver(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tTRANSFORM\tSTEPS\tTIME\tSTEPS/SEC")
	for _, n := range []int{32, 64, 128} {
		for _, backend := range []string{spectral.BackendMatrix, spectral.BackendFFT} {
			p := config.DefaultParams()
			p.N = n
			p.NtMax = benchSteps + 1
			p.FullSim = true
			p.Transform = backend

			solver := sim.New(p)
			if err := solver.Prepare(nil); err != nil {
				return err
			}
			start := time.Now()
			state, err := solver.SolveOrResume(benchSteps)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			steps := state.ComputedSteps - 1
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\n", n, backend, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
