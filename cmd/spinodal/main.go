package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir     string
	logLevel    string
	configFile  string
	preset      string
	uinitFile   string
	updateEvery int
	frameSteps  int
	compress    bool
	metricsAddr string
	noField     bool
	saveLive    bool
	outPrefix   string
	csvOut      string
	jsonOut     string
	columns     []string
	plotWidth   int
	plotHeight  int
	benchSteps  int
	svgScale    int
	svgColumn   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "spinodal",
		Short:         "Cahn-Hilliard spinodal decomposition simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spinodal", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().IntVar(&updateEvery, "update-every", 0, "log progress every k steps (0: only at the end)")
	runCmd.Flags().BoolVar(&compress, "compress", false, "gzip the exported CSV files")
	runCmd.Flags().BoolVar(&noField, "no-field", false, "do not export the final field")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addParamFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameSteps, "update-every", 10, "steps per frame")
	liveCmd.Flags().BoolVar(&saveLive, "save", false, "store the run on exit")

	experimentCmd := &cobra.Command{
		Use:   "experiment",
		Short: "Monte-Carlo runs over the A0/A1 factors",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}
	addParamFlags(experimentCmd)
	addExperimentFlags(experimentCmd)
	experimentCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	experimentCmd.Flags().StringVarP(&outPrefix, "out", "o", "experiment", "prefix of the result files")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"E", "E2", "SA"}, "history columns to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the history of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&csvOut, "out", "o", "", "output path (default <run_id>-history.csv)")
	exportCSVCmd.Flags().BoolVar(&compress, "compress", false, "gzip the output")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "-", "output path, - for stdout")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the final field and one history column to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().IntVar(&svgScale, "scale", 2, "pixels per grid point")
	renderCmd.Flags().StringVar(&svgColumn, "column", "E2", "history column to draw")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step kernel",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per measurement")

	rootCmd.AddCommand(runCmd, liveCmd, experimentCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, renderCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
