package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/KaramelBytes/unde-cli/internal/analysis"
	"github.com/KaramelBytes/unde-cli/internal/chart"
	"github.com/KaramelBytes/unde-cli/internal/regression"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	anaOutputPath string
	anaSeparator  string
	anaFallback   string
	anaMinColumns int
	anaDPI        int
	anaFormat     string
	anaNoPlot     bool
	anaSeed       uint64
	anaNeighbors  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a magnetic survey CSV and score its readiness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		// Flags override config only when set
		run := *c
		f := cmd.Flags()
		if f.Changed("output") {
			run.OutputPath = anaOutputPath
		}
		if f.Changed("separator") {
			run.Separator = anaSeparator
		}
		if f.Changed("separator-fallback") {
			run.SeparatorFallback = anaFallback
		}
		if f.Changed("min-columns") {
			run.MinColumns = anaMinColumns
		}
		if f.Changed("dpi") {
			run.DPI = anaDPI
		}
		if f.Changed("format") {
			run.Format = anaFormat
		}
		if f.Changed("seed") {
			run.Seed = anaSeed
		}
		if f.Changed("neighbors") {
			run.Neighbors = anaNeighbors
		}
		if err := run.Validate(); err != nil {
			return err
		}
		policy, err := run.SeparatorPolicy()
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		opt.Separator = policy
		opt.MinPlotRows = run.MinPlotRows
		opt.MinUniquePoints = run.MinUniquePoints
		opt.SkipPlot = anaNoPlot

		fig := chart.DefaultFigure()
		fig.Path = run.OutputPath
		fig.DPI = run.DPI
		fig.Width = vg.Length(run.PlotWidthIn) * vg.Inch
		fig.Height = vg.Length(run.PlotHeightIn) * vg.Inch

		ropt := regression.DefaultOptions()
		ropt.Neighbors = run.Neighbors
		ropt.TestRatio = run.TestRatio
		ropt.Seed = run.Seed
		ropt.MinSplitSamples = run.MinSplitSamples
		ropt.MinTrainingRows = run.MinTrainingRows

		runner := &analysis.Runner{
			Options:    opt,
			Visualizer: fig,
			Regressor:  regression.Evaluator{Options: ropt},
			Logger:     logger,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		rep, err := runner.Run(ctx, args[0])
		if err != nil {
			return err
		}
		out, err := rep.Render(run.Format)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", chart.DefaultFile, "path of the PNG figure")
	analyzeCmd.Flags().StringVar(&anaSeparator, "separator", "auto", "field separator: auto | ';' | ',' | 'tab'")
	analyzeCmd.Flags().StringVar(&anaFallback, "separator-fallback", "last", "parse kept when no separator yields enough columns: last | widest")
	analyzeCmd.Flags().IntVar(&anaMinColumns, "min-columns", 5, "auto-detection accepts a separator yielding more than this many columns")
	analyzeCmd.Flags().IntVar(&anaDPI, "dpi", 300, "figure resolution")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "text", "report format: text | json | yaml")
	analyzeCmd.Flags().BoolVar(&anaNoPlot, "no-plot", false, "skip the figure")
	analyzeCmd.Flags().Uint64Var(&anaSeed, "seed", 42, "random seed of the train/test split")
	analyzeCmd.Flags().IntVar(&anaNeighbors, "neighbors", 5, "neighbours used by the positioning model")
}
