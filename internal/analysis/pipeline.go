package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
	"github.com/KaramelBytes/unde-cli/internal/regression"
	"github.com/google/uuid"
)

// Visualizer renders the diagnostic figure and returns the written path.
type Visualizer interface {
	Visualize(t *dataset.Table, coords []dataset.Sample) (string, error)
}

// Regressor fits and scores the positioning model.
type Regressor interface {
	Evaluate(coords []dataset.Sample, withMagnitude bool) (*regression.Result, error)
}

// Options gates the optional stages.
type Options struct {
	Separator dataset.SeparatorPolicy
	// The figure is drawn only when coordinate rows exceed MinPlotRows.
	MinPlotRows int
	// The model is fitted only with at least MinUniquePoints distinct points.
	MinUniquePoints int
	SkipPlot        bool
}

// DefaultOptions returns the stock gates: plot above 5 rows, fit from 10 points.
func DefaultOptions() Options {
	return Options{
		Separator:       dataset.DefaultSeparatorPolicy(),
		MinPlotRows:     5,
		MinUniquePoints: 10,
	}
}

// Runner executes load, summary, visualization, regression and scoring once.
type Runner struct {
	Options    Options
	Visualizer Visualizer
	Regressor  Regressor
	Logger     *slog.Logger
}

// Run analyzes the file at path. Stages lacking data are skipped with a
// warning; any other failure, including a panic, aborts the run and removes a
// figure written earlier in the same run.
func (r *Runner) Run(ctx context.Context, path string) (rep *Report, err error) {
	runID := uuid.NewString()
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", runID)

	var figure string
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("analysis aborted: %v", p)
		}
		if err != nil {
			rep = nil
			if figure != "" {
				if rmErr := os.Remove(figure); rmErr == nil {
					log.Debug("removed partial output", "path", figure)
				}
			}
		}
	}()

	log.Info("analysis started", "file", path)
	t, err := dataset.Load(path, r.Options.Separator, log)
	if err != nil {
		log.Error("load failed", "error", err)
		return nil, err
	}

	rep = &Report{
		RunID:     runID,
		File:      path,
		Separator: dataset.SeparatorName(t.Separator),
		Columns:   t.Columns,
		Summary:   Summarize(t),
	}
	for _, a := range t.Attempts {
		at := Attempt{Separator: dataset.SeparatorName(a.Separator), Rows: a.Rows, Columns: a.Columns}
		if a.Err != nil {
			at.Error = a.Err.Error()
		}
		rep.Attempts = append(rep.Attempts, at)
	}
	if !t.HasField {
		rep.warn(log, "field columns bx/by/bz are incomplete; field statistics may be empty")
	}

	coords := t.Coordinates()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case r.Options.SkipPlot:
		rep.FigureSkipped = "disabled"
	case r.Visualizer == nil:
		rep.FigureSkipped = "no renderer configured"
	case len(coords) <= r.Options.MinPlotRows:
		rep.FigureSkipped = fmt.Sprintf("need more than %d coordinate rows, have %d", r.Options.MinPlotRows, len(coords))
		rep.warn(log, "visualization skipped: "+rep.FigureSkipped)
	default:
		log.Info("rendering figure", "rows", len(coords))
		figure, err = r.Visualizer.Visualize(t, coords)
		if err != nil {
			log.Error("visualization failed", "error", err)
			return nil, fmt.Errorf("visualize: %w", err)
		}
		rep.Figure = figure
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unique := rep.Summary.UniquePoints
	switch {
	case r.Regressor == nil:
		rep.RegressionSkipped = "no regressor configured"
	case unique < r.Options.MinUniquePoints:
		rep.RegressionSkipped = fmt.Sprintf("need at least %d unique points, have %d", r.Options.MinUniquePoints, unique)
		rep.warn(log, "regression skipped: "+rep.RegressionSkipped)
	default:
		res, err := r.Regressor.Evaluate(coords, t.HasMagnitude)
		var ide *dataset.InsufficientDataError
		switch {
		case errors.As(err, &ide):
			rep.RegressionSkipped = ide.Error()
			rep.warn(log, "regression skipped: "+ide.Error())
		case err != nil:
			log.Error("regression failed", "error", err)
			return nil, fmt.Errorf("regression: %w", err)
		default:
			rep.Regression = res
			log.Info("regression evaluated", "rmse", res.RMSE, "verdict", string(res.Verdict))
		}
	}

	rep.Readiness = Score(ReadinessInputFrom(t))
	log.Info("analysis finished", "score", rep.Readiness.Total, "verdict", string(rep.Readiness.Verdict))
	return rep, nil
}

func (r *Report) warn(log *slog.Logger, msg string) {
	log.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}
