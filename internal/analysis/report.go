package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/unde-cli/internal/regression"
	"github.com/KaramelBytes/unde-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// Attempt is a printable separator detection attempt.
type Attempt struct {
	Separator string `json:"separator" yaml:"separator"`
	Rows      int    `json:"rows" yaml:"rows"`
	Columns   int    `json:"columns" yaml:"columns"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	File      string    `json:"file" yaml:"file"`
	Separator string    `json:"separator" yaml:"separator"`
	Columns   []string  `json:"columns" yaml:"columns"`
	Attempts  []Attempt `json:"attempts" yaml:"attempts"`
	Summary   Summary   `json:"summary" yaml:"summary"`

	Figure        string `json:"figure,omitempty" yaml:"figure,omitempty"`
	FigureSkipped string `json:"figure_skipped,omitempty" yaml:"figure_skipped,omitempty"`

	Regression        *regression.Result `json:"regression,omitempty" yaml:"regression,omitempty"`
	RegressionSkipped string             `json:"regression_skipped,omitempty" yaml:"regression_skipped,omitempty"`

	Readiness Readiness `json:"readiness" yaml:"readiness"`
	Warnings  []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Render formats the report as text, json or yaml.
func (r *Report) Render(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return r.Text(), nil
	case "json":
		b, err := utils.PrettyJSON(r)
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	case "yaml", "yml":
		b, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use text|json|yaml)", format)
	}
}

// Text renders the console report.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("[UNDE DATA ANALYSIS]\n")
	b.WriteString(fmt.Sprintf("File: %s\n", r.File))
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	for _, a := range r.Attempts {
		if a.Error != "" {
			b.WriteString(fmt.Sprintf("✗ separator '%s': %s\n", a.Separator, a.Error))
			continue
		}
		b.WriteString(fmt.Sprintf("• separator '%s': %d rows, %d columns\n", a.Separator, a.Rows, a.Columns))
	}
	b.WriteString(fmt.Sprintf("✓ Using separator '%s'; columns: %s\n", r.Separator, strings.Join(r.Columns, ", ")))

	s := r.Summary
	b.WriteString("\n[COORDINATES]\n")
	b.WriteString(fmt.Sprintf("Total rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Rows with coordinates: %d\n", s.CoordRows))
	b.WriteString(fmt.Sprintf("Unique points: %d\n", s.UniquePoints))
	if s.XRange != nil && s.YRange != nil {
		b.WriteString(fmt.Sprintf("X range: %.0f - %.0f\n", s.XRange.Min, s.XRange.Max))
		b.WriteString(fmt.Sprintf("Y range: %.0f - %.0f\n", s.YRange.Min, s.YRange.Max))
	}

	if s.FieldRows > 0 {
		b.WriteString("\n[MAGNETIC FIELD]\n")
		b.WriteString(fmt.Sprintf("Rows with field data: %d\n", s.FieldRows))
		for _, c := range []struct {
			name string
			fs   *FieldStats
		}{{"Bx", s.Bx}, {"By", s.By}, {"Bz", s.Bz}} {
			if c.fs == nil {
				b.WriteString(fmt.Sprintf("%s: no values\n", c.name))
				continue
			}
			b.WriteString(fmt.Sprintf("%s: %.2f - %.2f μT (mean %.2f, std %.2f)\n", c.name, c.fs.Min, c.fs.Max, c.fs.Mean, c.fs.Std))
		}
		if s.Magnitude != nil {
			b.WriteString(fmt.Sprintf("Magnitude: %.2f - %.2f μT\n", s.Magnitude.Min, s.Magnitude.Max))
		}
	}

	if len(s.POI) > 0 {
		b.WriteString("\n[POINTS OF INTEREST]\n")
		for _, p := range s.POI {
			b.WriteString(fmt.Sprintf("- %s: %d rows\n", p.Label, p.Count))
		}
	}

	b.WriteString("\n[VISUALIZATION]\n")
	if r.Figure != "" {
		b.WriteString(fmt.Sprintf("✓ Figure saved to %s\n", r.Figure))
	} else {
		b.WriteString(fmt.Sprintf("⚠ Skipped: %s\n", r.FigureSkipped))
	}

	b.WriteString("\n[POSITIONING MODEL]\n")
	if m := r.Regression; m != nil {
		b.WriteString(fmt.Sprintf("Samples: %d\n", m.Samples))
		b.WriteString(fmt.Sprintf("Features: %s\n", strings.Join(m.Features, ", ")))
		if m.Split {
			b.WriteString(fmt.Sprintf("Split: %d train / %d test\n", m.TrainSize, m.TestSize))
		} else {
			b.WriteString("⚠ Few samples: trained and evaluated on the full set\n")
		}
		b.WriteString(fmt.Sprintf("Neighbors: %d\n", m.Neighbors))
		b.WriteString(fmt.Sprintf("RMSE: %.2f\n", m.RMSE))
		if m.R2X != nil && m.R2Y != nil {
			b.WriteString(fmt.Sprintf("R²: x %.3f, y %.3f\n", *m.R2X, *m.R2Y))
		}
		b.WriteString(fmt.Sprintf("Verdict: %s\n", m.Verdict))
	} else {
		b.WriteString(fmt.Sprintf("⚠ Skipped: %s\n", r.RegressionSkipped))
	}

	rd := r.Readiness
	b.WriteString("\n[DATA READINESS]\n")
	for _, c := range rd.Criteria() {
		b.WriteString(fmt.Sprintf("- %s: %d/%d (%s)\n", c.Name, c.Points, c.Max, c.Grade))
	}
	b.WriteString(fmt.Sprintf("Total: %d/%d (%.1f%%)\n", rd.Total, MaxScore, rd.Percent()))
	b.WriteString(fmt.Sprintf("Verdict: %s, %s\n", rd.Verdict, rd.Verdict.Advice()))

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
