package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/unde-cli/internal/regression"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	r2 := 0.91
	return &Report{
		RunID:     "run-1",
		File:      "survey.csv",
		Separator: ";",
		Columns:   []string{"x", "y", "bx", "by", "bz"},
		Attempts:  []Attempt{{Separator: ";", Rows: 40, Columns: 5}},
		Summary: Summary{
			Rows: 40, CoordRows: 40, UniquePoints: 12,
			XRange: &Range{0, 110}, YRange: &Range{0, 20},
			FieldRows: 40,
			Bx:        &FieldStats{Range: Range{10, 21}, Mean: 15.5, Std: 3.2, Count: 40},
		},
		Figure: "unde_data_analysis.png",
		Regression: &regression.Result{
			Samples: 40, Features: []string{"bx", "by", "bz"}, Split: true,
			TrainSize: 28, TestSize: 12, Neighbors: 5, RMSE: 4.2, R2X: &r2, R2Y: &r2,
			Verdict: regression.Classify(4.2),
		},
		Readiness: Score(ReadinessInput{TotalRows: 40, CompleteFieldRows: 40, CoordRows: 40, UniquePoints: 12, Area: 2200, HasCoords: true}),
		Warnings:  []string{"by has no values"},
	}
}

func TestRenderText(t *testing.T) {
	out, err := sampleReport().Render("text")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"[UNDE DATA ANALYSIS]",
		"Unique points: 12",
		"By: no values",
		"✓ Figure saved to unde_data_analysis.png",
		"Split: 28 train / 12 test",
		"RMSE: 4.20",
		"Verdict: excellent",
		"Total: 65/100 (65.0%)",
		"[NOTES]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSkippedStages(t *testing.T) {
	r := sampleReport()
	r.Figure, r.FigureSkipped = "", "need more than 5 coordinate rows, have 3"
	r.Regression, r.RegressionSkipped = nil, "need at least 10 unique points, have 3"
	out := r.Text()
	if strings.Count(out, "⚠ Skipped:") != 2 {
		t.Fatalf("expected two skipped stages:\n%s", out)
	}
}

func TestRenderStructured(t *testing.T) {
	r := sampleReport()
	js, err := r.Render("json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(js), &back); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if back["run_id"] != "run-1" {
		t.Fatalf("run_id = %v", back["run_id"])
	}

	ys, err := r.Render("YAML")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var yback map[string]any
	if err := yaml.Unmarshal([]byte(ys), &yback); err != nil {
		t.Fatalf("yaml output invalid: %v", err)
	}
	if !strings.Contains(ys, "verdict: excellent") {
		t.Fatalf("yaml missing regression verdict:\n%s", ys)
	}

	if _, err := r.Render("xml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
