package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	for _, c := range []struct{ name, def string }{
		{"output", "unde_data_analysis.png"},
		{"separator", "auto"},
		{"separator-fallback", "last"},
		{"min-columns", "5"},
		{"dpi", "300"},
		{"format", "text"},
		{"no-plot", "false"},
		{"seed", "42"},
		{"neighbors", "5"},
	} {
		if fl := analyzeCmd.Flags().Lookup(c.name); fl != nil {
			_ = fl.Value.Set(c.def)
			fl.Changed = false
		}
	}
	cfgFile, debug = "", false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	return work
}

func writeSurvey(t *testing.T, dir string, points, repeat int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp;x;y;bx;by;bz;magnetic_magnitude;poi_type\n")
	row := 0
	for p := 0; p < points; p++ {
		for r := 0; r < repeat; r++ {
			fmt.Fprintf(&b, "%d;%d;%d;%d,%d;-3,1;4%d,2;45,0;\n", row, p%4*40, p/4*40, 10+p, r, p%10)
			row++
		}
	}
	path := filepath.Join(dir, "survey.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write survey: %v", err)
	}
	return path
}

func TestCLI_AnalyzeWritesFigureAndReport(t *testing.T) {
	work := isolate(t)
	data := writeSurvey(t, work, 12, 3)

	out, err := runCmd(t, "analyze", data, "--dpi", "30")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	fig := filepath.Join(work, "unde_data_analysis.png")
	if st, err := os.Stat(fig); err != nil || st.Size() == 0 {
		t.Fatalf("figure not written: %v", err)
	}
	for _, want := range []string{"[COORDINATES]", "Unique points: 12", "[POSITIONING MODEL]", "Split: 25 train / 11 test", "[DATA READINESS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONWithoutPlot(t *testing.T) {
	work := isolate(t)
	data := writeSurvey(t, work, 3, 4)

	out, err := runCmd(t, "analyze", data, "--no-plot", "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var rep map[string]any
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if _, ok := rep["regression"]; ok {
		t.Fatalf("regression should be skipped with 3 unique points")
	}
	if rep["figure_skipped"] != "disabled" {
		t.Fatalf("figure_skipped = %v", rep["figure_skipped"])
	}
	if _, err := os.Stat(filepath.Join(work, "unde_data_analysis.png")); !os.IsNotExist(err) {
		t.Fatalf("figure should not exist, stat err = %v", err)
	}
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	work := isolate(t)
	if _, err := runCmd(t, "analyze", filepath.Join(work, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := runCmd(t, "analyze"); err == nil {
		t.Fatalf("expected error without a file argument")
	}
	data := writeSurvey(t, work, 12, 1)
	if _, err := runCmd(t, "analyze", data, "--separator", "|"); err == nil {
		t.Fatalf("expected error for unsupported separator")
	}
	if _, err := runCmd(t, "analyze", data, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)
	if _, err := runCmd(t, "config", "set", "neighbors", "3"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".unde", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "neighbors: 3") {
		t.Fatalf("show output missing neighbors:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "neighbors", "zero"); err == nil {
		t.Fatalf("expected error for invalid value")
	}
}
