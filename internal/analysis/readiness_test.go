package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
)

func TestScoreReadySurvey(t *testing.T) {
	r := Score(ReadinessInput{
		TotalRows:         1500,
		CompleteFieldRows: 1350,
		CoordRows:         1500,
		UniquePoints:      25,
		Area:              12000,
		HasCoords:         true,
	})
	if r.Points.Points != 25 || r.Completeness.Points != 25 || r.Coverage.Points != 25 || r.Density.Points != 20 {
		t.Fatalf("unexpected sub-scores: %+v", r.Criteria())
	}
	if r.Total != 95 {
		t.Fatalf("total = %d, want 95", r.Total)
	}
	if r.Verdict != VerdictReady {
		t.Fatalf("verdict = %q", r.Verdict)
	}
	if r.Percent() != 95 {
		t.Fatalf("percent = %v", r.Percent())
	}
}

func TestScoreThresholds(t *testing.T) {
	cases := []struct {
		name    string
		in      ReadinessInput
		total   int
		verdict ReadinessVerdict
	}{
		{
			name:    "small sparse survey",
			in:      ReadinessInput{TotalRows: 30, CompleteFieldRows: 10, CoordRows: 30, UniquePoints: 3, Area: 100, HasCoords: true},
			total:   5 + 10 + 15 + 10,
			verdict: VerdictNeedMoreData,
		},
		{
			name:    "boundary values are exclusive",
			in:      ReadinessInput{TotalRows: 10, CompleteFieldRows: 8, CoordRows: 200, UniquePoints: 10, Area: 10000, HasCoords: true},
			total:   15 + 20 + 20 + 10,
			verdict: VerdictGoodFoundation,
		},
		{
			name:    "thirty points",
			in:      ReadinessInput{TotalRows: 100, CompleteFieldRows: 100, CoordRows: 900, UniquePoints: 30, Area: 6000, HasCoords: true},
			total:   30 + 25 + 20 + 15,
			verdict: VerdictReady,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Score(tc.in)
			if r.Total != tc.total {
				t.Fatalf("total = %d, want %d (%+v)", r.Total, tc.total, r.Criteria())
			}
			if r.Verdict != tc.verdict {
				t.Fatalf("verdict = %q, want %q", r.Verdict, tc.verdict)
			}
		})
	}
}

func TestScoreEmptyTable(t *testing.T) {
	r := Score(ReadinessInputFrom(&dataset.Table{}))
	if r.Coverage.Points != 0 || r.Coverage.Grade != GradeNoData {
		t.Fatalf("coverage = %+v", r.Coverage)
	}
	if r.Density.Points != 0 || r.Density.Grade != GradeNoData {
		t.Fatalf("density = %+v", r.Density)
	}
	if r.Total != 5+10 {
		t.Fatalf("total = %d, want 15", r.Total)
	}
	if r.Verdict != VerdictNeedMoreData {
		t.Fatalf("verdict = %q", r.Verdict)
	}
}

func TestScoreTotalIsSumOfCriteria(t *testing.T) {
	for unique := 0; unique <= 40; unique += 5 {
		for _, area := range []float64{0, 4000, 7000, 20000} {
			r := Score(ReadinessInput{
				TotalRows:         100,
				CompleteFieldRows: unique * 2,
				CoordRows:         unique * 30,
				UniquePoints:      unique,
				Area:              area,
				HasCoords:         unique > 0,
			})
			sum := 0
			for _, c := range r.Criteria() {
				if c.Points < 0 || c.Points > c.Max {
					t.Fatalf("%s = %d outside [0,%d]", c.Name, c.Points, c.Max)
				}
				sum += c.Points
			}
			if sum != r.Total || r.Total < 0 || r.Total > MaxScore {
				t.Fatalf("total %d, sum %d", r.Total, sum)
			}
		}
	}
}

func TestReadinessInputFrom(t *testing.T) {
	nan := math.NaN()
	tbl := &dataset.Table{Samples: []dataset.Sample{
		{X: 0, Y: 0, Bx: 1, By: 2, Bz: 3, Magnitude: nan},
		{X: 0, Y: 0, Bx: 1, By: nan, Bz: 3, Magnitude: nan},
		{X: 100, Y: 50, Bx: 1, By: 2, Bz: 3, Magnitude: nan},
		{X: nan, Y: 7, Bx: nan, By: nan, Bz: nan, Magnitude: nan},
	}}
	in := ReadinessInputFrom(tbl)
	if in.TotalRows != 4 || in.CompleteFieldRows != 2 || in.CoordRows != 3 || in.UniquePoints != 2 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if !in.HasCoords || in.Area != 5000 {
		t.Fatalf("area = %v (has coords %v)", in.Area, in.HasCoords)
	}
}
