package analysis

import "github.com/KaramelBytes/unde-cli/internal/dataset"

// MaxScore is the ceiling of the readiness total.
const MaxScore = 100

// Grade is the label attached to each readiness criterion.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradePoor      Grade = "poor"
	GradeNoData    Grade = "no data"
)

// ReadinessVerdict is the overall recommendation.
type ReadinessVerdict string

const (
	VerdictReady          ReadinessVerdict = "ready"
	VerdictGoodFoundation ReadinessVerdict = "good foundation, add more points"
	VerdictNeedMoreData   ReadinessVerdict = "need more data"
)

// Advice returns the follow-up hint printed under the verdict.
func (v ReadinessVerdict) Advice() string {
	switch v {
	case VerdictReady:
		return "data is sufficient to build the navigation feature"
	case VerdictGoodFoundation:
		return "collect a few more points before building navigation"
	default:
		return "collect more points across the whole area"
	}
}

// ReadinessInput carries the aggregates the scorer needs.
type ReadinessInput struct {
	TotalRows         int
	CompleteFieldRows int
	CoordRows         int
	UniquePoints      int
	// Area is x-range times y-range over the coordinate rows.
	Area      float64
	HasCoords bool
}

// Criterion is one scored readiness rule.
type Criterion struct {
	Name   string  `json:"name" yaml:"name"`
	Value  float64 `json:"value" yaml:"value"`
	Points int     `json:"points" yaml:"points"`
	Max    int     `json:"max" yaml:"max"`
	Grade  Grade   `json:"grade" yaml:"grade"`
}

// Readiness is the scored outcome.
type Readiness struct {
	Points       Criterion        `json:"points" yaml:"points"`
	Completeness Criterion        `json:"completeness" yaml:"completeness"`
	Coverage     Criterion        `json:"coverage" yaml:"coverage"`
	Density      Criterion        `json:"density" yaml:"density"`
	Total        int              `json:"total" yaml:"total"`
	Verdict      ReadinessVerdict `json:"verdict" yaml:"verdict"`
}

// Criteria returns the four criteria in report order.
func (r Readiness) Criteria() []Criterion {
	return []Criterion{r.Points, r.Completeness, r.Coverage, r.Density}
}

// Percent is Total as a share of MaxScore.
func (r Readiness) Percent() float64 { return float64(r.Total) * 100 / MaxScore }

// ReadinessInputFrom derives scorer input from a loaded table.
func ReadinessInputFrom(t *dataset.Table) ReadinessInput {
	coords := t.Coordinates()
	in := ReadinessInput{
		TotalRows:         t.Rows(),
		CompleteFieldRows: t.CompleteFieldRows(),
		CoordRows:         len(coords),
		UniquePoints:      len(dataset.UniquePoints(coords)),
	}
	if minX, maxX, minY, maxY, ok := dataset.Bounds(coords); ok {
		in.HasCoords = true
		in.Area = (maxX - minX) * (maxY - minY)
	}
	return in
}

// Score applies the fixed readiness rules. Caps are 30/25/25/20.
func Score(in ReadinessInput) Readiness {
	var r Readiness

	r.Points = Criterion{Name: "unique points", Value: float64(in.UniquePoints), Max: 30}
	switch {
	case in.UniquePoints >= 30:
		r.Points.Points, r.Points.Grade = 30, GradeExcellent
	case in.UniquePoints >= 20:
		r.Points.Points, r.Points.Grade = 25, GradeGood
	case in.UniquePoints >= 10:
		r.Points.Points, r.Points.Grade = 15, GradeFair
	default:
		r.Points.Points, r.Points.Grade = 5, GradePoor
	}

	// An empty table falls through to the floor.
	complete := float64(in.CompleteFieldRows)
	total := float64(in.TotalRows)
	r.Completeness = Criterion{Name: "field data completeness", Max: 25}
	if in.TotalRows > 0 {
		r.Completeness.Value = complete / total
	}
	switch {
	case complete > total*0.8:
		r.Completeness.Points, r.Completeness.Grade = 25, GradeExcellent
	case complete > total*0.5:
		r.Completeness.Points, r.Completeness.Grade = 20, GradeGood
	default:
		r.Completeness.Points, r.Completeness.Grade = 10, GradeFair
	}

	r.Coverage = Criterion{Name: "spatial coverage", Value: in.Area, Max: 25}
	switch {
	case !in.HasCoords || in.CoordRows == 0:
		r.Coverage.Points, r.Coverage.Grade, r.Coverage.Value = 0, GradeNoData, 0
	case in.Area > 10000:
		r.Coverage.Points, r.Coverage.Grade = 25, GradeExcellent
	case in.Area > 5000:
		r.Coverage.Points, r.Coverage.Grade = 20, GradeGood
	default:
		r.Coverage.Points, r.Coverage.Grade = 15, GradeFair
	}

	r.Density = Criterion{Name: "sample density", Max: 20}
	if in.UniquePoints > 0 {
		perPoint := float64(in.CoordRows) / float64(in.UniquePoints)
		r.Density.Value = perPoint
		switch {
		case perPoint > 50:
			r.Density.Points, r.Density.Grade = 20, GradeExcellent
		case perPoint > 20:
			r.Density.Points, r.Density.Grade = 15, GradeGood
		default:
			r.Density.Points, r.Density.Grade = 10, GradeFair
		}
	} else {
		r.Density.Grade = GradeNoData
	}

	r.Total = r.Points.Points + r.Completeness.Points + r.Coverage.Points + r.Density.Points
	switch {
	case r.Total >= 80:
		r.Verdict = VerdictReady
	case r.Total >= 60:
		r.Verdict = VerdictGoodFoundation
	default:
		r.Verdict = VerdictNeedMoreData
	}
	return r
}
