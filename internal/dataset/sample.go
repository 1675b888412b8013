package dataset

import (
	"math"
	"sort"
)

// Column names recognized in the header (matched case-insensitively).
const (
	ColX         = "x"
	ColY         = "y"
	ColBx        = "bx"
	ColBy        = "by"
	ColBz        = "bz"
	ColMagnitude = "magnetic_magnitude"
	ColPOIType   = "poi_type"
)

// Sample is one row of the survey log. Missing numeric fields are NaN and a
// missing POI label is empty.
type Sample struct {
	X, Y       float64
	Bx, By, Bz float64
	Magnitude  float64
	POIType    string
}

// HasCoords reports whether both x and y are present.
func (s Sample) HasCoords() bool { return Present(s.X) && Present(s.Y) }

// HasField reports whether all three field components are present.
func (s Sample) HasField() bool { return Present(s.Bx) && Present(s.By) && Present(s.Bz) }

// Point is a deduplicated (x, y) location.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointCount is the number of rows recorded at a point.
type PointCount struct {
	Point Point `json:"point" yaml:"point"`
	Count int   `json:"count" yaml:"count"`
}

// SeparatorAttempt records one try of the separator detection.
type SeparatorAttempt struct {
	Separator rune
	Rows      int
	Columns   int
	Err       error
}

// OK reports whether the attempt produced a table.
func (a SeparatorAttempt) OK() bool { return a.Err == nil }

// Table is a loaded survey file.
type Table struct {
	Path      string
	Separator rune
	Columns   []string
	Samples   []Sample
	Attempts  []SeparatorAttempt

	HasField     bool // bx, by and bz columns all exist
	HasMagnitude bool
	HasPOI       bool
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return len(t.Samples) }

// Coordinates returns the samples with both coordinates present, in file order.
func (t *Table) Coordinates() []Sample {
	out := make([]Sample, 0, len(t.Samples))
	for _, s := range t.Samples {
		if s.HasCoords() {
			out = append(out, s)
		}
	}
	return out
}

// CompleteFieldRows counts rows with bx, by and bz all present.
func (t *Table) CompleteFieldRows() int {
	n := 0
	for _, s := range t.Samples {
		if s.HasField() {
			n++
		}
	}
	return n
}

// UniquePoints returns the distinct (x, y) pairs among samples in first-seen
// order. Samples without coordinates are ignored.
func UniquePoints(samples []Sample) []Point {
	seen := make(map[Point]struct{}, len(samples))
	var out []Point
	for _, s := range samples {
		if !s.HasCoords() {
			continue
		}
		p := Point{X: s.X, Y: s.Y}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CountPoints returns rows per distinct (x, y), most frequent first. Ties are
// ordered by x, then y.
func CountPoints(samples []Sample) []PointCount {
	counts := map[Point]int{}
	for _, s := range samples {
		if !s.HasCoords() {
			continue
		}
		counts[Point{X: s.X, Y: s.Y}]++
	}
	out := make([]PointCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PointCount{Point: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Point.X != out[j].Point.X {
			return out[i].Point.X < out[j].Point.X
		}
		return out[i].Point.Y < out[j].Point.Y
	})
	return out
}

// Bounds returns the min/max of x and y over samples with coordinates. ok is
// false when there are none.
func Bounds(samples []Sample) (minX, maxX, minY, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range samples {
		if !s.HasCoords() {
			continue
		}
		ok = true
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}
	return
}
