package analysis

import (
	"sort"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// FieldStats describes one magnetic component over the field rows.
type FieldStats struct {
	Range `yaml:",inline"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Count int     `json:"count" yaml:"count"`
}

// LabelCount is the frequency of one POI label.
type LabelCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Summary holds the descriptive statistics of a survey table.
type Summary struct {
	Rows         int `json:"rows" yaml:"rows"`
	CoordRows    int `json:"coord_rows" yaml:"coord_rows"`
	UniquePoints int `json:"unique_points" yaml:"unique_points"`

	XRange *Range `json:"x_range,omitempty" yaml:"x_range,omitempty"`
	YRange *Range `json:"y_range,omitempty" yaml:"y_range,omitempty"`

	// FieldRows counts rows with bx present; by and bz may still be missing.
	FieldRows int         `json:"field_rows" yaml:"field_rows"`
	Bx        *FieldStats `json:"bx,omitempty" yaml:"bx,omitempty"`
	By        *FieldStats `json:"by,omitempty" yaml:"by,omitempty"`
	Bz        *FieldStats `json:"bz,omitempty" yaml:"bz,omitempty"`

	Magnitude *Range `json:"magnitude,omitempty" yaml:"magnitude,omitempty"`

	POI []LabelCount `json:"poi,omitempty" yaml:"poi,omitempty"`
}

// Summarize computes coordinate, field, magnitude and POI statistics.
func Summarize(t *dataset.Table) Summary {
	coords := t.Coordinates()
	s := Summary{
		Rows:         t.Rows(),
		CoordRows:    len(coords),
		UniquePoints: len(dataset.UniquePoints(coords)),
	}
	if minX, maxX, minY, maxY, ok := dataset.Bounds(coords); ok {
		s.XRange = &Range{Min: minX, Max: maxX}
		s.YRange = &Range{Min: minY, Max: maxY}
	}

	var bx, by, bz []float64
	for _, r := range t.Samples {
		if !dataset.Present(r.Bx) {
			continue
		}
		s.FieldRows++
		bx = append(bx, r.Bx)
		if dataset.Present(r.By) {
			by = append(by, r.By)
		}
		if dataset.Present(r.Bz) {
			bz = append(bz, r.Bz)
		}
	}
	s.Bx, s.By, s.Bz = fieldStats(bx), fieldStats(by), fieldStats(bz)

	if t.HasMagnitude {
		var mag []float64
		for _, r := range t.Samples {
			if dataset.Present(r.Magnitude) {
				mag = append(mag, r.Magnitude)
			}
		}
		if len(mag) > 0 {
			s.Magnitude = &Range{Min: floats.Min(mag), Max: floats.Max(mag)}
		}
	}

	if t.HasPOI {
		counts := map[string]int{}
		for _, r := range t.Samples {
			if r.POIType != "" {
				counts[r.POIType]++
			}
		}
		for label, n := range counts {
			s.POI = append(s.POI, LabelCount{Label: label, Count: n})
		}
		sort.Slice(s.POI, func(i, j int) bool {
			if s.POI[i].Count == s.POI[j].Count {
				return s.POI[i].Label < s.POI[j].Label
			}
			return s.POI[i].Count > s.POI[j].Count
		})
	}
	return s
}

func fieldStats(vals []float64) *FieldStats {
	if len(vals) == 0 {
		return nil
	}
	fs := &FieldStats{
		Range: Range{Min: floats.Min(vals), Max: floats.Max(vals)},
		Count: len(vals),
	}
	if len(vals) > 1 {
		fs.Mean, fs.Std = stat.MeanStdDev(vals, nil)
	} else {
		fs.Mean = vals[0]
	}
	return fs
}
