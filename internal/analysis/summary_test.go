package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
)

func TestSummarize(t *testing.T) {
	nan := math.NaN()
	tbl := &dataset.Table{
		HasField:     true,
		HasMagnitude: true,
		HasPOI:       true,
		Samples: []dataset.Sample{
			{X: 0, Y: 0, Bx: 10, By: -2, Bz: 40, Magnitude: 41, POIType: "door"},
			{X: 0, Y: 0, Bx: 14, By: nan, Bz: 44, Magnitude: 46, POIType: "stairs"},
			{X: 30, Y: 10, Bx: nan, By: 1, Bz: 42, Magnitude: nan, POIType: "door"},
			{X: nan, Y: 20, Bx: 12, By: 0, Bz: nan, Magnitude: 40},
		},
	}
	s := Summarize(tbl)
	if s.Rows != 4 || s.CoordRows != 3 || s.UniquePoints != 2 {
		t.Fatalf("counts: %+v", s)
	}
	if s.XRange == nil || *s.XRange != (Range{0, 30}) || *s.YRange != (Range{0, 10}) {
		t.Fatalf("ranges: x=%v y=%v", s.XRange, s.YRange)
	}
	// Field rows are gated on bx alone.
	if s.FieldRows != 3 {
		t.Fatalf("field rows = %d, want 3", s.FieldRows)
	}
	if s.Bx.Count != 3 || s.Bx.Min != 10 || s.Bx.Max != 14 || s.Bx.Mean != 12 {
		t.Fatalf("bx = %+v", s.Bx)
	}
	if math.Abs(s.Bx.Std-2) > 1e-9 {
		t.Fatalf("bx std = %v, want 2", s.Bx.Std)
	}
	if s.By.Count != 2 || s.Bz.Count != 2 {
		t.Fatalf("by=%+v bz=%+v", s.By, s.Bz)
	}
	if s.Magnitude == nil || *s.Magnitude != (Range{40, 46}) {
		t.Fatalf("magnitude = %v", s.Magnitude)
	}
	want := []LabelCount{{"door", 2}, {"stairs", 1}}
	if len(s.POI) != len(want) {
		t.Fatalf("poi = %+v", s.POI)
	}
	for i := range want {
		if s.POI[i] != want[i] {
			t.Fatalf("poi[%d] = %+v, want %+v", i, s.POI[i], want[i])
		}
	}
}

func TestSummarizeWithoutOptionalColumns(t *testing.T) {
	nan := math.NaN()
	tbl := &dataset.Table{Samples: []dataset.Sample{
		{X: 1, Y: 1, Bx: nan, By: nan, Bz: nan, Magnitude: nan},
	}}
	s := Summarize(tbl)
	if s.FieldRows != 0 || s.Bx != nil || s.By != nil || s.Bz != nil {
		t.Fatalf("unexpected field stats: %+v", s)
	}
	if s.Magnitude != nil || s.POI != nil {
		t.Fatalf("unexpected optional stats: %+v", s)
	}
}
