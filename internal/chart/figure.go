package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
	"github.com/KaramelBytes/unde-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultFile is written to the working directory unless overridden.
const DefaultFile = "unde_data_analysis.png"

// TopPoints is the number of bars in the point frequency panel.
const TopPoints = 10

// HistogramBins is the bin count of each field component histogram.
const HistogramBins = 30

var (
	missingColor = color.RGBA{R: 170, G: 170, B: 170, A: 200}
	uniqueColor  = color.RGBA{R: 214, G: 39, B: 40, A: 210}
	barColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	fieldColors  = []color.Color{
		color.NRGBA{R: 220, G: 30, B: 30, A: 170},
		color.NRGBA{R: 30, G: 160, B: 50, A: 170},
		color.NRGBA{R: 30, G: 70, B: 220, A: 170},
	}
)

// Figure writes the 2x2 diagnostic panel as a PNG.
type Figure struct {
	Path   string
	DPI    int
	Width  vg.Length
	Height vg.Length
	Title  string
}

// DefaultFigure is 15x12 inches at 300 DPI.
func DefaultFigure() Figure {
	return Figure{
		Path:   DefaultFile,
		DPI:    300,
		Width:  15 * vg.Inch,
		Height: 12 * vg.Inch,
		Title:  "UNDE - collected data analysis",
	}
}

// Visualize renders the coordinate rows of t and writes the PNG atomically.
func (f Figure) Visualize(t *dataset.Table, coords []dataset.Sample) (string, error) {
	png, err := f.Render(coords, t.HasMagnitude)
	if err != nil {
		return "", err
	}
	path := f.Path
	if path == "" {
		path = DefaultFile
	}
	if err := utils.SafeWriteFile(path, png); err != nil {
		return "", fmt.Errorf("write figure: %w", err)
	}
	return path, nil
}

// Render draws the four panels and returns PNG bytes. The map panel is colored
// by magnitude when byMagnitude is set, otherwise by bz.
func (f Figure) Render(coords []dataset.Sample, byMagnitude bool) ([]byte, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("no coordinate rows to plot")
	}
	mapPanel, err := fieldMap(coords, byMagnitude)
	if err != nil {
		return nil, fmt.Errorf("map panel: %w", err)
	}
	histPanel, err := fieldHistograms(coords)
	if err != nil {
		return nil, fmt.Errorf("histogram panel: %w", err)
	}
	uniquePanel, err := uniquePoints(coords)
	if err != nil {
		return nil, fmt.Errorf("unique points panel: %w", err)
	}
	topPanel, err := topPoints(coords, TopPoints)
	if err != nil {
		return nil, fmt.Errorf("top points panel: %w", err)
	}
	plots := [][]*plot.Plot{
		{mapPanel, histPanel},
		{uniquePanel, topPanel},
	}

	dpi := f.DPI
	if dpi <= 0 {
		dpi = DefaultFigure().DPI
	}
	w, h := f.Width, f.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultFigure().Width, DefaultFigure().Height
	}
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	dc := draw.New(img)

	titleBand := vg.Points(0)
	if f.Title != "" {
		sty := plot.New().Title.TextStyle
		sty.Font.Size = vg.Points(18)
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		pad := vg.Points(10)
		dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - pad}, f.Title)
		titleBand = sty.Height(f.Title) + 2*pad
	}

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadTop:    titleBand,
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadX:      vg.Points(40),
		PadY:      vg.Points(40),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newPanel(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// fieldMap scatters the collection positions colored by field strength.
func fieldMap(coords []dataset.Sample, byMagnitude bool) (*plot.Plot, error) {
	label := "Bz (μT)"
	if byMagnitude {
		label = "magnitude (μT)"
	}
	p := newPanel("Collection map, color: "+label, "X coordinate", "Y coordinate")

	xys := make(plotter.XYs, len(coords))
	vals := make([]float64, len(coords))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range coords {
		xys[i] = plotter.XY{X: s.X, Y: s.Y}
		v := s.Bz
		if byMagnitude {
			v = s.Magnitude
		}
		vals[i] = v
		if dataset.Present(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	cm := moreland.Kindlmann()
	cm.SetAlpha(0.7)
	if lo <= hi {
		if hi == lo {
			hi = lo + 1
		}
		cm.SetMin(lo)
		cm.SetMax(hi)
	}
	base := sc.GlyphStyle
	base.Shape = draw.CircleGlyph{}
	base.Radius = vg.Points(3)
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		st := base
		st.Color = missingColor
		if v := vals[i]; dataset.Present(v) && lo <= hi {
			if c, err := cm.At(v); err == nil {
				st.Color = c
			}
		}
		return st
	}
	p.Add(sc)
	if lo <= hi {
		p.Legend.Add(fmt.Sprintf("%s %.1f → %.1f", label, lo, hi), sc)
	}
	return p, nil
}

// fieldHistograms overlays bx, by and bz distributions of rows with bx present.
func fieldHistograms(coords []dataset.Sample) (*plot.Plot, error) {
	p := newPanel("Magnetic field distribution", "Value (μT)", "Frequency")
	var bx, by, bz plotter.Values
	for _, s := range coords {
		if !dataset.Present(s.Bx) {
			continue
		}
		bx = append(bx, s.Bx)
		if dataset.Present(s.By) {
			by = append(by, s.By)
		}
		if dataset.Present(s.Bz) {
			bz = append(bz, s.Bz)
		}
	}
	if len(bx) == 0 {
		p.Title.Text = "Magnetic field distribution (no field data)"
		return p, nil
	}
	for i, c := range []struct {
		name string
		vals plotter.Values
	}{{"Bx", bx}, {"By", by}, {"Bz", bz}} {
		if len(c.vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(c.vals, HistogramBins)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		h.FillColor = fieldColors[i]
		h.LineStyle.Width = vg.Points(0.3)
		p.Add(h)
		p.Legend.Add(c.name, h)
	}
	p.Legend.Top = true
	return p, nil
}

// uniquePoints scatters each distinct (x, y) once.
func uniquePoints(coords []dataset.Sample) (*plot.Plot, error) {
	pts := dataset.UniquePoints(coords)
	p := newPanel(fmt.Sprintf("Unique collection points (%d)", len(pts)), "X coordinate", "Y coordinate")
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Color = uniqueColor
	sc.GlyphStyle.Radius = vg.Points(5)
	p.Add(sc)
	return p, nil
}

// topPoints charts the n most sampled points, most frequent first.
func topPoints(coords []dataset.Sample, n int) (*plot.Plot, error) {
	p := newPanel(fmt.Sprintf("Top %d points by row count", n), "Point", "Rows")
	counts := dataset.CountPoints(coords)
	if len(counts) > n {
		counts = counts[:n]
	}
	vals := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.Count)
		labels[i] = fmt.Sprintf("(%g, %g)", c.Point.X, c.Point.Y)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}
