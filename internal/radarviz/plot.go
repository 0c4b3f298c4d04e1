package radarviz

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoPoints is returned when asked to plot an empty detection set.
var ErrNoPoints = errors.New("no points to plot")

// DefaultSize is the output edge length in pixels.
const DefaultSize = 640

// DefaultBins is the number of heatmap bins along each axis.
const DefaultBins = 40

const dpi = 96

// Options controls image rendering.
type Options struct {
	Size  int    // output width and height in pixels
	Bins  int    // heatmap bins per axis
	Title string // optional title suffix, e.g. the channel name
}

func (o Options) size() int {
	if o.Size <= 0 {
		return DefaultSize
	}
	return o.Size
}

func (o Options) bins() int {
	if o.Bins <= 0 {
		return DefaultBins
	}
	return o.Bins
}

func (o Options) title(base string) string {
	if o.Title == "" {
		return base
	}
	return fmt.Sprintf("%s %s", base, o.Title)
}

func checkPoints(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("coordinate length mismatch: %d x, %d y", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return ErrNoPoints
	}
	return nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())
	return p
}

// writePNG draws p onto a size×size pixel canvas.
func writePNG(w io.Writer, p *plot.Plot, size int) error {
	edge := vg.Length(size) * vg.Inch / dpi
	c := vgimg.NewWith(vgimg.UseWH(edge, edge), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// Scatter plots one marker per detection.
func Scatter(w io.Writer, xs, ys []float64, o Options) error {
	if err := checkPoints(xs, ys); err != nil {
		return err
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	sc.GlyphStyle.Color = color.RGBA{R: 220, A: 180}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}

	p := newPlot(o.title("Radar Scatter"))
	p.Add(sc)
	return writePNG(w, p, o.size())
}

// Heatmap bins detections on a bins×bins grid spanning their extent and
// colours occupied bins by count. Empty bins are left blank.
func Heatmap(w io.Writer, xs, ys []float64, o Options) error {
	if err := checkPoints(xs, ys); err != nil {
		return err
	}
	g := newCountGrid(xs, ys, o.bins())
	hm := plotter.NewHeatMap(g, palette.Heat(64, 1))

	p := newPlot(o.title("Radar Heatmap"))
	p.Add(hm)
	return writePNG(w, p, o.size())
}

// countGrid is a plotter.GridXYZ of detection counts. Empty cells are NaN
// so the heatmap leaves them transparent.
type countGrid struct {
	cols, rows     int
	x0, y0, dx, dy float64
	counts         []float64
	max            float64
}

func newCountGrid(xs, ys []float64, bins int) *countGrid {
	xMin, xMax := span(xs)
	yMin, yMax := span(ys)
	g := &countGrid{
		cols: bins, rows: bins,
		x0: xMin, y0: yMin,
		dx: (xMax - xMin) / float64(bins),
		dy: (yMax - yMin) / float64(bins),
		counts: make([]float64, bins*bins),
	}
	for i := range xs {
		c := clampBin(int((xs[i]-xMin)/g.dx), bins)
		r := clampBin(int((ys[i]-yMin)/g.dy), bins)
		g.counts[r*bins+c]++
	}
	g.max = floats.Max(g.counts)
	return g
}

// span returns the extent of v, widened by half a metre on each side when
// every value is equal.
func span(v []float64) (lo, hi float64) {
	lo, hi = floats.Min(v), floats.Max(v)
	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}

func clampBin(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (g *countGrid) Dims() (c, r int) { return g.cols, g.rows }

func (g *countGrid) Z(c, r int) float64 {
	v := g.counts[r*g.cols+c]
	if v == 0 {
		return math.NaN()
	}
	return v
}

// Min and Max fix the colour scale at [0, max count] so a single occupied
// bin still spans the palette.
func (g *countGrid) Min() float64 { return 0 }
func (g *countGrid) Max() float64 { return math.Max(g.max, 1) }

func (g *countGrid) X(c int) float64 { return g.x0 + (float64(c)+0.5)*g.dx }
func (g *countGrid) Y(r int) float64 { return g.y0 + (float64(r)+0.5)*g.dy }
