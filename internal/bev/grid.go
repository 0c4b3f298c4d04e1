package bev

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
)

// Occupied is the pixel value of a cell holding at least one point.
const Occupied uint8 = 255

// Window is the metric x/y region rasterized. Bounds are exclusive.
type Window struct {
	XMin, XMax float64
	YMin, YMax float64
}

// DefaultWindow is the ±50 m square used for lidar sweeps.
var DefaultWindow = Window{XMin: -50, XMax: 50, YMin: -50, YMax: 50}

// DefaultResolution gives a 640×640 grid over DefaultWindow.
const DefaultResolution = 0.15625

// Contains reports whether (x, y) lies strictly inside the window.
func (w Window) Contains(x, y float64) bool {
	return x > w.XMin && x < w.XMax && y > w.YMin && y < w.YMax
}

// Dims returns the grid size for the window at resolution res.
func (w Window) Dims(res float64) (cols, rows int) {
	return int(math.Floor((w.XMax - w.XMin) / res)), int(math.Floor((w.YMax - w.YMin) / res))
}

// Validate checks the window and resolution produce a non-empty grid.
func (w Window) Validate(res float64) error {
	for _, v := range []float64{w.XMin, w.XMax, w.YMin, w.YMax, res} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("window and resolution must be finite")
		}
	}
	if res <= 0 {
		return fmt.Errorf("resolution must be positive, got %v", res)
	}
	if w.XMax <= w.XMin || w.YMax <= w.YMin {
		return fmt.Errorf("empty window x[%v,%v] y[%v,%v]", w.XMin, w.XMax, w.YMin, w.YMax)
	}
	if cols, rows := w.Dims(res); cols < 1 || rows < 1 {
		return fmt.Errorf("window x[%v,%v] y[%v,%v] is smaller than one %v m cell", w.XMin, w.XMax, w.YMin, w.YMax, res)
	}
	return nil
}

// Grid is a row-major occupancy raster. Row 0 is the largest y.
type Grid struct {
	Rows, Cols int
	Pix        []uint8
	// Points is the number of input points binned into the grid.
	Points int
}

// At returns the value at row r, column c of the flipped grid.
func (g *Grid) At(r, c int) uint8 {
	return g.Pix[r*g.Cols+c]
}

// Occupancy counts occupied cells.
func (g *Grid) Occupancy() int {
	n := 0
	for _, v := range g.Pix {
		if v == Occupied {
			n++
		}
	}
	return n
}

// Rasterize bins the points (xs[i], ys[i]) into an occupancy grid. Points on
// or outside the window edges are dropped. A grid with no points is all zero,
// not an error; callers decide whether to warn.
func Rasterize(xs, ys []float64, win Window, res float64) (*Grid, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("coordinate length mismatch: %d x, %d y", len(xs), len(ys))
	}
	if err := win.Validate(res); err != nil {
		return nil, err
	}
	cols, rows := win.Dims(res)
	g := &Grid{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}

	for i := range xs {
		x, y := xs[i], ys[i]
		if !win.Contains(x, y) {
			continue
		}
		bx := int(math.Floor((x - win.XMin) / res))
		by := int(math.Floor((y - win.YMin) / res))
		// Rounding near XMax can land one past the last bin.
		if bx < 0 || bx >= cols || by < 0 || by >= rows {
			continue
		}
		g.Points++
		// Flip on write: bin row by becomes image row rows-1-by.
		g.Pix[(rows-1-by)*cols+bx] = Occupied
	}
	return g, nil
}

// Image returns the grid as a grayscale image sharing g's pixels.
func (g *Grid) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Cols,
		Rect:   image.Rect(0, 0, g.Cols, g.Rows),
	}
}

// EncodePNG writes the grid as a single-channel PNG.
func (g *Grid) EncodePNG(w io.Writer) error {
	return png.Encode(w, g.Image())
}
