package projection

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinExtent is the smallest normalized width or height a box may have.
// Anything at or below it is a degenerate or heavily clipped projection.
const MinExtent = 0.01

// YoloBox is a bounding box in normalized image-fraction units.
type YoloBox struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// Valid reports whether the box lies on the image and is large enough:
// centers in [0, 1], width and height in (MinExtent, 1].
func (b YoloBox) Valid() bool {
	return b.XCenter >= 0 && b.XCenter <= 1 &&
		b.YCenter >= 0 && b.YCenter <= 1 &&
		b.Width > MinExtent && b.Width <= 1 &&
		b.Height > MinExtent && b.Height <= 1
}

// String formats the box as one label line without the trailing newline.
func (b YoloBox) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", b.ClassID, b.XCenter, b.YCenter, b.Width, b.Height)
}

// CornersToYolo reduces projected pixel corners to the normalized
// axis-aligned box that contains them. The result does not depend on corner
// order. An empty corner set or a NaN coordinate yields an invalid box.
func CornersToYolo(classID int, corners [][2]float64, width, height int) YoloBox {
	invalid := YoloBox{ClassID: classID, XCenter: -1, YCenter: -1}
	if len(corners) == 0 || width <= 0 || height <= 0 {
		return invalid
	}
	xs := make([]float64, len(corners))
	ys := make([]float64, len(corners))
	for i, c := range corners {
		if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
			return invalid
		}
		xs[i], ys[i] = c[0], c[1]
	}
	xMin, xMax := floats.Min(xs), floats.Max(xs)
	yMin, yMax := floats.Min(ys), floats.Max(ys)

	w, h := float64(width), float64(height)
	return YoloBox{
		ClassID: classID,
		XCenter: (xMin + xMax) / 2 / w,
		YCenter: (yMin + yMax) / 2 / h,
		Width:   (xMax - xMin) / w,
		Height:  (yMax - yMin) / h,
	}
}

// FormatLabels renders boxes as a label file body, one newline-terminated
// line per box. No boxes gives an empty body.
func FormatLabels(boxes []YoloBox) []byte {
	var buf bytes.Buffer
	for _, b := range boxes {
		buf.WriteString(b.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
