package projection

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Intrinsics is a pinhole camera: a 3×3 intrinsic matrix and the pixel size
// of the images it produced.
type Intrinsics struct {
	K      *mat.Dense
	Width  int
	Height int
}

// NewIntrinsics builds Intrinsics from a row-major 3×3 record.
func NewIntrinsics(rows [][]float64, width, height int) (Intrinsics, error) {
	if len(rows) != 3 {
		return Intrinsics{}, fmt.Errorf("camera intrinsic must have 3 rows, got %d", len(rows))
	}
	data := make([]float64, 0, 9)
	for i, r := range rows {
		if len(r) != 3 {
			return Intrinsics{}, fmt.Errorf("camera intrinsic row %d must have 3 values, got %d", i, len(r))
		}
		data = append(data, r...)
	}
	if width <= 0 || height <= 0 {
		return Intrinsics{}, fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}
	return Intrinsics{K: mat.NewDense(3, 3, data), Width: width, Height: height}, nil
}

// Project maps a camera-frame point to pixel coordinates: K·p divided by the
// projected depth. Points at or behind the camera go through the same formula
// and may come out mirrored or infinite; callers filter the result.
func (in Intrinsics) Project(p r3.Vector) (x, y, depth float64) {
	var out mat.VecDense
	out.MulVec(in.K, mat.NewVecDense(3, []float64{p.X, p.Y, p.Z}))
	depth = out.AtVec(2)
	return out.AtVec(0) / depth, out.AtVec(1) / depth, depth
}
