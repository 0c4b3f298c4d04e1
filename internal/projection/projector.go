package projection

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

var (
	// ErrUnknownCategory marks an annotation whose category is outside the
	// class table. The annotation is skipped; the frame continues.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidProjectedBox marks a projection that failed the validity
	// filter. This is expected for boxes partly or wholly off-image and is
	// not reported as an error.
	ErrInvalidProjectedBox = errors.New("invalid projected box")
)

// DepthPolicy selects how boxes with corners at or behind the camera plane
// are treated.
type DepthPolicy int

const (
	// DepthFilterOnly projects every corner regardless of depth and relies on
	// the validity filter alone. Boxes straddling or behind the camera can
	// still produce a mirrored box that passes the filter.
	DepthFilterOnly DepthPolicy = iota
	// DepthRejectBehind rejects a box if any corner's depth is at or below
	// the projector's MinDepth.
	DepthRejectBehind
)

// ParseDepthPolicy maps a config value to a DepthPolicy.
func ParseDepthPolicy(s string) (DepthPolicy, error) {
	switch s {
	case "", "filter_only":
		return DepthFilterOnly, nil
	case "reject_behind":
		return DepthRejectBehind, nil
	}
	return DepthFilterOnly, fmt.Errorf("unknown depth policy %q", s)
}

func (p DepthPolicy) String() string {
	switch p {
	case DepthFilterOnly:
		return "filter_only"
	case DepthRejectBehind:
		return "reject_behind"
	}
	return fmt.Sprintf("DepthPolicy(%d)", int(p))
}

// Projector projects camera-frame boxes for one camera.
type Projector struct {
	Intrinsics Intrinsics
	Policy     DepthPolicy
	MinDepth   float64
}

// ProjectCorners returns the pixel coordinates of the box corners and the
// smallest corner depth.
func (p Projector) ProjectCorners(corners [8]r3.Vector) ([][2]float64, float64) {
	out := make([][2]float64, len(corners))
	minDepth := 0.0
	for i, c := range corners {
		x, y, d := p.Intrinsics.Project(c)
		out[i] = [2]float64{x, y}
		if i == 0 || d < minDepth {
			minDepth = d
		}
	}
	return out, minDepth
}

// Project maps a camera-frame box to a valid YoloBox. Unknown categories
// return ErrUnknownCategory; boxes rejected by the depth policy or the
// validity filter return ErrInvalidProjectedBox.
func (p Projector) Project(b Box) (YoloBox, error) {
	classID, ok := ClassID(b.Category)
	if !ok {
		return YoloBox{}, fmt.Errorf("%w: %q", ErrUnknownCategory, b.Category)
	}

	pixels, minDepth := p.ProjectCorners(b.Corners())
	if p.Policy == DepthRejectBehind && minDepth <= p.MinDepth {
		return YoloBox{}, fmt.Errorf("%w: corner depth %.3f at or behind %.3f", ErrInvalidProjectedBox, minDepth, p.MinDepth)
	}

	yb := CornersToYolo(classID, pixels, p.Intrinsics.Width, p.Intrinsics.Height)
	if !yb.Valid() {
		return YoloBox{}, fmt.Errorf("%w: %s", ErrInvalidProjectedBox, yb)
	}
	return yb, nil
}
