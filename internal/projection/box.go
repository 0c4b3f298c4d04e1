package projection

import (
	"github.com/golang/geo/r3"

	"github.com/banshee-data/fusionprep/internal/frames"
	"github.com/banshee-data/fusionprep/internal/geom"
)

// Box is an oriented 3D box annotation.
type Box struct {
	Center      r3.Vector
	Size        geom.Size
	Orientation geom.Quaternion
	Category    string
}

// Placement returns the part of the box the frame transforms act on.
func (b Box) Placement() frames.Placement {
	return frames.Placement{Center: b.Center, Orientation: b.Orientation}
}

// WithPlacement returns a copy of b moved to p.
func (b Box) WithPlacement(p frames.Placement) Box {
	b.Center = p.Center
	b.Orientation = p.Orientation
	return b
}

// corner sign pattern along the box's local length, width and height axes
var (
	cornerX = [8]float64{1, 1, 1, 1, -1, -1, -1, -1}
	cornerY = [8]float64{1, -1, -1, 1, 1, -1, -1, 1}
	cornerZ = [8]float64{1, 1, -1, -1, 1, 1, -1, -1}
)

// Corners returns the eight box corners. Length runs along the box's local x
// axis, width along y and height along z; the first four corners face +x and
// the top four are indices 0, 1, 4, 5.
func (b Box) Corners() [8]r3.Vector {
	var out [8]r3.Vector
	hl, hw, hh := b.Size.L/2, b.Size.W/2, b.Size.H/2
	for i := range out {
		local := r3.Vector{X: cornerX[i] * hl, Y: cornerY[i] * hw, Z: cornerZ[i] * hh}
		out[i] = b.Orientation.Rotate(local).Add(b.Center)
	}
	return out
}
