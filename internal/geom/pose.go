package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// ErrInvalidPose is returned when a translation/rotation record cannot
// describe a rigid transform.
var ErrInvalidPose = errors.New("invalid pose record")

// UnitTolerance bounds how far |q| may stray from 1 before a rotation record
// is rejected as malformed.
const UnitTolerance = 1e-3

// Pose is the rigid transform of a frame relative to its parent
// (world→ego, ego→sensor). Poses are values and are never mutated.
type Pose struct {
	Translation r3.Vector
	Rotation    Quaternion
}

// ParsePose builds a Pose from a [x, y, z] translation and a scalar-first
// [w, x, y, z] rotation record.
func ParsePose(translation, rotation []float64) (Pose, error) {
	t, err := VectorFromSlice(translation)
	if err != nil {
		return Pose{}, fmt.Errorf("translation: %w", err)
	}
	q, ok := QuaternionFromSlice(rotation)
	if !ok {
		return Pose{}, fmt.Errorf("%w: rotation needs 4 finite values, got %v", ErrInvalidPose, rotation)
	}
	p := Pose{Translation: t, Rotation: q}
	if err := p.Validate(); err != nil {
		return Pose{}, err
	}
	return p, nil
}

// VectorFromSlice builds an r3.Vector from a 3-element record.
func VectorFromSlice(v []float64) (r3.Vector, error) {
	if len(v) != 3 {
		return r3.Vector{}, fmt.Errorf("%w: vector needs 3 values, got %d", ErrInvalidPose, len(v))
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return r3.Vector{}, fmt.Errorf("%w: non-finite value in %v", ErrInvalidPose, v)
		}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

// Validate checks that the translation is finite and the rotation is a unit
// quaternion within UnitTolerance.
func (p Pose) Validate() error {
	t := p.Translation
	for _, f := range []float64{t.X, t.Y, t.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite translation %v", ErrInvalidPose, t)
		}
	}
	n := p.Rotation.Norm()
	if math.IsNaN(n) || math.Abs(n-1) > UnitTolerance {
		return fmt.Errorf("%w: rotation norm %.6f is not unit", ErrInvalidPose, n)
	}
	return nil
}

// Inverse returns the pose mapping child coordinates back into the parent:
// translation -R⁻¹t, rotation R⁻¹.
func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{Translation: inv.Rotate(p.Translation.Mul(-1)), Rotation: inv}
}

// Apply maps a point expressed in this pose's frame into the parent frame.
func (p Pose) Apply(v r3.Vector) r3.Vector {
	return p.Rotation.Rotate(v).Add(p.Translation)
}

// Size is a box extent in metres, ordered width, length, height as in the
// annotation records.
type Size struct {
	W, L, H float64
}

// SizeFromSlice builds a Size from a [w, l, h] record.
func SizeFromSlice(v []float64) (Size, error) {
	vec, err := VectorFromSlice(v)
	if err != nil {
		return Size{}, err
	}
	if vec.X < 0 || vec.Y < 0 || vec.Z < 0 {
		return Size{}, fmt.Errorf("%w: negative box size %v", ErrInvalidPose, v)
	}
	return Size{W: vec.X, L: vec.Y, H: vec.Z}, nil
}
