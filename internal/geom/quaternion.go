package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Quaternion is a scalar-first quaternion W + Xi + Yj + Zk.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the no-op rotation.
var Identity = Quaternion{W: 1}

// QuaternionFromSlice builds a quaternion from a scalar-first [w, x, y, z]
// record. ok is false when the record does not have four finite values.
func QuaternionFromSlice(v []float64) (Quaternion, bool) {
	if len(v) != 4 {
		return Quaternion{}, false
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Quaternion{}, false
		}
	}
	return Quaternion{W: v[0], X: v[1], Y: v[2], Z: v[3]}, true
}

// AxisAngle returns the rotation of angle radians about axis. The axis is
// normalized here since it is usually written by hand.
func AxisAngle(axis r3.Vector, angle float64) Quaternion {
	n := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quaternion{W: math.Cos(angle / 2), X: n.X * s, Y: n.Y * s, Z: n.Z * s}
}

// Mul returns the Hamilton product q ⊗ r. Applying the result rotates by r
// first, then by q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conjugate returns (W, -X, -Y, -Z).
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// NormSq returns the squared norm.
func (q Quaternion) NormSq() float64 {
	return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
}

// Norm returns the quaternion norm.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.NormSq())
}

// Inverse returns q⁻¹ = conj(q) / |q|². For a unit quaternion this is the
// conjugate. The zero quaternion has no inverse and yields NaN components.
func (q Quaternion) Inverse() Quaternion {
	n := q.NormSq()
	c := q.Conjugate()
	return Quaternion{W: c.W / n, X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// Rotate rotates v by q using conjugation q ⊗ (0, v) ⊗ q⁻¹.
func (q Quaternion) Rotate(v r3.Vector) r3.Vector {
	p := q.Mul(Quaternion{X: v.X, Y: v.Y, Z: v.Z}).Mul(q.Inverse())
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// ApproxEqual reports whether q and r describe the same rotation within tol.
// q and -q are the same rotation.
func (q Quaternion) ApproxEqual(r Quaternion, tol float64) bool {
	same := math.Abs(q.W-r.W) <= tol && math.Abs(q.X-r.X) <= tol &&
		math.Abs(q.Y-r.Y) <= tol && math.Abs(q.Z-r.Z) <= tol
	flipped := math.Abs(q.W+r.W) <= tol && math.Abs(q.X+r.X) <= tol &&
		math.Abs(q.Y+r.Y) <= tol && math.Abs(q.Z+r.Z) <= tol
	return same || flipped
}

// Yaw returns the heading about +Z in radians.
func (q Quaternion) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}
