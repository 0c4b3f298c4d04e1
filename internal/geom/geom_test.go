package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVecNear(t *testing.T, want, got r3.Vector) {
	t.Helper()
	if got.Sub(want).Norm() > tol {
		t.Errorf("vector = %v, want %v", got, want)
	}
}

func TestRotateAboutZ(t *testing.T) {
	q := AxisAngle(r3.Vector{Z: 1}, math.Pi/2)

	assertVecNear(t, r3.Vector{Y: 1}, q.Rotate(r3.Vector{X: 1}))
	assertVecNear(t, r3.Vector{X: -1}, q.Rotate(r3.Vector{Y: 1}))
	assertVecNear(t, r3.Vector{Z: 1}, q.Rotate(r3.Vector{Z: 1}))
	assert.InDelta(t, math.Pi/2, q.Yaw(), tol)
}

func TestMulComposesRightFirst(t *testing.T) {
	qz := AxisAngle(r3.Vector{Z: 1}, math.Pi/2)
	qx := AxisAngle(r3.Vector{X: 1}, math.Pi/2)

	v := r3.Vector{X: 1}
	// qz ⊗ qx rotates by qx first: x stays x, then z-rotation sends it to y.
	assertVecNear(t, qz.Rotate(qx.Rotate(v)), qz.Mul(qx).Rotate(v))
	assertVecNear(t, r3.Vector{Y: 1}, qz.Mul(qx).Rotate(v))
	// The other order differs; rotations do not commute.
	assertVecNear(t, r3.Vector{Z: 1}, qx.Mul(qz).Rotate(v))
}

func TestInverse(t *testing.T) {
	q := AxisAngle(r3.Vector{X: 1, Y: 2, Z: -0.5}, 0.83)
	v := r3.Vector{X: 3, Y: -1, Z: 7}

	assertVecNear(t, v, q.Inverse().Rotate(q.Rotate(v)))
	assert.True(t, q.Mul(q.Inverse()).ApproxEqual(Identity, tol))
	assert.True(t, q.Inverse().ApproxEqual(q.Conjugate(), tol), "unit inverse is the conjugate")

	// Non-unit quaternions divide by |q|².
	s := Quaternion{W: 2}
	assert.Equal(t, Quaternion{W: 0.5}, s.Inverse())
}

func TestApproxEqualSignFlip(t *testing.T) {
	q := AxisAngle(r3.Vector{Y: 1}, 1.2)
	neg := Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	assert.True(t, q.ApproxEqual(neg, tol))
	assert.False(t, q.ApproxEqual(Identity, tol))
}

func TestQuaternionFromSlice(t *testing.T) {
	q, ok := QuaternionFromSlice([]float64{1, 0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, Identity, q)

	_, ok = QuaternionFromSlice([]float64{1, 0, 0})
	assert.False(t, ok)
	_, ok = QuaternionFromSlice([]float64{math.NaN(), 0, 0, 0})
	assert.False(t, ok)
}

func TestParsePose(t *testing.T) {
	p, err := ParsePose([]float64{1, 2, 3}, []float64{0.7071067811865476, 0, 0, 0.7071067811865476})
	require.NoError(t, err)
	assertVecNear(t, r3.Vector{X: 1, Y: 2, Z: 3}, p.Translation)

	tests := []struct {
		name        string
		translation []float64
		rotation    []float64
	}{
		{"short translation", []float64{1, 2}, []float64{1, 0, 0, 0}},
		{"nan translation", []float64{1, math.NaN(), 3}, []float64{1, 0, 0, 0}},
		{"short rotation", []float64{0, 0, 0}, []float64{1, 0, 0}},
		{"zero rotation", []float64{0, 0, 0}, []float64{0, 0, 0, 0}},
		{"non-unit rotation", []float64{0, 0, 0}, []float64{2, 0, 0, 0}},
		{"nil records", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePose(tt.translation, tt.rotation)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPose))
		})
	}
}

func TestPoseInverseAndApply(t *testing.T) {
	p := Pose{
		Translation: r3.Vector{X: 10, Y: -4, Z: 1.5},
		Rotation:    AxisAngle(r3.Vector{X: 0.2, Y: 0.1, Z: 1}, 2.1),
	}
	v := r3.Vector{X: 1, Y: 2, Z: 3}

	assertVecNear(t, v, p.Inverse().Apply(p.Apply(v)))
	assertVecNear(t, v, p.Apply(p.Inverse().Apply(v)))
}

func TestSizeFromSlice(t *testing.T) {
	s, err := SizeFromSlice([]float64{1.9, 4.5, 1.6})
	require.NoError(t, err)
	assert.Equal(t, Size{W: 1.9, L: 4.5, H: 1.6}, s)

	_, err = SizeFromSlice([]float64{1, -1, 1})
	assert.ErrorIs(t, err, ErrInvalidPose)
	_, err = SizeFromSlice([]float64{1, 1})
	assert.ErrorIs(t, err, ErrInvalidPose)
}
