// Package frames moves annotated boxes between the world, ego and sensor
// coordinate frames using ego-pose and sensor-extrinsic records.
package frames

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/fusionprep/internal/geom"
)

// ErrMissingCalibrationData is returned when an ego pose or sensor extrinsic
// is absent or malformed. A box transformed with bad calibration would
// silently corrupt labels, so callers abort the frame.
var ErrMissingCalibrationData = errors.New("missing calibration data")

// Placement is the part of an oriented box the transform chain acts on.
type Placement struct {
	Center      r3.Vector
	Orientation geom.Quaternion
}

func checkPose(name string, p *geom.Pose) error {
	if p == nil {
		return fmt.Errorf("%w: %s pose is nil", ErrMissingCalibrationData, name)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingCalibrationData, name, err)
	}
	return nil
}

// ToSensorFrame expresses a world-frame placement in the sensor's frame.
// The order is fixed: subtract the ego translation, undo the ego rotation,
// subtract the sensor translation, undo the sensor rotation. The orientation
// picks up the same two inverse rotations, giving sensor⁻¹ ⊗ ego⁻¹ ⊗ q.
func ToSensorFrame(p Placement, ego, sensor *geom.Pose) (Placement, error) {
	if err := checkPose("ego", ego); err != nil {
		return Placement{}, err
	}
	if err := checkPose("sensor", sensor); err != nil {
		return Placement{}, err
	}

	// world -> ego
	egoInv := ego.Rotation.Inverse()
	c := egoInv.Rotate(p.Center.Sub(ego.Translation))
	q := egoInv.Mul(p.Orientation)

	// ego -> sensor
	sensorInv := sensor.Rotation.Inverse()
	c = sensorInv.Rotate(c.Sub(sensor.Translation))
	q = sensorInv.Mul(q)

	return Placement{Center: c, Orientation: q}, nil
}

// ToWorldFrame is the exact inverse of ToSensorFrame.
func ToWorldFrame(p Placement, ego, sensor *geom.Pose) (Placement, error) {
	if err := checkPose("ego", ego); err != nil {
		return Placement{}, err
	}
	if err := checkPose("sensor", sensor); err != nil {
		return Placement{}, err
	}

	// sensor -> ego
	c := sensor.Rotation.Rotate(p.Center).Add(sensor.Translation)
	q := sensor.Rotation.Mul(p.Orientation)

	// ego -> world
	c = ego.Rotation.Rotate(c).Add(ego.Translation)
	q = ego.Rotation.Mul(q)

	return Placement{Center: c, Orientation: q}, nil
}
