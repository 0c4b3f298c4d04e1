package dataset

import (
	"errors"
	"fmt"

	"github.com/banshee-data/fusionprep/internal/geom"
)

// ErrNotFound is returned when a token does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// Sample is one annotated keyframe. Data maps a sensor channel to the token
// of its keyframe sample_data record; Anns lists annotation tokens.
type Sample struct {
	Token      string
	Timestamp  int64
	SceneToken string
	Data       map[string]string
	Anns       []string
}

// SampleData is one sensor capture.
type SampleData struct {
	Token                 string `json:"token"`
	SampleToken           string `json:"sample_token"`
	EgoPoseToken          string `json:"ego_pose_token"`
	CalibratedSensorToken string `json:"calibrated_sensor_token"`
	Timestamp             int64  `json:"timestamp"`
	FileFormat            string `json:"fileformat"`
	IsKeyFrame            bool   `json:"is_key_frame"`
	Width                 int    `json:"width"`
	Height                int    `json:"height"`
	Filename              string `json:"filename"`

	// Resolved through calibrated_sensor -> sensor.
	Channel  string `json:"-"`
	Modality string `json:"-"`
}

// CalibratedSensor is a sensor's extrinsic (and, for cameras, intrinsic)
// calibration relative to the ego frame.
type CalibratedSensor struct {
	Token           string      `json:"token"`
	SensorToken     string      `json:"sensor_token"`
	Translation     []float64   `json:"translation"`
	Rotation        []float64   `json:"rotation"`
	CameraIntrinsic [][]float64 `json:"camera_intrinsic"`
}

// Pose returns the sensor-in-ego pose.
func (c CalibratedSensor) Pose() (geom.Pose, error) {
	p, err := geom.ParsePose(c.Translation, c.Rotation)
	if err != nil {
		return geom.Pose{}, fmt.Errorf("calibrated_sensor %s: %w", c.Token, err)
	}
	return p, nil
}

// EgoPose is the vehicle pose in the world frame at a capture time.
type EgoPose struct {
	Token       string    `json:"token"`
	Timestamp   int64     `json:"timestamp"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
}

// Pose returns the ego-in-world pose.
func (e EgoPose) Pose() (geom.Pose, error) {
	p, err := geom.ParsePose(e.Translation, e.Rotation)
	if err != nil {
		return geom.Pose{}, fmt.Errorf("ego_pose %s: %w", e.Token, err)
	}
	return p, nil
}

// Annotation is a world-frame 3D box. Size is [width, length, height].
type Annotation struct {
	Token         string    `json:"token"`
	SampleToken   string    `json:"sample_token"`
	InstanceToken string    `json:"instance_token"`
	Translation   []float64 `json:"translation"`
	Size          []float64 `json:"size"`
	Rotation      []float64 `json:"rotation"`
	NumLidarPts   int       `json:"num_lidar_pts"`
	NumRadarPts   int       `json:"num_radar_pts"`

	// Resolved through instance -> category.
	CategoryName string `json:"-"`
}

// Source is read access to the metadata tables.
type Source interface {
	// Samples returns every sample ordered by timestamp.
	Samples() []Sample
	SampleData(token string) (SampleData, error)
	CalibratedSensor(token string) (CalibratedSensor, error)
	EgoPose(token string) (EgoPose, error)
	Annotation(token string) (Annotation, error)
}
