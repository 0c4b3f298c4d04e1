// Package testutil provides shared test fixtures: encoders for the lidar and
// radar wire formats and nuScenes metadata tables.
//
// It depends on nothing inside the module so any package's
// tests can import it.
package testutil

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// LidarPayload encodes points as a flat lidar sweep: x, y, z, intensity as
// little-endian float32.
func LidarPayload(points ...[4]float32) []byte {
	var buf bytes.Buffer
	for _, p := range points {
		_ = binary.Write(&buf, binary.LittleEndian, p)
	}
	return buf.Bytes()
}

// RadarPoint is one 43-byte radar record.
type RadarPoint struct {
	X, Y, Z        float32
	DynProp        int8
	ID             int16
	RCS            float32
	VX, VY         float32
	VXComp, VYComp float32
	IsQualityValid int8
	AmbigState     int8
	XRms, YRms     int8
	InvalidState   int8
	PDH0           int8
	VXRms, VYRms   int8
}

// RadarHeader is the text header written ahead of a radar payload with the
// given number of points.
func RadarHeader(points int) string {
	return "# .PCD v0.7 - Point Cloud Data file format\n" +
		"VERSION 0.7\n" +
		"FIELDS x y z dyn_prop id rcs vx vy vx_comp vy_comp is_quality_valid ambig_state x_rms y_rms invalid_state pdh0 vx_rms vy_rms\n" +
		"SIZE 4 4 4 1 2 4 4 4 4 4 1 1 1 1 1 1 1 1\n" +
		"TYPE F F F I I F F F F F I I I I I I I I\n" +
		"COUNT 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1\n" +
		fmt.Sprintf("WIDTH %d\n", points) +
		"HEIGHT 1\n" +
		"VIEWPOINT 0 0 0 1 0 0 0\n" +
		fmt.Sprintf("POINTS %d\n", points) +
		"DATA binary\n"
}

// RadarPayload encodes radar records without a header.
func RadarPayload(points ...RadarPoint) []byte {
	var buf bytes.Buffer
	for _, p := range points {
		// RadarPoint has no padding, so binary.Write emits exactly 43 bytes.
		_ = binary.Write(&buf, binary.LittleEndian, p)
	}
	return buf.Bytes()
}

// RadarPCD encodes a complete radar file: header then payload.
func RadarPCD(points ...RadarPoint) []byte {
	return append([]byte(RadarHeader(len(points))), RadarPayload(points...)...)
}

// CaptureFixture is one keyframe capture of one sensor channel together with
// the boxes annotated on its sample. Empty pose slices default to identity.
type CaptureFixture struct {
	SampleToken       string
	Timestamp         int64
	Channel           string
	Modality          string
	Filename          string
	Intrinsic         [][]float64
	SensorTranslation []float64
	SensorRotation    []float64
	EgoTranslation    []float64
	EgoRotation       []float64
	Boxes             []BoxFixture
}

// BoxFixture is one world-frame annotation. Size is [width, length, height].
type BoxFixture struct {
	Token       string
	Category    string
	Translation []float64
	Size        []float64
	Rotation    []float64
}

func orDefault(v, def []float64) []float64 {
	if v == nil {
		return def
	}
	return v
}

// NuScenesTables builds the JSON metadata tables for the given captures,
// keyed by table file name. Token names are derived from the channel and
// sample so fixtures stay readable in failure output.
func NuScenesTables(captures ...CaptureFixture) map[string][]byte {
	type row = map[string]interface{}
	var (
		samples, sampleData, calibrated, sensors []row
		egoPoses, annotations, instances, cats   []row
	)
	seenSample := map[string]bool{}
	seenSensor := map[string]bool{}
	seenCat := map[string]bool{}
	seenAnn := map[string]bool{}

	for i, c := range captures {
		if !seenSample[c.SampleToken] {
			seenSample[c.SampleToken] = true
			samples = append(samples, row{"token": c.SampleToken, "timestamp": c.Timestamp, "scene_token": "scene-0"})
		}
		sensorTok := "sensor-" + c.Channel
		if !seenSensor[c.Channel] {
			seenSensor[c.Channel] = true
			modality := c.Modality
			if modality == "" {
				modality = "camera"
			}
			sensors = append(sensors, row{"token": sensorTok, "channel": c.Channel, "modality": modality})
		}
		key := fmt.Sprintf("%s-%s-%d", c.SampleToken, c.Channel, i)
		cal := row{
			"token":        "cal-" + key,
			"sensor_token": sensorTok,
			"translation":  orDefault(c.SensorTranslation, []float64{0, 0, 0}),
			"rotation":     orDefault(c.SensorRotation, []float64{1, 0, 0, 0}),
		}
		if c.Intrinsic != nil {
			cal["camera_intrinsic"] = c.Intrinsic
		} else {
			cal["camera_intrinsic"] = [][]float64{}
		}
		calibrated = append(calibrated, cal)
		egoPoses = append(egoPoses, row{
			"token":       "ego-" + key,
			"timestamp":   c.Timestamp,
			"translation": orDefault(c.EgoTranslation, []float64{0, 0, 0}),
			"rotation":    orDefault(c.EgoRotation, []float64{1, 0, 0, 0}),
		})
		sampleData = append(sampleData, row{
			"token":                   "sd-" + key,
			"sample_token":            c.SampleToken,
			"ego_pose_token":          "ego-" + key,
			"calibrated_sensor_token": "cal-" + key,
			"timestamp":               c.Timestamp,
			"fileformat":              "jpg",
			"is_key_frame":            true,
			"width":                   1600,
			"height":                  900,
			"filename":                c.Filename,
		})
		for _, b := range c.Boxes {
			if seenAnn[b.Token] {
				continue
			}
			seenAnn[b.Token] = true
			catTok := "cat-" + b.Category
			if !seenCat[b.Category] {
				seenCat[b.Category] = true
				cats = append(cats, row{"token": catTok, "name": b.Category})
			}
			instances = append(instances, row{"token": "inst-" + b.Token, "category_token": catTok})
			annotations = append(annotations, row{
				"token":          b.Token,
				"sample_token":   c.SampleToken,
				"instance_token": "inst-" + b.Token,
				"translation":    b.Translation,
				"size":           b.Size,
				"rotation":       orDefault(b.Rotation, []float64{1, 0, 0, 0}),
			})
		}
	}

	out := map[string][]byte{}
	for name, rows := range map[string][]row{
		"sample.json":            samples,
		"sample_data.json":       sampleData,
		"calibrated_sensor.json": calibrated,
		"sensor.json":            sensors,
		"ego_pose.json":          egoPoses,
		"sample_annotation.json": annotations,
		"instance.json":          instances,
		"category.json":          cats,
	} {
		if rows == nil {
			rows = []row{}
		}
		b, _ := json.Marshal(rows)
		out[name] = b
	}
	return out
}
