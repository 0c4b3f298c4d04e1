package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/banshee-data/fusionprep/internal/dataset"
	"github.com/banshee-data/fusionprep/internal/frames"
	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/geom"
	"github.com/banshee-data/fusionprep/internal/monitoring"
	"github.com/banshee-data/fusionprep/internal/projection"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/security"
)

// CameraLabeler turns the annotations of each camera keyframe into a YOLO
// label file named after the frame's image.
type CameraLabeler struct {
	Source dataset.Source
	Sink   *Sink
	Stats  *Stats

	// LabelDir receives <image-base>.txt files.
	LabelDir string
	// ImageDir, if set, receives a copy of each labelled image read from
	// DataRoot. Existing copies are left alone.
	ImageDir string
	DataRoot string
	// Images is read from when copying; it defaults to Sink.FS.
	Images fsutil.FileSystem

	Width, Height int
	Policy        projection.DepthPolicy
	MinDepth      float64
}

type cameraJob struct {
	sample  dataset.Sample
	channel string
}

// LabelAll labels every sample for each camera channel.
func (c *CameraLabeler) LabelAll(ctx context.Context, channels []string, workers int) error {
	samples := c.Source.Samples()
	jobs := make([]cameraJob, 0, len(samples)*len(channels))
	for _, s := range samples {
		for _, ch := range channels {
			jobs = append(jobs, cameraJob{sample: s, channel: ch})
		}
	}
	monitoring.Infof("labelling %d samples x %d cameras", len(samples), len(channels))
	return Run(ctx, jobs, workers, func(ctx context.Context, j cameraJob) error {
		_, err := c.LabelFrame(ctx, j.sample, j.channel)
		return err
	})
}

// frameCalibration is everything needed to project one camera frame.
type frameCalibration struct {
	data      dataset.SampleData
	ego       geom.Pose
	sensor    geom.Pose
	projector projection.Projector
}

func (c *CameraLabeler) calibration(token string) (*frameCalibration, error) {
	sd, err := c.Source.SampleData(token)
	if err != nil {
		return nil, err
	}
	cs, err := c.Source.CalibratedSensor(sd.CalibratedSensorToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frames.ErrMissingCalibrationData, err)
	}
	ep, err := c.Source.EgoPose(sd.EgoPoseToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frames.ErrMissingCalibrationData, err)
	}
	sensor, err := cs.Pose()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frames.ErrMissingCalibrationData, err)
	}
	ego, err := ep.Pose()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frames.ErrMissingCalibrationData, err)
	}
	intr, err := projection.NewIntrinsics(cs.CameraIntrinsic, c.Width, c.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frames.ErrMissingCalibrationData, err)
	}
	return &frameCalibration{
		data:      sd,
		ego:       ego,
		sensor:    sensor,
		projector: projection.Projector{Intrinsics: intr, Policy: c.Policy, MinDepth: c.MinDepth},
	}, nil
}

// labelName maps an image path from sample_data to its label file name.
func labelName(filename string) string {
	base := path.Base(filepath.ToSlash(filename))
	return security.SanitizeFilename(strings.TrimSuffix(base, path.Ext(base))) + ".txt"
}

// LabelFrame writes the label file for one sample and camera and returns the
// number of labels in it. Annotation problems skip the annotation; missing
// calibration skips the frame. Only a storage failure is returned as an
// error.
func (c *CameraLabeler) LabelFrame(ctx context.Context, sample dataset.Sample, channel string) (int, error) {
	token, ok := sample.Data[channel]
	if !ok {
		monitoring.Warnf("sample %s has no %s capture", sample.Token, channel)
		c.Stats.Skipped(StageCamera)
		return 0, nil
	}
	key := channel + "/" + sample.Token

	cal, err := c.calibration(token)
	if err != nil {
		monitoring.Errorf("%s: %v", key, err)
		c.Stats.Failed(StageCamera)
		c.Sink.Fail(ctx, runlog.KindCameraLabel, key, err)
		return 0, nil
	}

	var boxes []projection.YoloBox
	for _, annToken := range sample.Anns {
		yb, err := c.labelAnnotation(annToken, cal)
		switch {
		case err == nil:
			boxes = append(boxes, yb)
			c.Stats.Processed(StageCameraBoxes, 1)
		case errors.Is(err, projection.ErrInvalidProjectedBox), errors.Is(err, projection.ErrUnknownCategory):
			c.Stats.Skipped(StageCameraBoxes)
		default:
			monitoring.Warnf("%s: skipping annotation %s: %v", key, annToken, err)
			c.Stats.Skipped(StageCameraBoxes)
		}
	}

	status := runlog.StatusOK
	if len(boxes) == 0 {
		status = runlog.StatusEmpty
	}
	if _, err := c.Sink.Write(ctx, runlog.KindCameraLabel, key, c.LabelDir, labelName(cal.data.Filename),
		projection.FormatLabels(boxes), len(boxes), status); err != nil {
		return 0, err
	}
	c.Stats.Processed(StageCamera, len(boxes))

	if c.ImageDir != "" {
		c.copyImage(cal.data.Filename)
	}
	return len(boxes), nil
}

func (c *CameraLabeler) labelAnnotation(token string, cal *frameCalibration) (projection.YoloBox, error) {
	ann, err := c.Source.Annotation(token)
	if err != nil {
		return projection.YoloBox{}, err
	}
	if _, ok := projection.ClassID(ann.CategoryName); !ok {
		return projection.YoloBox{}, fmt.Errorf("%w: %q", projection.ErrUnknownCategory, ann.CategoryName)
	}
	center, err := geom.VectorFromSlice(ann.Translation)
	if err != nil {
		return projection.YoloBox{}, fmt.Errorf("translation: %w", err)
	}
	size, err := geom.SizeFromSlice(ann.Size)
	if err != nil {
		return projection.YoloBox{}, fmt.Errorf("size: %w", err)
	}
	rot, ok := geom.QuaternionFromSlice(ann.Rotation)
	if !ok {
		return projection.YoloBox{}, fmt.Errorf("rotation: %w: %v", geom.ErrInvalidPose, ann.Rotation)
	}

	box := projection.Box{Center: center, Size: size, Orientation: rot, Category: ann.CategoryName}
	placed, err := frames.ToSensorFrame(box.Placement(), &cal.ego, &cal.sensor)
	if err != nil {
		return projection.YoloBox{}, err
	}
	return cal.projector.Project(box.WithPlacement(placed))
}

func (c *CameraLabeler) copyImage(filename string) {
	name := path.Base(filepath.ToSlash(filename))
	dst, err := security.JoinWithin(c.ImageDir, name)
	if err != nil {
		monitoring.Warnf("image %s: %v", filename, err)
		return
	}
	if c.Sink.FS.Exists(dst) {
		return
	}
	src, err := security.JoinWithin(c.DataRoot, filepath.FromSlash(filename))
	if err != nil {
		monitoring.Warnf("image %s: %v", filename, err)
		return
	}
	images := c.Images
	if images == nil {
		images = c.Sink.FS
	}
	data, err := images.ReadFile(src)
	if err != nil {
		monitoring.Warnf("source image not found: %s", src)
		return
	}
	if err := c.Sink.FS.MkdirAll(c.ImageDir, 0755); err != nil {
		monitoring.Warnf("image dir %s: %v", c.ImageDir, err)
		return
	}
	if err := c.Sink.FS.WriteFile(dst, data, 0644); err != nil {
		monitoring.Warnf("copy %s: %v", src, err)
	}
}
