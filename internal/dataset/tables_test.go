package dataset

import (
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/testutil"
)

const root = "/data/v1.0-mini"

func writeTables(t *testing.T, captures ...testutil.CaptureFixture) *fsutil.MemoryFileSystem {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll(root, 0755))
	for name, body := range testutil.NuScenesTables(captures...) {
		require.NoError(t, mfs.WriteFile(filepath.Join(root, name), body, 0644))
	}
	return mfs
}

func fixture() []testutil.CaptureFixture {
	car := testutil.BoxFixture{Token: "ann-car", Category: "vehicle.car", Translation: []float64{10, 0, 1}, Size: []float64{2, 4, 1.5}}
	ped := testutil.BoxFixture{Token: "ann-ped", Category: "human.pedestrian.adult", Translation: []float64{5, 2, 1}, Size: []float64{0.6, 0.6, 1.8}}
	return []testutil.CaptureFixture{
		{
			SampleToken: "s2", Timestamp: 200, Channel: "CAM_FRONT", Filename: "samples/CAM_FRONT/b.jpg",
			Intrinsic:      [][]float64{{1266, 0, 816}, {0, 1266, 491}, {0, 0, 1}},
			EgoTranslation: []float64{100, 50, 0},
			Boxes:          []testutil.BoxFixture{car},
		},
		{
			SampleToken: "s1", Timestamp: 100, Channel: "CAM_FRONT", Filename: "samples/CAM_FRONT/a.jpg",
			Intrinsic: [][]float64{{1266, 0, 816}, {0, 1266, 491}, {0, 0, 1}},
			Boxes:     []testutil.BoxFixture{ped},
		},
		{
			SampleToken: "s1", Timestamp: 100, Channel: "RADAR_FRONT", Modality: "radar", Filename: "samples/RADAR_FRONT/a.pcd",
		},
	}
}

func TestLoadTables(t *testing.T) {
	tbl, err := LoadTables(writeTables(t, fixture()...), root)
	require.NoError(t, err)

	samples := tbl.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, "s1", samples[0].Token, "ordered by timestamp")
	assert.Equal(t, "s2", samples[1].Token)

	s1 := samples[0]
	assert.Len(t, s1.Data, 2)
	assert.Equal(t, []string{"ann-ped"}, s1.Anns)

	sd, err := tbl.SampleData(s1.Data["CAM_FRONT"])
	require.NoError(t, err)
	assert.Equal(t, "CAM_FRONT", sd.Channel)
	assert.Equal(t, "camera", sd.Modality)
	assert.Equal(t, "samples/CAM_FRONT/a.jpg", sd.Filename)

	rd, err := tbl.SampleData(s1.Data["RADAR_FRONT"])
	require.NoError(t, err)
	assert.Equal(t, "radar", rd.Modality)

	cs, err := tbl.CalibratedSensor(sd.CalibratedSensorToken)
	require.NoError(t, err)
	require.Len(t, cs.CameraIntrinsic, 3)
	assert.Equal(t, 1266.0, cs.CameraIntrinsic[0][0])

	ann, err := tbl.Annotation("ann-car")
	require.NoError(t, err)
	assert.Equal(t, "vehicle.car", ann.CategoryName)
	assert.Equal(t, "s2", ann.SampleToken)
	assert.Equal(t, []float64{2, 4, 1.5}, ann.Size)
}

func TestPoses(t *testing.T) {
	tbl, err := LoadTables(writeTables(t, fixture()...), root)
	require.NoError(t, err)

	sd, err := tbl.SampleData(tbl.Samples()[1].Data["CAM_FRONT"])
	require.NoError(t, err)
	ego, err := tbl.EgoPose(sd.EgoPoseToken)
	require.NoError(t, err)
	p, err := ego.Pose()
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{X: 100, Y: 50}, p.Translation)

	bad := EgoPose{Token: "broken", Translation: []float64{1, 2}, Rotation: []float64{1, 0, 0, 0}}
	_, err = bad.Pose()
	assert.Error(t, err)

	badCal := CalibratedSensor{Token: "broken", Translation: []float64{0, 0, 0}, Rotation: []float64{2, 0, 0, 0}}
	_, err = badCal.Pose()
	assert.Error(t, err)
}

func TestNotFound(t *testing.T) {
	tbl, err := LoadTables(writeTables(t, fixture()...), root)
	require.NoError(t, err)

	_, err = tbl.SampleData("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tbl.CalibratedSensor("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tbl.EgoPose("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tbl.Annotation("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadTablesMissingFile(t *testing.T) {
	mfs := writeTables(t, fixture()...)
	files := testutil.NuScenesTables(fixture()...)
	delete(files, "ego_pose.json")

	partial := fsutil.NewMemoryFileSystem()
	require.NoError(t, partial.MkdirAll(root, 0755))
	for name, body := range files {
		require.NoError(t, partial.WriteFile(filepath.Join(root, name), body, 0644))
	}
	_, err := LoadTables(partial, root)
	assert.Error(t, err)

	require.NoError(t, mfs.WriteFile(filepath.Join(root, "category.json"), []byte("{not json"), 0644))
	_, err = LoadTables(mfs, root)
	assert.Error(t, err)
}
