package main

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/testutil"
)

func TestParseOptionsDefaults(t *testing.T) {
	o, err := parseOptions("camera", nil, flag.ContinueOnError)
	require.NoError(t, err)

	assert.Equal(t, "", o.configPath)
	assert.Equal(t, "data/raw/nuscenes", o.dataRoot)
	assert.Equal(t, "v1.0-mini", o.meta)
	assert.Equal(t, 0, o.workers)
	assert.False(t, o.noLedger)
	assert.Equal(t, filepath.Join("data/processed/nuscenes", ledgerFile), o.ledgerPath())
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative workers", []string{"--workers", "-1"}},
		{"stray argument", []string{"extra"}},
		{"unknown flag", []string{"--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions("lidar", tt.args, flag.ContinueOnError)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigWorkerOverride(t *testing.T) {
	o, err := parseOptions("all", []string{"--workers", "4"}, flag.ContinueOnError)
	require.NoError(t, err)

	cfg, err := o.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.GetWorkers())
	assert.Equal(t, 1600, cfg.GetImageWidth())
}

func TestLoadConfigRejectsNonJSON(t *testing.T) {
	o := &options{configPath: "prep.yaml"}
	_, err := o.loadConfig()
	assert.Error(t, err)
}

var fixtureK = [][]float64{{1600, 0, 800}, {0, 900, 450}, {0, 0, 1}}

func seedInputs(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()

	require.NoError(t, mfs.MkdirAll("/raw/v1.0-mini", 0755))
	tables := testutil.NuScenesTables(testutil.CaptureFixture{
		SampleToken: "s1", Timestamp: 1, Channel: "CAM_FRONT", Filename: "samples/CAM_FRONT/a.jpg",
		Intrinsic: fixtureK,
		Boxes: []testutil.BoxFixture{
			{Token: "car", Category: "vehicle.car", Translation: []float64{0, 0, 10}, Size: []float64{1, 0.5, 0}},
		},
	})
	for name, body := range tables {
		require.NoError(t, mfs.WriteFile(filepath.Join("/raw/v1.0-mini", name), body, 0644))
	}
	require.NoError(t, mfs.MkdirAll("/raw/samples/CAM_FRONT", 0755))
	require.NoError(t, mfs.WriteFile("/raw/samples/CAM_FRONT/a.jpg", []byte("jpeg"), 0644))

	require.NoError(t, mfs.MkdirAll("/in/lidar/LIDAR_TOP", 0755))
	require.NoError(t, mfs.WriteFile("/in/lidar/LIDAR_TOP/sweep.bin",
		testutil.LidarPayload([4]float32{0, 0, 0, 1}, [4]float32{10, 5, 0, 1}), 0644))

	require.NoError(t, mfs.MkdirAll("/in/radar/RADAR_FRONT", 0755))
	require.NoError(t, mfs.WriteFile("/in/radar/RADAR_FRONT/r.pcd", testutil.RadarPCD(
		testutil.RadarPoint{X: 10, Y: 1, RCS: 3},
		testutil.RadarPoint{X: 20, Y: -2, RCS: 8},
	), 0644))
	return mfs
}

func TestRunStagesAll(t *testing.T) {
	mfs := seedInputs(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	o := &options{
		dataRoot:    "/raw",
		meta:        "v1.0-mini",
		input:       "/in",
		out:         "/out",
		dbPath:      dbPath,
		workers:     2,
		summaryHTML: "/out/summary.html",
	}

	require.NoError(t, runStages(context.Background(), mfs, o, stages{camera: true, lidar: true, radar: true}))

	label, err := mfs.ReadFile("/out/camera/labels/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "8 0.500000 0.500000 0.050000 0.100000\n", string(label))

	for _, p := range []string{
		"/out/camera/images/a.jpg",
		"/out/lidar/lidar_bev_img/LIDAR_TOP/bev_sweep.png",
		"/out/radar/radar_heatmap_img/RADAR_FRONT/r_heatmap.png",
		"/out/radar/radar_heatmap_img/RADAR_FRONT/r_scatter.png",
		"/out/summary.html",
	} {
		assert.True(t, mfs.Exists(p), p)
	}
	assert.False(t, mfs.Exists("/out/radar/radar_heatmap_img/RADAR_FRONT/r.html"), "html is off by default")

	ledger, err := runlog.Open(dbPath)
	require.NoError(t, err)
	defer ledger.Close()

	var buf bytes.Buffer
	require.NoError(t, listRuns(context.Background(), &buf, ledger, 5))
	out := buf.String()
	for _, kind := range []string{runlog.KindCameraLabel, runlog.KindLidarBEV, runlog.KindRadarHeatmap, runlog.KindRadarScatter} {
		assert.Contains(t, out, kind)
	}
	assert.NotContains(t, out, "in progress")
}

func TestRunStagesWithoutLedger(t *testing.T) {
	mfs := seedInputs(t)
	o := &options{dataRoot: "/raw", meta: "v1.0-mini", input: "/in", out: "/out", noLedger: true}

	require.NoError(t, runStages(context.Background(), mfs, o, stages{lidar: true}))

	assert.True(t, mfs.Exists("/out/lidar/lidar_bev_img/LIDAR_TOP/bev_sweep.png"))
	assert.False(t, mfs.Exists("/out/camera/labels/a.txt"))
	assert.False(t, mfs.Exists("/out/fusionprep.db"))
}

func TestRunStagesMissingMetadata(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	o := &options{dataRoot: "/nowhere", meta: "v1.0-mini", out: "/out", noLedger: true}

	assert.Error(t, runStages(context.Background(), mfs, o, stages{camera: true}))
}

func TestListRunsEmpty(t *testing.T) {
	ledger, err := runlog.Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer ledger.Close()

	var buf bytes.Buffer
	require.NoError(t, listRuns(context.Background(), &buf, ledger, 0))
	assert.Equal(t, "no runs recorded\n", buf.String())
}

func TestVersionFlagDefault(t *testing.T) {
	if showVersion == nil {
		t.Fatal("showVersion flag not defined")
	}
	assert.False(t, *showVersion)
}
