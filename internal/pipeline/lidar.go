package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/banshee-data/fusionprep/internal/bev"
	"github.com/banshee-data/fusionprep/internal/monitoring"
	"github.com/banshee-data/fusionprep/internal/pointcloud"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/security"
)

// LidarExts are the sweep file extensions picked up from an input directory.
// Both hold headerless float32 x, y, z, intensity records.
var LidarExts = []string{".bin", ".pcd"}

// LidarBEV rasterizes lidar sweeps into occupancy PNGs.
type LidarBEV struct {
	Sink       *Sink
	Stats      *Stats
	OutDir     string
	Window     bev.Window
	Resolution float64
}

// bevName maps a sweep file name to its image name.
func bevName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return "bev_" + security.SanitizeFilename(base) + ".png"
}

// ProcessDir rasterizes every sweep in dir.
func (l *LidarBEV) ProcessDir(ctx context.Context, dir string, workers int) error {
	names, err := l.Sink.FS.ListFiles(dir, LidarExts...)
	if err != nil {
		monitoring.Warnf("cannot list lidar dir %s: %v", dir, err)
		return nil
	}
	if len(names) == 0 {
		monitoring.Warnf("no .bin/.pcd files in %s", dir)
		return nil
	}
	return Run(ctx, names, workers, func(ctx context.Context, name string) error {
		return l.ProcessFile(ctx, filepath.Join(dir, name))
	})
}

// ProcessFile rasterizes one sweep. A malformed sweep is logged and skipped;
// an empty rasterization is written with a warning.
func (l *LidarBEV) ProcessFile(ctx context.Context, path string) error {
	key := filepath.Base(filepath.Dir(path)) + "/" + filepath.Base(path)

	payload, err := l.Sink.FS.ReadFile(path)
	if err != nil {
		monitoring.Errorf("failed to read %s: %v", path, err)
		l.Stats.Failed(StageLidar)
		l.Sink.Fail(ctx, runlog.KindLidarBEV, key, err)
		return nil
	}
	cloud, err := pointcloud.DecodeLidar(payload)
	if err != nil {
		monitoring.Warnf("%s: %v", key, err)
		l.Stats.Failed(StageLidar)
		l.Sink.Fail(ctx, runlog.KindLidarBEV, key, err)
		return nil
	}
	xs, _ := cloud.Column("x")
	ys, _ := cloud.Column("y")
	monitoring.Infof("%s: %d points", key, cloud.Len())

	grid, err := bev.Rasterize(xs, ys, l.Window, l.Resolution)
	if err != nil {
		// Window and resolution are validated up front, so this is a
		// configuration error shared by every file.
		return err
	}
	status := runlog.StatusOK
	if grid.Points == 0 {
		monitoring.Warnf("BEV empty for %s", key)
		status = runlog.StatusEmpty
	}

	var buf bytes.Buffer
	if err := grid.EncodePNG(&buf); err != nil {
		return err
	}
	out, err := l.Sink.Write(ctx, runlog.KindLidarBEV, key, l.OutDir, bevName(path), buf.Bytes(), grid.Points, status)
	if err != nil {
		return err
	}
	monitoring.Infof("saved BEV image: %s", out)
	l.Stats.Processed(StageLidar, cloud.Len())
	return nil
}
