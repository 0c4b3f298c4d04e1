package pipeline

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/fusionprep/internal/monitoring"
	"github.com/banshee-data/fusionprep/internal/pointcloud"
	"github.com/banshee-data/fusionprep/internal/radarviz"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/security"
)

// RadarViz renders radar files into per-channel scatter and heatmap images.
type RadarViz struct {
	Sink    *Sink
	Stats   *Stats
	OutRoot string // images go to OutRoot/<channel>/
	Options radarviz.Options
	HTML    bool
}

type radarRender struct {
	kind, suffix string
	draw         func(io.Writer) error
}

type radarJob struct {
	channel string
	path    string
}

// ProcessChannels renders every .pcd under inRoot/<channel>/ for each channel.
func (r *RadarViz) ProcessChannels(ctx context.Context, inRoot string, channels []string, workers int) error {
	var jobs []radarJob
	for _, ch := range channels {
		dir := filepath.Join(inRoot, ch)
		names, err := r.Sink.FS.ListFiles(dir, ".pcd")
		if err != nil || len(names) == 0 {
			monitoring.Warnf("no .pcd files found in %s", dir)
			continue
		}
		monitoring.Infof("processing channel %s: %d files", ch, len(names))
		for _, n := range names {
			jobs = append(jobs, radarJob{channel: ch, path: filepath.Join(dir, n)})
		}
	}
	return Run(ctx, jobs, workers, func(ctx context.Context, j radarJob) error {
		return r.ProcessFile(ctx, j.channel, j.path)
	})
}

// ProcessFile renders one radar file. Malformed files are logged and skipped;
// files with no detections log a warning and produce no images.
func (r *RadarViz) ProcessFile(ctx context.Context, channel, path string) error {
	name := filepath.Base(path)
	key := channel + "/" + name
	base := security.SanitizeFilename(strings.TrimSuffix(name, filepath.Ext(name)))
	outDir := filepath.Join(r.OutRoot, security.SanitizeFilename(channel))

	f, err := r.Sink.FS.Open(path)
	if err != nil {
		monitoring.Errorf("failed to open %s: %v", path, err)
		r.Stats.Failed(StageRadar)
		r.Sink.Fail(ctx, runlog.KindRadarScatter, key, err)
		return nil
	}
	cloud, _, err := pointcloud.DecodeRadar(f)
	f.Close()
	if err != nil {
		monitoring.Warnf("%s: %v", key, err)
		r.Stats.Failed(StageRadar)
		r.Sink.Fail(ctx, runlog.KindRadarScatter, key, err)
		return nil
	}
	if cloud.Len() == 0 {
		monitoring.Warnf("file %s is empty or invalid, skipping", key)
		r.Stats.Skipped(StageRadar)
		r.Sink.Empty(ctx, runlog.KindRadarScatter, key, "no points")
		return nil
	}

	xs, _ := cloud.Column("x")
	ys, _ := cloud.Column("y")
	xMin, xMax, _ := cloud.Bounds("x")
	yMin, yMax, _ := cloud.Bounds("y")
	monitoring.Logf("[%s] X min/max: %.2f / %.2f", channel, xMin, xMax)
	monitoring.Logf("[%s] Y min/max: %.2f / %.2f", channel, yMin, yMax)
	monitoring.Logf("[%s] points: %d", channel, cloud.Len())

	opts := r.Options
	opts.Title = channel
	renders := []radarRender{
		{runlog.KindRadarHeatmap, "_heatmap.png", func(w io.Writer) error { return radarviz.Heatmap(w, xs, ys, opts) }},
		{runlog.KindRadarScatter, "_scatter.png", func(w io.Writer) error { return radarviz.Scatter(w, xs, ys, opts) }},
	}
	if r.HTML {
		rcs, _ := cloud.Column("rcs")
		renders = append(renders, radarRender{runlog.KindRadarHTML, ".html", func(w io.Writer) error { return radarviz.ScatterHTML(w, xs, ys, rcs, opts) }})
	}

	for _, rd := range renders {
		var buf bytes.Buffer
		if err := rd.draw(&buf); err != nil {
			monitoring.Errorf("%s: render %s: %v", key, rd.kind, err)
			r.Stats.Failed(StageRadar)
			r.Sink.Fail(ctx, rd.kind, key, err)
			return nil
		}
		out, err := r.Sink.Write(ctx, rd.kind, key, outDir, base+rd.suffix, buf.Bytes(), cloud.Len(), runlog.StatusOK)
		if err != nil {
			return err
		}
		monitoring.Infof("saved: %s", out)
	}
	r.Stats.Processed(StageRadar, cloud.Len())
	return nil
}
