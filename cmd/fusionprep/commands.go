package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/banshee-data/fusionprep/internal/bev"
	"github.com/banshee-data/fusionprep/internal/config"
	"github.com/banshee-data/fusionprep/internal/dataset"
	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/monitoring"
	"github.com/banshee-data/fusionprep/internal/pipeline"
	"github.com/banshee-data/fusionprep/internal/projection"
	"github.com/banshee-data/fusionprep/internal/radarviz"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/version"
)

// Output layout under --out.
const (
	cameraLabelSubdir = "camera/labels"
	cameraImageSubdir = "camera/images"
	lidarOutSubdir    = "lidar/lidar_bev_img"
	radarOutSubdir    = "radar/radar_heatmap_img"
	ledgerFile        = "fusionprep.db"
)

type stages struct {
	camera, lidar, radar bool
}

type options struct {
	configPath  string
	dataRoot    string
	meta        string
	input       string
	out         string
	dbPath      string
	noLedger    bool
	workers     int
	summaryHTML string
}

func parseOptions(name string, args []string, handling flag.ErrorHandling) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet(name, handling)
	fs.StringVar(&o.configPath, "config", "", "JSON config file (empty uses built-in defaults)")
	fs.StringVar(&o.dataRoot, "dataroot", "data/raw/nuscenes", "nuScenes dataset root")
	fs.StringVar(&o.meta, "meta", "v1.0-mini", "metadata directory under dataroot")
	fs.StringVar(&o.input, "input", "data/processed/nuscenes", "root holding lidar/<channel> and radar/<channel> inputs")
	fs.StringVar(&o.out, "out", "data/processed/nuscenes", "output root")
	fs.StringVar(&o.dbPath, "db", "", "run ledger database (default <out>/"+ledgerFile+")")
	fs.BoolVar(&o.noLedger, "no-ledger", false, "do not record the run")
	fs.IntVar(&o.workers, "workers", 0, "override the configured worker count")
	fs.StringVar(&o.summaryHTML, "summary-html", "", "write an HTML chart of the run counts to this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("--workers must be >= 0, got %d", o.workers)
	}
	return o, nil
}

func (o *options) ledgerPath() string {
	if o.dbPath != "" {
		return o.dbPath
	}
	return filepath.Join(o.out, ledgerFile)
}

// loadConfig reads the config file (or the defaults) and applies flag
// overrides.
func (o *options) loadConfig() (*config.PrepConfig, error) {
	cfg := config.DefaultPrepConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadPrepConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.workers > 0 {
		cfg.Workers = &o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func handleStages(name string, args []string, st stages) {
	o, err := parseOptions(name, args, flag.ExitOnError)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runStages(ctx, fsutil.OSFileSystem{}, o, st); err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}
}

// runStages executes the selected stages in camera, lidar, radar order and
// records them as one ledger run.
func runStages(ctx context.Context, fsys fsutil.FileSystem, o *options, st stages) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	workers := cfg.GetWorkers()
	monitoring.Infof("%s, workers=%d", version.String(), workers)

	sink := &pipeline.Sink{FS: fsys}
	if !o.noLedger {
		dbPath := o.ledgerPath()
		if err := fsys.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
		ledger, err := runlog.Open(dbPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		run, err := ledger.StartRun(ctx, version.String(), cfgJSON)
		if err != nil {
			return err
		}
		monitoring.Infof("run %s recorded in %s", run.ID, dbPath)
		sink.Ledger = ledger
		sink.RunID = run.ID
	}

	stats := pipeline.NewStats()
	start := time.Now()

	err = func() error {
		if st.camera {
			if err := runCamera(ctx, fsys, o, cfg, sink, stats); err != nil {
				return err
			}
		}
		if st.lidar {
			if err := runLidar(ctx, o, cfg, sink, stats); err != nil {
				return err
			}
		}
		if st.radar {
			if err := runRadar(ctx, o, cfg, sink, stats); err != nil {
				return err
			}
		}
		return nil
	}()

	if sink.Ledger != nil {
		// Record the finish time even when cancelled.
		if ferr := sink.Ledger.FinishRun(context.Background(), sink.RunID); ferr != nil {
			monitoring.Errorf("failed to finish run %s: %v", sink.RunID, ferr)
		}
	}
	stats.LogSummary()
	monitoring.Infof("finished in %s", time.Since(start).Round(time.Millisecond))

	if o.summaryHTML != "" {
		if herr := writeSummaryHTML(fsys, o.summaryHTML, stats); herr != nil {
			monitoring.Errorf("failed to write summary chart: %v", herr)
		}
	}
	if errors.Is(err, context.Canceled) {
		monitoring.Warnf("interrupted; outputs so far are kept")
	}
	return err
}

func runCamera(ctx context.Context, fsys fsutil.FileSystem, o *options, cfg *config.PrepConfig, sink *pipeline.Sink, stats *pipeline.Stats) error {
	policy, err := projection.ParseDepthPolicy(cfg.GetDepthPolicy())
	if err != nil {
		return err
	}
	tables, err := dataset.LoadTables(fsys, filepath.Join(o.dataRoot, o.meta))
	if err != nil {
		return err
	}
	labeler := &pipeline.CameraLabeler{
		Source:   tables,
		Sink:     sink,
		Stats:    stats,
		LabelDir: filepath.Join(o.out, cameraLabelSubdir),
		ImageDir: filepath.Join(o.out, cameraImageSubdir),
		DataRoot: o.dataRoot,
		Width:    cfg.GetImageWidth(),
		Height:   cfg.GetImageHeight(),
		Policy:   policy,
		MinDepth: cfg.GetMinDepth(),
	}
	return labeler.LabelAll(ctx, cfg.GetCameras(), cfg.GetWorkers())
}

func runLidar(ctx context.Context, o *options, cfg *config.PrepConfig, sink *pipeline.Sink, stats *pipeline.Stats) error {
	win := bev.Window{
		XMin: cfg.GetBEVXMin(), XMax: cfg.GetBEVXMax(),
		YMin: cfg.GetBEVYMin(), YMax: cfg.GetBEVYMax(),
	}
	for _, ch := range cfg.GetLidars() {
		l := &pipeline.LidarBEV{
			Sink:       sink,
			Stats:      stats,
			OutDir:     filepath.Join(o.out, lidarOutSubdir, ch),
			Window:     win,
			Resolution: cfg.GetBEVResolution(),
		}
		if err := l.ProcessDir(ctx, filepath.Join(o.input, "lidar", ch), cfg.GetWorkers()); err != nil {
			return err
		}
	}
	return nil
}

func runRadar(ctx context.Context, o *options, cfg *config.PrepConfig, sink *pipeline.Sink, stats *pipeline.Stats) error {
	r := &pipeline.RadarViz{
		Sink:    sink,
		Stats:   stats,
		OutRoot: filepath.Join(o.out, radarOutSubdir),
		Options: radarviz.Options{Size: cfg.GetRadarImageSize(), Bins: cfg.GetRadarHeatmapBins()},
		HTML:    cfg.GetRadarHTML(),
	}
	return r.ProcessChannels(ctx, filepath.Join(o.input, "radar"), cfg.GetRadars(), cfg.GetWorkers())
}

func writeSummaryHTML(fsys fsutil.FileSystem, path string, stats *pipeline.Stats) error {
	var buf bytes.Buffer
	if err := stats.RenderSummaryHTML(&buf, version.String()); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return fsys.WriteFile(path, buf.Bytes(), 0644)
}

func handleRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", filepath.Join("data/processed/nuscenes", ledgerFile), "run ledger database")
	limit := fs.Int("limit", 10, "number of most recent runs to list")
	fs.Parse(args)

	ledger, err := runlog.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run ledger: %v", err)
	}
	defer ledger.Close()

	if err := listRuns(context.Background(), os.Stdout, ledger, *limit); err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
}

// listRuns prints the most recent runs with their per-kind output counts.
func listRuns(ctx context.Context, w io.Writer, ledger *runlog.Ledger, limit int) error {
	runs, err := ledger.Runs(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		finished := "in progress"
		if !r.Finished.IsZero() {
			finished = r.Finished.Sub(r.Started).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s  %s  %s  (%s)\n", r.ID, r.Started.Format(time.RFC3339), r.Version, finished)
		sums, err := ledger.Summarize(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, s := range sums {
			fmt.Fprintf(w, "    %-14s %-7s files=%d items=%d\n", s.Kind, s.Status, s.Files, s.Items)
		}
	}
	return nil
}
