package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/fusionprep/internal/version"
)

var showVersion = flag.Bool("version", false, "print version and exit")

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "camera":
		handleStages(command, args, stages{camera: true})
	case "lidar":
		handleStages(command, args, stages{lidar: true})
	case "radar":
		handleStages(command, args, stages{radar: true})
	case "all":
		handleStages(command, args, stages{camera: true, lidar: true, radar: true})
	case "runs":
		handleRuns(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fusionprep - nuScenes sensor data preparation

Usage: fusionprep [-version] <command> [options]

Commands:
  camera     Project 3D annotations into YOLO label files per camera frame
  lidar      Rasterize lidar sweeps into bird's-eye-view occupancy PNGs
  radar      Render radar point clouds as scatter and heatmap images
  all        Run camera, lidar and radar in that order
  runs       List recorded runs and their output summaries
  version    Show fusionprep version
  help       Show this help message

Common Flags:
  --config <file>        JSON config (default: built-in defaults)
  --dataroot <dir>       nuScenes root holding samples/ and the metadata dir
  --meta <name>          Metadata directory under dataroot (default: v1.0-mini)
  --input <dir>          Root holding lidar/<channel> and radar/<channel> inputs
  --out <dir>            Output root
  --db <file>            Run ledger database (default: <out>/fusionprep.db)
  --no-ledger            Do not record the run
  --workers <n>          Override the configured worker count
  --summary-html <file>  Write an HTML chart of the run counts

Examples:
  fusionprep camera --dataroot data/raw/nuscenes --out data/processed/nuscenes
  fusionprep all --config config/prep.defaults.json --workers 4
  fusionprep runs --limit 5`)
}
