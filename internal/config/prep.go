package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical conversion defaults file.
const DefaultConfigPath = "config/prep.defaults.json"

// Depth policies for boxes whose corners sit at or behind the camera plane.
const (
	DepthPolicyFilterOnly   = "filter_only"
	DepthPolicyRejectBehind = "reject_behind"
)

// PrepConfig holds the tunable parameters of a conversion run. Every field is
// optional; the Get* methods supply the default for anything left unset, so a
// partial JSON file is safe.
type PrepConfig struct {
	// Camera label path
	ImageWidth  *int     `json:"image_width,omitempty"`
	ImageHeight *int     `json:"image_height,omitempty"`
	DepthPolicy *string  `json:"depth_policy,omitempty"` // "filter_only" or "reject_behind"
	MinDepth    *float64 `json:"min_depth,omitempty"`    // metres, used by reject_behind
	Cameras     []string `json:"cameras,omitempty"`

	// Lidar BEV
	BEVXMin       *float64 `json:"bev_x_min,omitempty"`
	BEVXMax       *float64 `json:"bev_x_max,omitempty"`
	BEVYMin       *float64 `json:"bev_y_min,omitempty"`
	BEVYMax       *float64 `json:"bev_y_max,omitempty"`
	BEVResolution *float64 `json:"bev_resolution,omitempty"` // metres per cell
	Lidars        []string `json:"lidars,omitempty"`

	// Radar visualisation
	RadarImageSize   *int     `json:"radar_image_size,omitempty"`
	RadarHeatmapBins *int     `json:"radar_heatmap_bins,omitempty"`
	RadarHTML        *bool    `json:"radar_html,omitempty"`
	Radars           []string `json:"radars,omitempty"`

	// Execution
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPrepConfig returns a PrepConfig with all fields unset.
func EmptyPrepConfig() *PrepConfig {
	return &PrepConfig{}
}

// DefaultPrepConfig returns a PrepConfig with every field set to its default.
func DefaultPrepConfig() *PrepConfig {
	return &PrepConfig{
		ImageWidth:       ptrInt(1600),
		ImageHeight:      ptrInt(900),
		DepthPolicy:      ptrString(DepthPolicyFilterOnly),
		MinDepth:         ptrFloat64(0.1),
		Cameras:          append([]string(nil), defaultCameras...),
		BEVXMin:          ptrFloat64(-50),
		BEVXMax:          ptrFloat64(50),
		BEVYMin:          ptrFloat64(-50),
		BEVYMax:          ptrFloat64(50),
		BEVResolution:    ptrFloat64(0.15625),
		Lidars:           append([]string(nil), defaultLidars...),
		RadarImageSize:   ptrInt(640),
		RadarHeatmapBins: ptrInt(40),
		RadarHTML:        ptrBool(false),
		Radars:           append([]string(nil), defaultRadars...),
		Workers:          ptrInt(1),
	}
}

var (
	defaultCameras = []string{"CAM_FRONT", "CAM_FRONT_LEFT", "CAM_FRONT_RIGHT", "CAM_BACK", "CAM_BACK_LEFT", "CAM_BACK_RIGHT"}
	defaultLidars  = []string{"LIDAR_TOP"}
	defaultRadars  = []string{"RADAR_FRONT", "RADAR_FRONT_LEFT", "RADAR_FRONT_RIGHT", "RADAR_BACK_LEFT", "RADAR_BACK_RIGHT"}
)

// LoadPrepConfig loads a PrepConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadPrepConfig(path string) (*PrepConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPrepConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PrepConfig) Validate() error {
	if c.ImageWidth != nil && *c.ImageWidth <= 0 {
		return fmt.Errorf("image_width must be positive, got %d", *c.ImageWidth)
	}
	if c.ImageHeight != nil && *c.ImageHeight <= 0 {
		return fmt.Errorf("image_height must be positive, got %d", *c.ImageHeight)
	}

	if c.DepthPolicy != nil {
		switch *c.DepthPolicy {
		case DepthPolicyFilterOnly, DepthPolicyRejectBehind:
		default:
			return fmt.Errorf("depth_policy must be %q or %q, got %q",
				DepthPolicyFilterOnly, DepthPolicyRejectBehind, *c.DepthPolicy)
		}
	}
	if c.MinDepth != nil && *c.MinDepth < 0 {
		return fmt.Errorf("min_depth must be non-negative, got %f", *c.MinDepth)
	}

	if c.GetBEVXMax() <= c.GetBEVXMin() {
		return fmt.Errorf("bev_x_max (%f) must exceed bev_x_min (%f)", c.GetBEVXMax(), c.GetBEVXMin())
	}
	if c.GetBEVYMax() <= c.GetBEVYMin() {
		return fmt.Errorf("bev_y_max (%f) must exceed bev_y_min (%f)", c.GetBEVYMax(), c.GetBEVYMin())
	}
	if c.BEVResolution != nil && *c.BEVResolution <= 0 {
		return fmt.Errorf("bev_resolution must be positive, got %f", *c.BEVResolution)
	}

	if c.RadarImageSize != nil && *c.RadarImageSize < 16 {
		return fmt.Errorf("radar_image_size must be at least 16, got %d", *c.RadarImageSize)
	}
	if c.RadarHeatmapBins != nil && *c.RadarHeatmapBins <= 0 {
		return fmt.Errorf("radar_heatmap_bins must be positive, got %d", *c.RadarHeatmapBins)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	return nil
}

// GetImageWidth returns the image_width value or the default.
func (c *PrepConfig) GetImageWidth() int {
	if c.ImageWidth == nil {
		return 1600
	}
	return *c.ImageWidth
}

// GetImageHeight returns the image_height value or the default.
func (c *PrepConfig) GetImageHeight() int {
	if c.ImageHeight == nil {
		return 900
	}
	return *c.ImageHeight
}

// GetDepthPolicy returns the depth_policy value or the default.
func (c *PrepConfig) GetDepthPolicy() string {
	if c.DepthPolicy == nil || *c.DepthPolicy == "" {
		return DepthPolicyFilterOnly
	}
	return *c.DepthPolicy
}

// GetMinDepth returns the min_depth value or the default.
func (c *PrepConfig) GetMinDepth() float64 {
	if c.MinDepth == nil {
		return 0.1
	}
	return *c.MinDepth
}

// GetCameras returns the camera channels to label.
func (c *PrepConfig) GetCameras() []string {
	if len(c.Cameras) == 0 {
		return append([]string(nil), defaultCameras...)
	}
	return c.Cameras
}

// GetBEVXMin returns the bev_x_min value or the default.
func (c *PrepConfig) GetBEVXMin() float64 {
	if c.BEVXMin == nil {
		return -50
	}
	return *c.BEVXMin
}

// GetBEVXMax returns the bev_x_max value or the default.
func (c *PrepConfig) GetBEVXMax() float64 {
	if c.BEVXMax == nil {
		return 50
	}
	return *c.BEVXMax
}

// GetBEVYMin returns the bev_y_min value or the default.
func (c *PrepConfig) GetBEVYMin() float64 {
	if c.BEVYMin == nil {
		return -50
	}
	return *c.BEVYMin
}

// GetBEVYMax returns the bev_y_max value or the default.
func (c *PrepConfig) GetBEVYMax() float64 {
	if c.BEVYMax == nil {
		return 50
	}
	return *c.BEVYMax
}

// GetBEVResolution returns the bev_resolution value or the default.
// 100m / 0.15625 = 640 cells per axis.
func (c *PrepConfig) GetBEVResolution() float64 {
	if c.BEVResolution == nil {
		return 0.15625
	}
	return *c.BEVResolution
}

// GetLidars returns the lidar channels to rasterize.
func (c *PrepConfig) GetLidars() []string {
	if len(c.Lidars) == 0 {
		return append([]string(nil), defaultLidars...)
	}
	return c.Lidars
}

// GetRadarImageSize returns the radar_image_size value or the default.
func (c *PrepConfig) GetRadarImageSize() int {
	if c.RadarImageSize == nil {
		return 640
	}
	return *c.RadarImageSize
}

// GetRadarHeatmapBins returns the radar_heatmap_bins value or the default.
func (c *PrepConfig) GetRadarHeatmapBins() int {
	if c.RadarHeatmapBins == nil {
		return 40
	}
	return *c.RadarHeatmapBins
}

// GetRadarHTML returns the radar_html value or the default.
func (c *PrepConfig) GetRadarHTML() bool {
	if c.RadarHTML == nil {
		return false
	}
	return *c.RadarHTML
}

// GetRadars returns the radar channels to visualise.
func (c *PrepConfig) GetRadars() []string {
	if len(c.Radars) == 0 {
		return append([]string(nil), defaultRadars...)
	}
	return c.Radars
}

// GetWorkers returns the workers value or the default.
func (c *PrepConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}
