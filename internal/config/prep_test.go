package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptyPrepConfig()

	assert.Equal(t, 1600, cfg.GetImageWidth())
	assert.Equal(t, 900, cfg.GetImageHeight())
	assert.Equal(t, DepthPolicyFilterOnly, cfg.GetDepthPolicy())
	assert.Equal(t, 0.1, cfg.GetMinDepth())
	assert.Equal(t, -50.0, cfg.GetBEVXMin())
	assert.Equal(t, 50.0, cfg.GetBEVXMax())
	assert.Equal(t, -50.0, cfg.GetBEVYMin())
	assert.Equal(t, 50.0, cfg.GetBEVYMax())
	assert.Equal(t, 0.15625, cfg.GetBEVResolution())
	assert.Equal(t, 640, cfg.GetRadarImageSize())
	assert.Equal(t, 40, cfg.GetRadarHeatmapBins())
	assert.False(t, cfg.GetRadarHTML())
	assert.Equal(t, 1, cfg.GetWorkers())
	assert.Len(t, cfg.GetCameras(), 6)
	assert.Equal(t, []string{"LIDAR_TOP"}, cfg.GetLidars())
	assert.Len(t, cfg.GetRadars(), 5)
	require.NoError(t, cfg.Validate())
}

func TestDefaultPrepConfigMatchesGetters(t *testing.T) {
	def := DefaultPrepConfig()
	empty := EmptyPrepConfig()

	require.NoError(t, def.Validate())
	assert.Equal(t, empty.GetImageWidth(), def.GetImageWidth())
	assert.Equal(t, empty.GetBEVResolution(), def.GetBEVResolution())
	assert.Equal(t, empty.GetCameras(), def.GetCameras())
	assert.Equal(t, empty.GetRadars(), def.GetRadars())

	// Mutating the returned slice must not leak into the package defaults.
	def.Cameras[0] = "CAM_X"
	assert.Equal(t, "CAM_FRONT", DefaultPrepConfig().Cameras[0])
}

func TestLoadPrepConfig(t *testing.T) {
	path := writeConfig(t, "prep.json", `{
  "image_width": 1280,
  "depth_policy": "reject_behind",
  "min_depth": 0.5,
  "bev_resolution": 0.25,
  "cameras": ["CAM_FRONT"],
  "workers": 4
}`)

	cfg, err := LoadPrepConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.GetImageWidth())
	assert.Equal(t, 900, cfg.GetImageHeight(), "unset field keeps default")
	assert.Equal(t, DepthPolicyRejectBehind, cfg.GetDepthPolicy())
	assert.Equal(t, 0.5, cfg.GetMinDepth())
	assert.Equal(t, 0.25, cfg.GetBEVResolution())
	assert.Equal(t, []string{"CAM_FRONT"}, cfg.GetCameras())
	assert.Equal(t, 4, cfg.GetWorkers())
}

func TestLoadPrepConfig_Defaults(t *testing.T) {
	cfg, err := LoadPrepConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	assert.Equal(t, DefaultPrepConfig(), cfg)
}

func TestLoadPrepConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "prep.yaml", `{}`, ".json extension"},
		{"bad json", "prep.json", `{"image_width": }`, "parse config JSON"},
		{"bad policy", "prep.json", `{"depth_policy": "clip"}`, "depth_policy"},
		{"negative width", "prep.json", `{"image_width": -1}`, "image_width"},
		{"inverted window", "prep.json", `{"bev_x_min": 10, "bev_x_max": -10}`, "bev_x_max"},
		{"zero resolution", "prep.json", `{"bev_resolution": 0}`, "bev_resolution"},
		{"zero workers", "prep.json", `{"workers": 0}`, "workers"},
		{"zero bins", "prep.json", `{"radar_heatmap_bins": 0}`, "radar_heatmap_bins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadPrepConfig(path)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should mention %q", err, tt.wantErr)
		})
	}

	_, err := LoadPrepConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
