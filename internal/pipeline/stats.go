package pipeline

import (
	"sort"
	"sync"

	"github.com/banshee-data/fusionprep/internal/monitoring"
)

// Stage names used in Stats.
const (
	StageCamera      = "camera"
	StageCameraBoxes = "camera_boxes"
	StageLidar       = "lidar"
	StageRadar       = "radar"
)

// StageCounts tallies one stage. Items counts the payload of processed units:
// labels for camera frames, points for lidar and radar files.
type StageCounts struct {
	Processed int
	Skipped   int
	Failed    int
	Items     int
}

// Stats collects per-stage counts. It is safe for concurrent use. A nil
// *Stats discards counts and reads as empty.
type Stats struct {
	mu     sync.Mutex
	stages map[string]*StageCounts
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{stages: make(map[string]*StageCounts)}
}

func (s *Stats) stage(name string) *StageCounts {
	c, ok := s.stages[name]
	if !ok {
		c = &StageCounts{}
		s.stages[name] = c
	}
	return c
}

// Processed counts one unit that produced output.
func (s *Stats) Processed(stage string, items int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.stage(stage)
	c.Processed++
	c.Items += items
}

// Skipped counts one unit that was deliberately not processed.
func (s *Stats) Skipped(stage string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage(stage).Skipped++
}

// Failed counts one unit that was aborted by an error.
func (s *Stats) Failed(stage string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage(stage).Failed++
}

// Get returns a copy of one stage's counts.
func (s *Stats) Get(stage string) StageCounts {
	if s == nil {
		return StageCounts{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.stages[stage]; ok {
		return *c
	}
	return StageCounts{}
}

// Stages returns the stage names seen so far, sorted.
func (s *Stats) Stages() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.stages))
	for name := range s.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogSummary logs one line per stage.
func (s *Stats) LogSummary() {
	for _, name := range s.Stages() {
		c := s.Get(name)
		monitoring.Infof("%s: processed=%d skipped=%d failed=%d items=%d",
			name, c.Processed, c.Skipped, c.Failed, c.Items)
	}
}
