package pipeline

import (
	"context"
	"fmt"

	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/monitoring"
	"github.com/banshee-data/fusionprep/internal/runlog"
	"github.com/banshee-data/fusionprep/internal/security"
)

// Sink writes output files and records them in the run ledger. Ledger may be
// nil, in which case nothing is recorded.
type Sink struct {
	FS     fsutil.FileSystem
	Ledger *runlog.Ledger
	RunID  string
}

// Write stores data as dir/name and records it under (kind, key). It returns
// the written path. Any error here is a storage failure and aborts the run.
func (s *Sink) Write(ctx context.Context, kind, key, dir, name string, data []byte, items int, status string) (string, error) {
	path, err := security.JoinWithin(dir, name)
	if err != nil {
		return "", err
	}
	if err := s.FS.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := s.FS.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if s.Ledger != nil {
		if err := s.Ledger.RecordOutput(ctx, runlog.Output{
			Kind: kind, Key: key, RunID: s.RunID, Path: path, Items: items, Status: status,
		}); err != nil {
			return "", err
		}
	}
	return path, nil
}

// Fail records that (kind, key) produced no output because of cause. Ledger
// errors are logged rather than returned so a bad input never aborts a run.
func (s *Sink) Fail(ctx context.Context, kind, key string, cause error) {
	s.note(ctx, kind, key, runlog.StatusFailed, cause.Error())
}

// Empty records that (kind, key) was read but held nothing to write.
func (s *Sink) Empty(ctx context.Context, kind, key, reason string) {
	s.note(ctx, kind, key, runlog.StatusEmpty, reason)
}

func (s *Sink) note(ctx context.Context, kind, key, status, detail string) {
	if s.Ledger == nil {
		return
	}
	if err := s.Ledger.RecordOutput(ctx, runlog.Output{
		Kind: kind, Key: key, RunID: s.RunID, Status: status, Detail: detail,
	}); err != nil {
		monitoring.Errorf("ledger: %v", err)
	}
}
