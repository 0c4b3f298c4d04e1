package runlog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenMigratesToLatest(t *testing.T) {
	l := openTestLedger(t)

	version, dirty, err := l.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Idempotent.
	require.NoError(t, l.MigrateUp())
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := Open(path)
	require.NoError(t, err)
	run, err := l.StartRun(context.Background(), "v1", nil)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	got, err := l.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Version)
	assert.Equal(t, "{}", got.ConfigJSON)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	run, err := l.StartRun(ctx, "fusionprep 1.2.3", []byte(`{"workers":4}`))
	require.NoError(t, err)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err, "run id is a uuid")

	got, err := l.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished.IsZero())
	assert.True(t, got.Started.Equal(start))
	assert.Equal(t, `{"workers":4}`, got.ConfigJSON)

	l.now = func() time.Time { return start.Add(time.Minute) }
	require.NoError(t, l.FinishRun(ctx, run.ID))
	got, err = l.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished.Equal(start.Add(time.Minute)))

	assert.ErrorIs(t, l.FinishRun(ctx, "missing"), ErrUnknownRun)
	_, err = l.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		l.now = func() time.Time { return at }
		r, err := l.StartRun(ctx, "v", nil)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	runs, err := l.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	runs, err = l.Runs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRecordOutputUpsert(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	first, err := l.StartRun(ctx, "v", nil)
	require.NoError(t, err)
	second, err := l.StartRun(ctx, "v", nil)
	require.NoError(t, err)

	o := Output{Kind: KindCameraLabel, Key: "CAM_FRONT/a", RunID: first.ID, Path: "labels/a.txt", Items: 3, Status: StatusOK}
	require.NoError(t, l.RecordOutput(ctx, o))
	o.Items = 5
	require.NoError(t, l.RecordOutput(ctx, o))

	outs, err := l.Outputs(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, 5, outs[0].Items)

	// A later run takes ownership of the key.
	o.RunID = second.ID
	o.Status = StatusEmpty
	o.Items = 0
	require.NoError(t, l.RecordOutput(ctx, o))

	outs, err = l.Outputs(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, outs)
	outs, err = l.Outputs(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, StatusEmpty, outs[0].Status)

	assert.Error(t, l.RecordOutput(ctx, Output{Kind: KindLidarBEV, RunID: first.ID}))
	assert.Error(t, l.RecordOutput(ctx, Output{Kind: KindLidarBEV, Key: "x", RunID: "no-such-run", Status: StatusOK}),
		"foreign key to prep_runs")
}

func TestConcurrentRecordOneRowPerKey(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	run, err := l.StartRun(ctx, "v", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				err := l.RecordOutput(ctx, Output{
					Kind: KindLidarBEV, Key: fmt.Sprintf("LIDAR_TOP/%02d", i),
					RunID: run.ID, Items: i, Status: StatusOK,
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	outs, err := l.Outputs(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, outs, 25)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	run, err := l.StartRun(ctx, "v", nil)
	require.NoError(t, err)

	for _, o := range []Output{
		{Kind: KindCameraLabel, Key: "a", Items: 2, Status: StatusOK},
		{Kind: KindCameraLabel, Key: "b", Items: 4, Status: StatusOK},
		{Kind: KindCameraLabel, Key: "c", Status: StatusEmpty},
		{Kind: KindLidarBEV, Key: "d", Status: StatusFailed, Detail: "malformed"},
	} {
		o.RunID = run.ID
		require.NoError(t, l.RecordOutput(ctx, o))
	}

	sums, err := l.Summarize(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{Kind: KindCameraLabel, Status: StatusEmpty, Files: 1, Items: 0},
		{Kind: KindCameraLabel, Status: StatusOK, Files: 2, Items: 6},
		{Kind: KindLidarBEV, Status: StatusFailed, Files: 1, Items: 0},
	}, sums)
}
