// api/export/progress_test.go
package export_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/export"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "export-test-logs")
	if err != nil {
		os.Exit(1)
	}
	logger.InitLogger(dir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestProgressStore_CreateUpdateGet(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	created, err := store.Create("job1")
	require.NoError(t, err)
	assert.Equal(t, "job1", created.JobID)
	assert.Equal(t, model.ExportStatusInitializing, created.Status)
	assert.False(t, created.StartTime.IsZero())

	store.Update("job1", func(p *model.ExportProgress) {
		p.Status = model.ExportStatusRunning
		p.TotalRecords = 100
		p.ProcessedRecords = 50
	})

	got, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusRunning, got.Status)
	assert.Equal(t, 100, got.TotalRecords)
	assert.Equal(t, 50, got.ProcessedRecords)
	assert.False(t, got.LastUpdateTime.Before(created.LastUpdateTime))
}

func TestProgressStore_CreateConflict(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	_, err := store.Create("job1")
	require.NoError(t, err)

	_, err = store.Create("job1")
	assert.ErrorIs(t, err, health_errors.ErrExportJobConflict)
}

func TestProgressStore_UpdateMissingJobIsNoOp(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	assert.NotPanics(t, func() {
		store.Update("missing-job", func(p *model.ExportProgress) {
			p.Status = model.ExportStatusCompleted
		})
	})

	_, ok := store.Get("missing-job")
	assert.False(t, ok)
}

func TestProgressStore_Remove(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	_, err := store.Create("job1")
	require.NoError(t, err)
	store.Remove("job1")

	_, ok := store.Get("job1")
	assert.False(t, ok)
}

func TestProgressStore_SnapshotIsolation(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	_, err := store.Create("job1")
	require.NoError(t, err)

	snapshot, ok := store.Get("job1")
	require.True(t, ok)
	snapshot.ProcessedRecords = 999

	got, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, 0, got.ProcessedRecords)
}

func TestProgressStore_ConcurrentReadersSingleWriter(t *testing.T) {
	store := export.NewProgressStore(0, 0)

	_, err := store.Create("job1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Readers must always observe a consistent record while the single
	// writer advances it.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if p, ok := store.Get("job1"); ok {
					assert.LessOrEqual(t, p.ProcessedRecords, p.TotalRecords)
				}
			}
		}()
	}

	for i := 0; i <= 100; i++ {
		n := i
		store.Update("job1", func(p *model.ExportProgress) {
			p.Status = model.ExportStatusRunning
			p.TotalRecords = 100
			p.ProcessedRecords = n
		})
	}
	close(done)
	wg.Wait()

	got, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, 100, got.ProcessedRecords)
}

func TestProgressStore_PruneTerminalRecords(t *testing.T) {
	store := export.NewProgressStore(10*time.Millisecond, time.Hour)

	_, err := store.Create("done")
	require.NoError(t, err)
	_, err = store.Create("running")
	require.NoError(t, err)

	store.Update("done", func(p *model.ExportProgress) {
		p.Status = model.ExportStatusCompleted
	})
	store.Update("running", func(p *model.ExportProgress) {
		p.Status = model.ExportStatusRunning
	})

	time.Sleep(20 * time.Millisecond)
	removed := store.Prune()

	assert.Equal(t, 1, removed)
	_, ok := store.Get("done")
	assert.False(t, ok)
	_, ok = store.Get("running")
	assert.True(t, ok)
}
