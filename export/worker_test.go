// api/export/worker_test.go
package export_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chittoorhealth/api/access"
	"github.com/chittoorhealth/api/export"
	"github.com/chittoorhealth/api/model"
)

type fakeResidentSource struct {
	residents []*model.Resident
	countErr  error
	listErr   error
}

func (f *fakeResidentSource) CountResidents(ctx context.Context, scope access.Scope) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.residents), nil
}

func (f *fakeResidentSource) ListResidentsPage(ctx context.Context, scope access.Scope, limit, offset int) ([]*model.Resident, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.residents) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.residents) {
		end = len(f.residents)
	}
	return f.residents[offset:end], nil
}

func makeResidents(n int) []*model.Resident {
	residents := make([]*model.Resident, n)
	for i := range residents {
		residents[i] = &model.Resident{
			ID:          string(rune('a' + i%26)),
			Name:        "Resident",
			Age:         30,
			Mandal:      "Kuppam",
			Secretariat: "KPM-1",
		}
	}
	return residents
}

func TestWorker_RunCompletes(t *testing.T) {
	store := export.NewProgressStore(0, 0)
	source := &fakeResidentSource{residents: makeResidents(5)}
	worker := export.NewWorker(store, source, t.TempDir(), 2)

	_, err := store.Create("job1")
	require.NoError(t, err)

	worker.Run(context.Background(), "job1", access.Scope{Kind: access.ScopeAll})

	progress, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusCompleted, progress.Status)
	assert.Equal(t, 5, progress.TotalRecords)
	assert.Equal(t, 5, progress.ProcessedRecords)
	assert.Equal(t, 3, progress.TotalBatches)
	assert.Equal(t, 3, progress.CurrentBatch)
	assert.Empty(t, progress.ErrorMessage)

	data, err := os.ReadFile(worker.OutputPath("job1"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus one row per resident.
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,age"))
}

func TestWorker_SourceFailureEndsInErrorStatus(t *testing.T) {
	store := export.NewProgressStore(0, 0)
	source := &fakeResidentSource{countErr: errors.New("connection refused")}
	worker := export.NewWorker(store, source, t.TempDir(), 2)

	_, err := store.Create("job1")
	require.NoError(t, err)

	worker.Run(context.Background(), "job1", access.Scope{Kind: access.ScopeAll})

	progress, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusError, progress.Status)
	assert.Contains(t, progress.ErrorMessage, "connection refused")
}

func TestWorker_EmptyScopeCompletesWithZeroRecords(t *testing.T) {
	store := export.NewProgressStore(0, 0)
	source := &fakeResidentSource{}
	worker := export.NewWorker(store, source, t.TempDir(), 2)

	_, err := store.Create("job1")
	require.NoError(t, err)

	worker.Run(context.Background(), "job1", access.Scope{Kind: access.ScopeNone})

	progress, ok := store.Get("job1")
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusCompleted, progress.Status)
	assert.Equal(t, 0, progress.TotalRecords)
	assert.Equal(t, 0, progress.ProcessedRecords)
}
