// api/export/progress.go
package export

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	health_errors "github.com/chittoorhealth/api/errors"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

const (
	// DefaultTerminalRetention is how long a finished record stays visible so
	// late subscribers still get one final snapshot.
	DefaultTerminalRetention = 1 * time.Second
	// DefaultMaxJobAge is the ceiling after which a record is dropped
	// regardless of status, to bound memory for abandoned jobs.
	DefaultMaxJobAge = 1 * time.Hour
)

// ProgressStore is a process-wide registry of export job progress. One worker
// writes each record (single-writer per jobId, enforced by the caller via the
// job lock); any number of streamers read it concurrently. Snapshots cross
// the boundary by value, so readers observe either the pre- or post-update
// state, never a torn record.
type ProgressStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.ExportProgress

	terminalRetention time.Duration
	maxJobAge         time.Duration
	now               func() time.Time
}

func NewProgressStore(terminalRetention, maxJobAge time.Duration) *ProgressStore {
	if terminalRetention <= 0 {
		terminalRetention = DefaultTerminalRetention
	}
	if maxJobAge <= 0 {
		maxJobAge = DefaultMaxJobAge
	}
	return &ProgressStore{
		jobs:              make(map[string]*model.ExportProgress),
		terminalRetention: terminalRetention,
		maxJobAge:         maxJobAge,
		now:               time.Now,
	}
}

// Create registers a fresh record for jobID in the initializing state. It
// fails with ErrExportJobConflict if the id is already present.
func (s *ProgressStore) Create(jobID string) (model.ExportProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobID]; exists {
		return model.ExportProgress{}, health_errors.ErrExportJobConflict
	}
	now := s.now()
	rec := &model.ExportProgress{
		JobID:          jobID,
		Status:         model.ExportStatusInitializing,
		StartTime:      now,
		LastUpdateTime: now,
	}
	s.jobs[jobID] = rec
	return *rec, nil
}

// Update applies mutate to the record for jobID under the store lock. A
// missing id is a silent no-op so a worker racing the janitor never faults.
// LastUpdateTime never regresses.
func (s *ProgressStore) Update(jobID string, mutate func(*model.ExportProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return
	}
	mutate(rec)
	if now := s.now(); now.After(rec.LastUpdateTime) {
		rec.LastUpdateTime = now
	}
}

// Get returns a snapshot of the record for jobID.
func (s *ProgressStore) Get(jobID string) (model.ExportProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return model.ExportProgress{}, false
	}
	return *rec, true
}

func (s *ProgressStore) Remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// Len reports the number of tracked jobs.
func (s *ProgressStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Prune drops records past the terminal retention window and records older
// than the max job age. Returns the number removed.
func (s *ProgressStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, rec := range s.jobs {
		stale := rec.Status.Terminal() && now.Sub(rec.LastUpdateTime) >= s.terminalRetention
		expired := now.Sub(rec.StartTime) >= s.maxJobAge
		if stale || expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// StartJanitor prunes on the given interval until ctx is cancelled.
func (s *ProgressStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTerminalRetention
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := s.Prune(); removed > 0 {
					logger.Debug("Pruned export job records", zap.Int("removed", removed))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
