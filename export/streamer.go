// api/export/streamer.go
package export

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

// StreamState is the per-subscriber connection state. Completed, Errored,
// TimedOut and Aborted are terminal; the transport is closed on reaching any
// of them.
type StreamState int

const (
	StateConnecting StreamState = iota
	StatePolling
	StateCompleted
	StateErrored
	StateTimedOut
	StateAborted
)

func (s StreamState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateTimedOut:
		return "timed_out"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

const (
	DefaultPollInterval = 1 * time.Second
	DefaultMaxPolls     = 600
	DefaultGraceDelay   = 1 * time.Second
)

// Emitter pushes one progress snapshot to the subscriber. An error means the
// transport is gone; the streamer treats it as an abort, never as an
// application failure.
type Emitter interface {
	Emit(snapshot model.ExportProgress) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(model.ExportProgress) error

func (f EmitterFunc) Emit(snapshot model.ExportProgress) error { return f(snapshot) }

// StreamerConfig bounds one streaming connection. Zero values fall back to
// the reference behavior: 1s polls, 600-poll ceiling, 1s grace delay.
type StreamerConfig struct {
	PollInterval time.Duration
	MaxPolls     int
	GraceDelay   time.Duration
}

func (c StreamerConfig) withDefaults() StreamerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = DefaultMaxPolls
	}
	if c.GraceDelay <= 0 {
		c.GraceDelay = DefaultGraceDelay
	}
	return c
}

// Streamer watches the progress store on behalf of one subscriber and
// forwards snapshots until the job ends, the poll ceiling is hit, or the
// subscriber goes away. Polling the store, rather than being push-notified,
// keeps the store indifferent to how many streams are open and lets
// subscribers join after the job started or even after it finished.
type Streamer struct {
	store *ProgressStore
	cfg   StreamerConfig
}

func NewStreamer(store *ProgressStore, cfg StreamerConfig) *Streamer {
	return &Streamer{store: store, cfg: cfg.withDefaults()}
}

// Run drives the connection state machine until a terminal state and returns
// it. ctx carries the subscriber's cancellation: when it fires the stream
// aborts without further emissions, and the job itself keeps running.
func (s *Streamer) Run(ctx context.Context, jobID string, emit Emitter) StreamState {
	for poll := 0; poll < s.cfg.MaxPolls; poll++ {
		snapshot, ok := s.store.Get(jobID)
		if !ok {
			// No record yet: the job is still being registered (or the
			// subscriber beat the worker). Emit a synthetic initializing
			// snapshot so the subscriber never sees nothing.
			snapshot = s.syntheticInitializing(jobID)
		}

		if err := emit.Emit(snapshot); err != nil {
			return StateAborted
		}

		switch snapshot.Status {
		case model.ExportStatusCompleted:
			s.graceWait(ctx)
			return StateCompleted
		case model.ExportStatusError:
			s.graceWait(ctx)
			return StateErrored
		}

		if !s.sleep(ctx, s.cfg.PollInterval) {
			return StateAborted
		}
	}

	// Ceiling reached with the job still not terminal. Best-effort timeout
	// notice; the subscriber may already be gone.
	timedOut := s.syntheticInitializing(jobID)
	timedOut.Status = model.ExportStatusTimedOut
	timedOut.ErrorMessage = "export progress stream timed out"
	if err := emit.Emit(timedOut); err != nil {
		return StateAborted
	}
	logger.Warn("Export stream hit poll ceiling",
		zap.String("jobID", jobID),
		zap.Int("maxPolls", s.cfg.MaxPolls))
	return StateTimedOut
}

func (s *Streamer) syntheticInitializing(jobID string) model.ExportProgress {
	now := time.Now()
	return model.ExportProgress{
		JobID:          jobID,
		Status:         model.ExportStatusInitializing,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// graceWait pauses after a terminal snapshot so the emission can flush before
// the transport is closed. Disconnects cut it short.
func (s *Streamer) graceWait(ctx context.Context) {
	s.sleep(ctx, s.cfg.GraceDelay)
}

// sleep waits for d or until ctx is cancelled; false means cancelled.
func (s *Streamer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
