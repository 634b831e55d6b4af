package model

import "time"

// ExportStatus is the lifecycle status of an export job.
type ExportStatus string

const (
	ExportStatusInitializing ExportStatus = "initializing"
	ExportStatusRunning      ExportStatus = "running"
	ExportStatusCompleted    ExportStatus = "completed"
	ExportStatusError        ExportStatus = "error"
	// ExportStatusTimedOut is only ever produced by the streaming layer when
	// its poll ceiling is reached; workers never set it.
	ExportStatusTimedOut ExportStatus = "timed_out"
)

// Terminal reports whether no further progress transitions can follow s.
func (s ExportStatus) Terminal() bool {
	return s == ExportStatusCompleted || s == ExportStatusError || s == ExportStatusTimedOut
}

// ExportProgress is one snapshot of an export job's progress. Snapshots are
// passed by value across the store boundary so readers never share memory
// with the writing worker.
type ExportProgress struct {
	JobID            string       `json:"job_id"`
	Status           ExportStatus `json:"status"`
	TotalRecords     int          `json:"total_records"`
	ProcessedRecords int          `json:"processed_records"`
	CurrentBatch     int          `json:"current_batch"`
	TotalBatches     int          `json:"total_batches"`
	StartTime        time.Time    `json:"start_time"`
	LastUpdateTime   time.Time    `json:"last_update_time"`
	ErrorMessage     string       `json:"error_message,omitempty"`
}
