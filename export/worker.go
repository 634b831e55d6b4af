// api/export/worker.go
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chittoorhealth/api/access"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

// ResidentSource is the slice of the resident DAO the worker needs. Every
// read is already narrowed by the caller's access scope.
type ResidentSource interface {
	CountResidents(ctx context.Context, scope access.Scope) (int, error)
	ListResidentsPage(ctx context.Context, scope access.Scope, limit, offset int) ([]*model.Resident, error)
}

const DefaultBatchSize = 500

// Worker runs one export job: it pages residents out of the source, writes
// them to a CSV file named after the job, and advances the progress record as
// the single writer for that jobId.
type Worker struct {
	store     *ProgressStore
	source    ResidentSource
	outputDir string
	batchSize int
}

func NewWorker(store *ProgressStore, source ResidentSource, outputDir string, batchSize int) *Worker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Worker{
		store:     store,
		source:    source,
		outputDir: outputDir,
		batchSize: batchSize,
	}
}

// OutputPath returns where the CSV for jobID is written.
func (w *Worker) OutputPath(jobID string) string {
	return filepath.Join(w.outputDir, jobID+".csv")
}

// Run executes the job to completion. It never returns an error: failures end
// up in the progress record as a terminal error status, which is how watchers
// learn about them.
func (w *Worker) Run(ctx context.Context, jobID string, scope access.Scope) {
	total, err := w.source.CountResidents(ctx, scope)
	if err != nil {
		w.fail(jobID, fmt.Sprintf("counting residents: %v", err))
		return
	}

	totalBatches := (total + w.batchSize - 1) / w.batchSize
	w.store.Update(jobID, func(p *model.ExportProgress) {
		p.Status = model.ExportStatusRunning
		p.TotalRecords = total
		p.TotalBatches = totalBatches
	})

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		w.fail(jobID, fmt.Sprintf("creating output directory: %v", err))
		return
	}
	file, err := os.Create(w.OutputPath(jobID))
	if err != nil {
		w.fail(jobID, fmt.Sprintf("creating output file: %v", err))
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		w.fail(jobID, fmt.Sprintf("writing header: %v", err))
		return
	}

	processed := 0
	for batch := 1; batch <= totalBatches; batch++ {
		if ctx.Err() != nil {
			w.fail(jobID, "export cancelled")
			return
		}
		residents, err := w.source.ListResidentsPage(ctx, scope, w.batchSize, processed)
		if err != nil {
			w.fail(jobID, fmt.Sprintf("reading batch %d: %v", batch, err))
			return
		}
		for _, r := range residents {
			if err := writer.Write(csvRow(r)); err != nil {
				w.fail(jobID, fmt.Sprintf("writing batch %d: %v", batch, err))
				return
			}
		}
		processed += len(residents)
		w.store.Update(jobID, func(p *model.ExportProgress) {
			p.ProcessedRecords = processed
			p.CurrentBatch = batch
		})
		if len(residents) < w.batchSize {
			break
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		w.fail(jobID, fmt.Sprintf("flushing output: %v", err))
		return
	}

	w.store.Update(jobID, func(p *model.ExportProgress) {
		p.Status = model.ExportStatusCompleted
		p.ProcessedRecords = processed
	})
	logger.Info("Export job completed",
		zap.String("jobID", jobID),
		zap.Int("records", processed))
}

func (w *Worker) fail(jobID, message string) {
	w.store.Update(jobID, func(p *model.ExportProgress) {
		p.Status = model.ExportStatusError
		p.ErrorMessage = message
	})
	logger.Error("Export job failed",
		zap.String("jobID", jobID),
		zap.String("reason", message))
}

var csvHeader = []string{
	"id", "name", "age", "gender", "mandal", "secretariat", "village", "phone", "health_flags", "last_surveyed_at",
}

func csvRow(r *model.Resident) []string {
	surveyed := ""
	if !r.LastSurveyedAt.IsZero() {
		surveyed = r.LastSurveyedAt.Format("2006-01-02")
	}
	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Age),
		r.Gender,
		r.Mandal,
		r.Secretariat,
		r.Village,
		r.Phone,
		strings.Join(r.HealthFlags, ";"),
		surveyed,
	}
}
