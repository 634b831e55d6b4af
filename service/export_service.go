// api/service/export_service.go
package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chittoorhealth/api/access"
	"github.com/chittoorhealth/api/config"
	"github.com/chittoorhealth/api/db"
	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/export"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/util"
)

type IExportService interface {
	StartExport(ctx context.Context, identity model.Identity) (string, error)
	GetStatus(jobID string) (model.ExportProgress, bool)
}

// ExportService starts export jobs and answers status lookups. Starting a
// job is fire-and-forget: the worker runs on its own goroutine with its own
// context, detached from the HTTP request that triggered it, and the jobId is
// returned immediately for clients to watch via the stream endpoint.
type ExportService struct {
	progressStore   *export.ProgressStore
	worker          *export.Worker
	notificationSvc *util.NotificationService
}

func NewExportService(progressStore *export.ProgressStore, worker *export.Worker, notificationSvc *util.NotificationService) *ExportService {
	return &ExportService{
		progressStore:   progressStore,
		worker:          worker,
		notificationSvc: notificationSvc,
	}
}

func (s *ExportService) StartExport(ctx context.Context, identity model.Identity) (string, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return "", err
	}

	jobID := uuid.New().String()

	// One export = one worker = one jobId. The Redis lock enforces the
	// single-writer rule even if two instances race on the same id.
	locked, err := db.LockExportJob(ctx, jobID, config.GetDuration("export.lockTTL"))
	if err != nil {
		return "", health_errors.ErrInternalServer
	}
	if !locked {
		return "", health_errors.ErrExportLockHeld
	}

	if _, err := s.progressStore.Create(jobID); err != nil {
		_ = db.UnlockExportJob(ctx, jobID)
		return "", err
	}

	logger.Info("Export job started",
		zap.String("jobID", jobID),
		zap.String("role", string(identity.Role)))

	go func() {
		workerCtx := context.Background()
		defer func() {
			if err := db.UnlockExportJob(workerCtx, jobID); err != nil {
				logger.Warn("Failed to release export lock", zap.Error(err), zap.String("jobID", jobID))
			}
		}()

		s.worker.Run(workerCtx, jobID, scope)

		if progress, ok := s.progressStore.Get(jobID); ok {
			if err := s.notificationSvc.NotifyExportFinished(workerCtx, progress); err != nil {
				logger.Warn("Failed to send export notification", zap.Error(err), zap.String("jobID", jobID))
			}
		}
	}()

	return jobID, nil
}

func (s *ExportService) GetStatus(jobID string) (model.ExportProgress, bool) {
	return s.progressStore.Get(jobID)
}
