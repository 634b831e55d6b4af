// api/util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyResidentChange(ctx context.Context, changeType string, resident model.Resident) error {
	logger.Info("NOTIFICATION: Resident record changed",
		zap.String("changeType", changeType),
		zap.String("residentID", resident.ID),
		zap.String("mandal", resident.Mandal),
		zap.String("secretariat", resident.Secretariat))
	return nil
}

func (n *NotificationService) NotifyExportFinished(ctx context.Context, progress model.ExportProgress) error {
	logger.Info("NOTIFICATION: Export job finished",
		zap.String("jobID", progress.JobID),
		zap.String("status", string(progress.Status)),
		zap.Int("records", progress.ProcessedRecords))
	return nil
}
