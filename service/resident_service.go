// api/service/resident_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chittoorhealth/api/access"
	"github.com/chittoorhealth/api/cache"
	"github.com/chittoorhealth/api/dao"
	health_errors "github.com/chittoorhealth/api/errors"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/util"
)

// AnalyticsKeyPattern matches every cached analytics aggregate. Mutations
// drop the whole namespace rather than chasing individual keys.
const AnalyticsKeyPattern = "^analytics:"

type IResidentService interface {
	CreateResident(ctx context.Context, resident model.Resident, identity model.Identity) (*model.Resident, error)
	UpdateResident(ctx context.Context, resident model.Resident, identity model.Identity) (*model.Resident, error)
	DeleteResident(ctx context.Context, residentID string, identity model.Identity) error
	GetResident(ctx context.Context, residentID string, identity model.Identity) (*model.Resident, error)
	ListResidents(ctx context.Context, identity model.Identity, limit, offset int) ([]*model.Resident, error)
	SearchResidents(ctx context.Context, identity model.Identity, criteria model.ResidentSearchCriteria) ([]*model.Resident, error)
}

// ResidentService handles business logic for resident records. Every read
// goes through the caller's access scope before it reaches the DAO, and every
// mutation invalidates the analytics cache namespace.
type ResidentService struct {
	residentDAO     *dao.ResidentDAO
	validationUtil  *util.ValidationUtil
	ttlCache        *cache.TTLCache
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

func NewResidentService(
	residentDAO *dao.ResidentDAO,
	validationUtil *util.ValidationUtil,
	ttlCache *cache.TTLCache,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *ResidentService {
	service := &ResidentService{
		residentDAO:     residentDAO,
		validationUtil:  validationUtil,
		ttlCache:        ttlCache,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("resident.changed", service.handleResidentChanged)

	return service
}

func (s *ResidentService) handleResidentChanged(ctx context.Context, event util.Event) error {
	resident, ok := event.Payload.(model.Resident)
	if !ok {
		return nil
	}
	removed, err := s.ttlCache.DeletePattern(AnalyticsKeyPattern)
	if err != nil {
		logger.Error("Failed to invalidate analytics cache", zap.Error(err))
		return err
	}
	logger.Debug("Analytics cache invalidated after resident change",
		zap.String("residentID", resident.ID),
		zap.Int("removed", removed))
	if err := s.notificationSvc.NotifyResidentChange(ctx, event.Type, resident); err != nil {
		logger.Warn("Failed to send resident change notification", zap.Error(err))
	}
	return nil
}

func (s *ResidentService) CreateResident(ctx context.Context, resident model.Resident, identity model.Identity) (*model.Resident, error) {
	if err := s.validationUtil.ValidateResident(resident); err != nil {
		return nil, health_errors.ErrInvalidResidentData
	}
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}
	if !scope.Matches(resident.Mandal, resident.Secretariat) {
		return nil, health_errors.ErrForbidden
	}

	residentID, err := s.residentDAO.CreateResident(ctx, resident)
	if err != nil {
		return nil, err
	}
	created, err := s.residentDAO.GetResident(ctx, residentID)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, "resident.changed", *created)
	return created, nil
}

func (s *ResidentService) UpdateResident(ctx context.Context, resident model.Resident, identity model.Identity) (*model.Resident, error) {
	if err := s.validationUtil.ValidateResident(resident); err != nil {
		return nil, health_errors.ErrInvalidResidentData
	}
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}
	existing, err := s.residentDAO.GetResident(ctx, resident.ID)
	if err != nil {
		return nil, err
	}
	if !scope.Matches(existing.Mandal, existing.Secretariat) || !scope.Matches(resident.Mandal, resident.Secretariat) {
		return nil, health_errors.ErrForbidden
	}

	updated, err := s.residentDAO.UpdateResident(ctx, resident)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, "resident.changed", *updated)
	return updated, nil
}

func (s *ResidentService) DeleteResident(ctx context.Context, residentID string, identity model.Identity) error {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return err
	}
	existing, err := s.residentDAO.GetResident(ctx, residentID)
	if err != nil {
		return err
	}
	if !scope.Matches(existing.Mandal, existing.Secretariat) {
		return health_errors.ErrForbidden
	}

	if err := s.residentDAO.DeleteResident(ctx, residentID); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, "resident.changed", *existing)
	return nil
}

func (s *ResidentService) GetResident(ctx context.Context, residentID string, identity model.Identity) (*model.Resident, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}
	resident, err := s.residentDAO.GetResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	// A record outside the caller's scope is indistinguishable from a
	// missing one.
	if !scope.Matches(resident.Mandal, resident.Secretariat) {
		return nil, health_errors.ErrResidentNotFound
	}
	return resident, nil
}

func (s *ResidentService) ListResidents(ctx context.Context, identity model.Identity, limit, offset int) ([]*model.Resident, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}
	return s.residentDAO.ListResidentsPage(ctx, scope, limit, offset)
}

func (s *ResidentService) SearchResidents(ctx context.Context, identity model.Identity, criteria model.ResidentSearchCriteria) ([]*model.Resident, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}
	return s.residentDAO.SearchResidents(ctx, scope, criteria)
}
