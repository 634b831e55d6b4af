// api/service/analytics_service.go
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chittoorhealth/api/access"
	"github.com/chittoorhealth/api/cache"
	"github.com/chittoorhealth/api/dao"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

type IAnalyticsService interface {
	Overview(ctx context.Context, identity model.Identity) (*model.AnalyticsOverview, error)
	MandalAnalytics(ctx context.Context, identity model.Identity, mandal string) (*model.MandalAnalytics, error)
}

// AnalyticsService serves aggregate resident counts, memoized in the TTL
// cache. Keys carry the caller's scope so aggregates computed for one role
// are never served to another; the whole namespace is dropped whenever
// resident data changes.
type AnalyticsService struct {
	residentDAO *dao.ResidentDAO
	ttlCache    *cache.TTLCache
	cacheTTL    time.Duration
}

func NewAnalyticsService(residentDAO *dao.ResidentDAO, ttlCache *cache.TTLCache, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		residentDAO: residentDAO,
		ttlCache:    ttlCache,
		cacheTTL:    cacheTTL,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context, identity model.Identity) (*model.AnalyticsOverview, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}

	key := "analytics:overview:" + scope.CacheKey()
	if cached, ok := s.ttlCache.Get(key); ok {
		if overview, ok := cached.(*model.AnalyticsOverview); ok {
			logger.Debug("Analytics overview served from cache", zap.String("key", key))
			return overview, nil
		}
	}

	total, err := s.residentDAO.CountResidents(ctx, scope)
	if err != nil {
		return nil, err
	}
	byMandal, err := s.residentDAO.CountByMandal(ctx, scope)
	if err != nil {
		return nil, err
	}
	tallies, err := s.healthFlagTallies(ctx, scope)
	if err != nil {
		return nil, err
	}

	overview := &model.AnalyticsOverview{
		TotalResidents:    total,
		ByMandal:          byMandal,
		HealthFlagTallies: tallies,
		ComputedAt:        time.Now(),
	}
	s.ttlCache.Set(key, overview, s.cacheTTL)
	return overview, nil
}

func (s *AnalyticsService) MandalAnalytics(ctx context.Context, identity model.Identity, mandal string) (*model.MandalAnalytics, error) {
	scope, err := access.BuildScope(identity)
	if err != nil {
		return nil, err
	}

	key := "analytics:mandal:" + mandal + ":" + scope.CacheKey()
	if cached, ok := s.ttlCache.Get(key); ok {
		if analytics, ok := cached.(*model.MandalAnalytics); ok {
			logger.Debug("Mandal analytics served from cache", zap.String("key", key))
			return analytics, nil
		}
	}

	bySecretariat, err := s.residentDAO.CountBySecretariat(ctx, scope, mandal)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, c := range bySecretariat {
		total += c.Count
	}

	analytics := &model.MandalAnalytics{
		Mandal:        mandal,
		Total:         total,
		BySecretariat: bySecretariat,
		ComputedAt:    time.Now(),
	}
	s.ttlCache.Set(key, analytics, s.cacheTTL)
	return analytics, nil
}

// healthFlagTallies folds per-resident flag lists into one count per flag.
// Flags are stored as a ";"-joined list, so tallying happens here rather
// than in SQL.
func (s *AnalyticsService) healthFlagTallies(ctx context.Context, scope access.Scope) (map[string]int, error) {
	tallies := make(map[string]int)
	const page = 1000
	for offset := 0; ; offset += page {
		residents, err := s.residentDAO.ListResidentsPage(ctx, scope, page, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range residents {
			for _, flag := range r.HealthFlags {
				flag = strings.TrimSpace(flag)
				if flag != "" {
					tallies[flag]++
				}
			}
		}
		if len(residents) < page {
			break
		}
	}
	return tallies, nil
}
