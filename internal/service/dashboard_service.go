package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
)

type dashboardRepository interface {
	CountsByStatus(ctx context.Context, userID string) (models.StatusCounts, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.GatePass, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// DashboardService composes the status summary shown on landing pages.
// Staff see hostel-wide numbers, students their own register only.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard payload for the actor and reports whether it
// was served from cache.
func (s *DashboardService) Summary(ctx context.Context, actor Actor) (*models.DashboardSummary, bool, error) {
	scope := "" // hostel-wide
	if actor.Role == models.RoleStudent {
		scope = actor.UserID
	} else if !actor.Role.Staff() {
		return nil, false, appErrors.ErrForbidden
	}

	key := cacheKey(scope)
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.repo.CountsByStatus(ctx, scope)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate gate passes")
	}

	recent, err := s.repo.Recent(ctx, scope, s.cfg.RecentLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent gate passes")
	}

	summary := &models.DashboardSummary{
		Counts:      counts,
		Recent:      recent,
		GeneratedAt: s.now().UTC(),
	}

	if err := s.cache.Set(ctx, key, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
	}

	return summary, false, nil
}

func cacheKey(scope string) string {
	if scope == "" {
		return "dashboard:summary:all"
	}
	return fmt.Sprintf("dashboard:summary:user:%s", scope)
}
