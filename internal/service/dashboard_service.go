package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type dashboardCounts interface {
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

type autoMarkedCounter interface {
	CountAutoMarked(ctx context.Context) (int, error)
}

type calendarLister interface {
	List(ctx context.Context) ([]models.CalendarEntry, error)
	FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error)
}

// DashboardSummary is the admin landing-page payload.
type DashboardSummary struct {
	Students        int                   `json:"students"`
	Lecturers       int                   `json:"lecturers"`
	Meetings        int                   `json:"meetings"`
	ActiveMeeting   *models.CalendarEntry `json:"active_meeting,omitempty"`
	AutoAbsentTotal int                   `json:"auto_absent_total"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// DashboardService aggregates counts for the admin landing page, cached in
// Redis so the dashboard never fans out to four queries per page view.
type DashboardService struct {
	users    dashboardCounts
	records  autoMarkedCounter
	calendar calendarLister
	cache    dashboardCache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(users dashboardCounts, records autoMarkedCounter, calendar calendarLister, cache dashboardCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DashboardService{
		users:    users,
		records:  records,
		calendar: calendar,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns the cached dashboard payload, rebuilding it on miss.
// With refresh set, the cached copy is discarded first.
func (s *DashboardService) Summary(ctx context.Context, refresh bool) (*DashboardSummary, error) {
	if refresh {
		if err := s.cache.DeleteByPattern(ctx, dashboardCacheKey); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	} else {
		var cached DashboardSummary
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *DashboardService) build(ctx context.Context) (*DashboardSummary, error) {
	students, err := s.users.CountByRole(ctx, models.RoleMahasiswa)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count students")
	}
	lecturers, err := s.users.CountByRole(ctx, models.RoleDosen)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count lecturers")
	}
	entries, err := s.calendar.List(ctx)
	if err != nil {
		return nil, err
	}
	meetings := 0
	for _, entry := range entries {
		if entry.Kind == models.EntryKindMeeting {
			meetings++
		}
	}
	active, err := s.calendar.FindActiveMeeting(ctx, s.now())
	if err != nil {
		return nil, err
	}
	autoAbsent, err := s.records.CountAutoMarked(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count auto absents")
	}
	return &DashboardSummary{
		Students:        students,
		Lecturers:       lecturers,
		Meetings:        meetings,
		ActiveMeeting:   active,
		AutoAbsentTotal: autoAbsent,
		GeneratedAt:     s.now().UTC(),
	}, nil
}
