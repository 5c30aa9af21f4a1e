package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type stubCounts struct{ perRole map[models.Role]int }

func (s *stubCounts) CountByRole(ctx context.Context, role models.Role) (int, error) {
	return s.perRole[role], nil
}

type stubAutoMarked struct{ total int }

func (s *stubAutoMarked) CountAutoMarked(ctx context.Context) (int, error) {
	return s.total, nil
}

type stubCalendarLister struct {
	entries []models.CalendarEntry
	active  *models.CalendarEntry
}

func (s *stubCalendarLister) List(ctx context.Context) ([]models.CalendarEntry, error) {
	return s.entries, nil
}

func (s *stubCalendarLister) FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error) {
	return s.active, nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.values == nil {
		c.values = map[string][]byte{}
	}
	c.values[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(c.values, pattern)
	return nil
}

func TestDashboardSummaryCounts(t *testing.T) {
	active := &models.CalendarEntry{ID: "meeting_4", Kind: models.EntryKindMeeting, SequenceNumber: 4}
	cache := &memoryCache{}
	svc := NewDashboardService(
		&stubCounts{perRole: map[models.Role]int{models.RoleMahasiswa: 120, models.RoleDosen: 14}},
		&stubAutoMarked{total: 37},
		&stubCalendarLister{
			entries: []models.CalendarEntry{
				{Kind: models.EntryKindMeeting},
				{Kind: models.EntryKindMeeting},
				{Kind: models.EntryKindOther},
			},
			active: active,
		},
		cache,
		time.Minute,
		nil,
	)

	summary, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 120, summary.Students)
	assert.Equal(t, 14, summary.Lecturers)
	assert.Equal(t, 2, summary.Meetings)
	assert.Equal(t, 37, summary.AutoAbsentTotal)
	require.NotNil(t, summary.ActiveMeeting)
	assert.Equal(t, "meeting_4", summary.ActiveMeeting.ID)
	assert.Equal(t, 1, cache.sets)
}

func TestDashboardSummaryServedFromCache(t *testing.T) {
	cache := &memoryCache{}
	svc := NewDashboardService(
		&stubCounts{perRole: map[models.Role]int{models.RoleMahasiswa: 10}},
		&stubAutoMarked{},
		&stubCalendarLister{},
		cache,
		time.Minute,
		nil,
	)

	first, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first.Students, second.Students)
	assert.Equal(t, 1, cache.sets)
}

func TestDashboardSummaryRefreshBustsCache(t *testing.T) {
	cache := &memoryCache{}
	svc := NewDashboardService(
		&stubCounts{perRole: map[models.Role]int{models.RoleMahasiswa: 10}},
		&stubAutoMarked{},
		&stubCalendarLister{},
		cache,
		time.Minute,
		nil,
	)

	_, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.sets)
}
