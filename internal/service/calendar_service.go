package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

// Meeting count bounds for one semester plan.
const (
	MinMeetingCount = 1
	MaxMeetingCount = 20
)

type calendarRepository interface {
	List(ctx context.Context) ([]models.CalendarEntry, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEntry, error)
	ListRecentStarts(ctx context.Context, day time.Time, limit int) ([]models.CalendarEntry, error)
	ListMeetingsAfter(ctx context.Context, seq int) ([]models.CalendarEntry, error)
	UpsertMeetings(ctx context.Context, entries []models.CalendarEntry) error
	RebaseMeetings(ctx context.Context, entries []models.CalendarEntry) error
	Create(ctx context.Context, entry *models.CalendarEntry) error
	Delete(ctx context.Context, id string) error
}

// CalendarService manages the academic calendar: the weekly meeting series
// plus free-form entries such as exams and holidays.
type CalendarService struct {
	repo              calendarRepository
	validator         *validator.Validate
	logger            *zap.Logger
	locatorCandidates int
	metrics           *Metrics
	now               func() time.Time
}

// NewCalendarService constructs the service. locatorCandidates caps how many
// recently started meetings the active-meeting scan considers.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger, locatorCandidates int, metrics *Metrics) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locatorCandidates <= 0 {
		locatorCandidates = 5
	}
	if metrics == nil {
		metrics = nopMetrics()
	}
	return &CalendarService{
		repo:              repo,
		validator:         validate,
		logger:            logger,
		locatorCandidates: locatorCandidates,
		metrics:           metrics,
		now:               time.Now,
	}
}

// GenerateMeetingsRequest describes the semester plan payload. Count is
// bounds-checked explicitly so a zero count reports INVALID_COUNT rather
// than a generic validation failure.
type GenerateMeetingsRequest struct {
	Count     int    `json:"count"`
	StartDate string `json:"start_date" validate:"required"`
}

// CreateEntryRequest describes a non-meeting calendar entry payload. EndDate
// is optional; a single-day event omits it.
type CreateEntryRequest struct {
	Title   string `json:"title" validate:"required"`
	Date    string `json:"date" validate:"required"`
	EndDate string `json:"end_date"`
}

// ShiftMeetingRequest moves one meeting to a new start date, optionally
// renaming it. Later meetings keep their own titles.
type ShiftMeetingRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date" validate:"required"`
}

// GenerateMeetings writes the whole meeting series in one shot: meeting n
// starts count-1 weeks after meeting 1 and the ids are deterministic, so
// re-running the plan overwrites the previous series instead of appending.
func (s *CalendarService) GenerateMeetings(ctx context.Context, req GenerateMeetingsRequest) ([]models.CalendarEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.Count < MinMeetingCount || req.Count > MaxMeetingCount {
		return nil, appErrors.Clone(appErrors.ErrInvalidCount, "")
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "")
	}

	now := s.now().UTC()
	entries := make([]models.CalendarEntry, 0, req.Count)
	for n := 1; n <= req.Count; n++ {
		windowStart := start.AddDate(0, 0, (n-1)*models.MeetingWindowDays)
		entries = append(entries, models.CalendarEntry{
			ID:             models.MeetingID(n),
			Kind:           models.EntryKindMeeting,
			Title:          models.MeetingTitle(n),
			SequenceNumber: n,
			StartDate:      windowStart,
			EndDate:        windowStart.AddDate(0, 0, models.MeetingWindowDays-1),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.repo.UpsertMeetings(ctx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to write meeting series")
	}
	s.metrics.MeetingSeriesBuilds.Inc()
	s.logger.Info("meeting series generated",
		zap.Int("count", req.Count),
		zap.String("start_date", req.StartDate))
	return entries, nil
}

// FindActiveMeeting returns the meeting whose 7-day window contains the
// given day, or nil when no window does. Only the most recently started
// candidates are scanned; the newest containing window wins, so an
// overlapping stale series never shadows the current one.
func (s *CalendarService) FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error) {
	candidates, err := s.repo.ListRecentStarts(ctx, day, s.locatorCandidates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load meeting candidates")
	}
	for i := range candidates {
		if candidates[i].Contains(day) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// EditMeetingAndShift moves one meeting to a new start date, optionally
// renaming it, and rebases every later meeting onto the weekly cadence from
// the new date. Earlier meetings keep their dates. The whole rebase is one
// transaction.
func (s *CalendarService) EditMeetingAndShift(ctx context.Context, id string, req ShiftMeetingRequest) ([]models.CalendarEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	newStart, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "")
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load meeting")
	}
	if entry.Kind != models.EntryKindMeeting {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}

	later, err := s.repo.ListMeetingsAfter(ctx, entry.SequenceNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load later meetings")
	}

	now := s.now().UTC()
	if req.Title != "" {
		entry.Title = req.Title
	}
	entry.StartDate = newStart
	entry.EndDate = newStart.AddDate(0, 0, models.MeetingWindowDays-1)
	entry.UpdatedAt = now
	rebased := make([]models.CalendarEntry, 0, len(later)+1)
	rebased = append(rebased, *entry)
	for _, m := range later {
		weeks := m.SequenceNumber - entry.SequenceNumber
		m.StartDate = newStart.AddDate(0, 0, weeks*models.MeetingWindowDays)
		m.EndDate = m.StartDate.AddDate(0, 0, models.MeetingWindowDays-1)
		m.UpdatedAt = now
		rebased = append(rebased, m)
	}

	if err := s.repo.RebaseMeetings(ctx, rebased); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to rebase meetings")
	}
	s.logger.Info("meeting series rebased",
		zap.String("meeting_id", id),
		zap.String("new_start", req.StartDate),
		zap.Int("shifted", len(later)))
	return rebased, nil
}

// CreateEntry adds a non-meeting calendar entry spanning one or more days.
func (s *CalendarService) CreateEntry(ctx context.Context, req CreateEntryRequest) (*models.CalendarEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "")
	}
	end := date
	if req.EndDate != "" {
		end, err = models.ParseDate(req.EndDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidDate, "")
		}
		if end.Before(date) {
			return nil, appErrors.Clone(appErrors.ErrInvalidDate, "end_date is before date")
		}
	}
	now := s.now().UTC()
	entry := &models.CalendarEntry{
		ID:        uuid.NewString(),
		Kind:      models.EntryKindOther,
		Title:     req.Title,
		StartDate: date,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create entry")
	}
	return entry, nil
}

// List returns the full calendar.
func (s *CalendarService) List(ctx context.Context) ([]models.CalendarEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list calendar")
	}
	return entries, nil
}

// Delete removes a calendar entry.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "calendar entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete entry")
	}
	return nil
}
