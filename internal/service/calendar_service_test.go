package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type stubCalendarRepo struct {
	entries      map[string]models.CalendarEntry
	upserted     []models.CalendarEntry
	rebased      []models.CalendarEntry
	recentStarts []models.CalendarEntry
	failUpsert   error
	failList     error
}

func newStubCalendarRepo() *stubCalendarRepo {
	return &stubCalendarRepo{entries: map[string]models.CalendarEntry{}}
}

func (s *stubCalendarRepo) List(ctx context.Context) ([]models.CalendarEntry, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	out := make([]models.CalendarEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *stubCalendarRepo) GetByID(ctx context.Context, id string) (*models.CalendarEntry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &entry, nil
}

func (s *stubCalendarRepo) ListRecentStarts(ctx context.Context, day time.Time, limit int) ([]models.CalendarEntry, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	if len(s.recentStarts) > limit {
		return s.recentStarts[:limit], nil
	}
	return s.recentStarts, nil
}

func (s *stubCalendarRepo) ListMeetingsAfter(ctx context.Context, seq int) ([]models.CalendarEntry, error) {
	var out []models.CalendarEntry
	for n := seq + 1; ; n++ {
		entry, ok := s.entries[models.MeetingID(n)]
		if !ok {
			break
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *stubCalendarRepo) UpsertMeetings(ctx context.Context, entries []models.CalendarEntry) error {
	if s.failUpsert != nil {
		return s.failUpsert
	}
	s.upserted = entries
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

func (s *stubCalendarRepo) RebaseMeetings(ctx context.Context, entries []models.CalendarEntry) error {
	s.rebased = entries
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

func (s *stubCalendarRepo) Create(ctx context.Context, entry *models.CalendarEntry) error {
	s.entries[entry.ID] = *entry
	return nil
}

func (s *stubCalendarRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.entries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.entries, id)
	return nil
}

func seedMeetings(repo *stubCalendarRepo, count int, start time.Time) {
	for n := 1; n <= count; n++ {
		entry := models.CalendarEntry{
			ID:             models.MeetingID(n),
			Kind:           models.EntryKindMeeting,
			Title:          models.MeetingTitle(n),
			SequenceNumber: n,
			StartDate:      start.AddDate(0, 0, (n-1)*7),
			EndDate:        start.AddDate(0, 0, (n-1)*7+6),
		}
		repo.entries[entry.ID] = entry
	}
}

func TestGenerateMeetingsWeeklyCadence(t *testing.T) {
	repo := newStubCalendarRepo()
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	entries, err := svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: 16, StartDate: "2026-03-02"})
	require.NoError(t, err)
	require.Len(t, entries, 16)

	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	for i, entry := range entries {
		n := i + 1
		assert.Equal(t, models.MeetingID(n), entry.ID)
		assert.Equal(t, models.MeetingTitle(n), entry.Title)
		assert.Equal(t, n, entry.SequenceNumber)
		assert.Equal(t, start.AddDate(0, 0, i*7), entry.StartDate)
		assert.Equal(t, start.AddDate(0, 0, i*7+6), entry.EndDate)
	}
	// Windows tile the semester without gaps: each start is the day after
	// the previous window's end.
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].EndDate.AddDate(0, 0, 1), entries[i].StartDate)
	}
}

func TestGenerateMeetingsRejectsCountOutOfBounds(t *testing.T) {
	repo := newStubCalendarRepo()
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	for _, count := range []int{-1, 0, 21, 100} {
		_, err := svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: count, StartDate: "2026-03-02"})
		require.Error(t, err, "count %d", count)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidCount.Code, appErr.Code, "count %d", count)
	}
	assert.Empty(t, repo.upserted)
}

func TestGenerateMeetingsRejectsBadDate(t *testing.T) {
	svc := NewCalendarService(newStubCalendarRepo(), nil, nil, 5, nil)

	for _, date := range []string{"02-03-2026", "2026/03/02", "tomorrow", "2026-13-40"} {
		_, err := svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: 10, StartDate: date})
		require.Error(t, err, "date %q", date)
		assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)
	}
}

func TestGenerateMeetingsIsIdempotent(t *testing.T) {
	repo := newStubCalendarRepo()
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	_, err := svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: 10, StartDate: "2026-03-02"})
	require.NoError(t, err)
	_, err = svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: 10, StartDate: "2026-03-02"})
	require.NoError(t, err)

	meetings := 0
	for _, entry := range repo.entries {
		if entry.Kind == models.EntryKindMeeting {
			meetings++
		}
	}
	assert.Equal(t, 10, meetings)
}

func TestGenerateMeetingsStoreFailure(t *testing.T) {
	repo := newStubCalendarRepo()
	repo.failUpsert = errors.New("connection refused")
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	_, err := svc.GenerateMeetings(context.Background(), GenerateMeetingsRequest{Count: 10, StartDate: "2026-03-02"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}

func TestFindActiveMeetingWithinWindow(t *testing.T) {
	repo := newStubCalendarRepo()
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	repo.recentStarts = []models.CalendarEntry{
		{ID: "meeting_2", Kind: models.EntryKindMeeting, SequenceNumber: 2, StartDate: start.AddDate(0, 0, 7)},
		{ID: "meeting_1", Kind: models.EntryKindMeeting, SequenceNumber: 1, StartDate: start},
	}
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	// First and last day of meeting 2's window.
	for _, day := range []time.Time{
		start.AddDate(0, 0, 7),
		start.AddDate(0, 0, 13).Add(23 * time.Hour),
	} {
		active, err := svc.FindActiveMeeting(context.Background(), day)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, "meeting_2", active.ID)
	}
}

func TestFindActiveMeetingNoneActive(t *testing.T) {
	repo := newStubCalendarRepo()
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	repo.recentStarts = []models.CalendarEntry{
		{ID: "meeting_1", Kind: models.EntryKindMeeting, SequenceNumber: 1, StartDate: start},
	}
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	// Eight days after the only meeting started: window expired.
	active, err := svc.FindActiveMeeting(context.Background(), start.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestFindActiveMeetingEmptyCalendar(t *testing.T) {
	svc := NewCalendarService(newStubCalendarRepo(), nil, nil, 5, nil)

	active, err := svc.FindActiveMeeting(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestEditMeetingAndShiftRebasesLaterMeetings(t *testing.T) {
	repo := newStubCalendarRepo()
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	seedMeetings(repo, 16, start)
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	rebased, err := svc.EditMeetingAndShift(context.Background(), "meeting_5", ShiftMeetingRequest{
		Title:     "Pertemuan 5 (pengganti)",
		StartDate: "2026-04-13",
	})
	require.NoError(t, err)
	require.Len(t, rebased, 12) // meeting 5 plus 6..16

	newStart := time.Date(2026, time.April, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "meeting_5", rebased[0].ID)
	assert.Equal(t, "Pertemuan 5 (pengganti)", rebased[0].Title)
	assert.Equal(t, newStart, rebased[0].StartDate)
	assert.Equal(t, newStart.AddDate(0, 0, 6), rebased[0].EndDate)
	for i, entry := range rebased[1:] {
		seq := 6 + i
		assert.Equal(t, models.MeetingID(seq), entry.ID)
		assert.Equal(t, models.MeetingTitle(seq), entry.Title)
		assert.Equal(t, newStart.AddDate(0, 0, (seq-5)*7), entry.StartDate)
		assert.Equal(t, entry.StartDate.AddDate(0, 0, 6), entry.EndDate)
	}

	// Meetings 1..4 keep their original dates.
	for n := 1; n <= 4; n++ {
		assert.Equal(t, start.AddDate(0, 0, (n-1)*7), repo.entries[models.MeetingID(n)].StartDate)
	}
}

func TestEditMeetingAndShiftKeepsTitleWhenOmitted(t *testing.T) {
	repo := newStubCalendarRepo()
	seedMeetings(repo, 3, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	rebased, err := svc.EditMeetingAndShift(context.Background(), "meeting_2", ShiftMeetingRequest{StartDate: "2026-03-16"})
	require.NoError(t, err)
	require.NotEmpty(t, rebased)
	assert.Equal(t, models.MeetingTitle(2), rebased[0].Title)
}

func TestEditMeetingAndShiftUnknownMeeting(t *testing.T) {
	svc := NewCalendarService(newStubCalendarRepo(), nil, nil, 5, nil)

	_, err := svc.EditMeetingAndShift(context.Background(), "meeting_9", ShiftMeetingRequest{StartDate: "2026-04-13"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEditMeetingAndShiftRejectsBadDate(t *testing.T) {
	repo := newStubCalendarRepo()
	seedMeetings(repo, 3, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	_, err := svc.EditMeetingAndShift(context.Background(), "meeting_2", ShiftMeetingRequest{StartDate: "13/04/2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.rebased)
}

func TestEditMeetingAndShiftRejectsNonMeeting(t *testing.T) {
	repo := newStubCalendarRepo()
	repo.entries["uts"] = models.CalendarEntry{ID: "uts", Kind: models.EntryKindOther, Title: "UTS"}
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	// An id that resolves to a non-meeting entry is as absent as an unknown
	// one.
	_, err := svc.EditMeetingAndShift(context.Background(), "uts", ShiftMeetingRequest{StartDate: "2026-04-13"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateEntryAndDelete(t *testing.T) {
	repo := newStubCalendarRepo()
	svc := NewCalendarService(repo, nil, nil, 5, nil)

	entry, err := svc.CreateEntry(context.Background(), CreateEntryRequest{Title: "Libur Nyepi", Date: "2026-04-20"})
	require.NoError(t, err)
	assert.Equal(t, models.EntryKindOther, entry.Kind)
	assert.NotEmpty(t, entry.ID)
	// No end date: a single-day event.
	assert.Equal(t, entry.StartDate, entry.EndDate)

	require.NoError(t, svc.Delete(context.Background(), entry.ID))
	err = svc.Delete(context.Background(), entry.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateEntrySpansMultipleDays(t *testing.T) {
	svc := NewCalendarService(newStubCalendarRepo(), nil, nil, 5, nil)

	entry, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Title:   "UTS Ganjil",
		Date:    "2026-04-20",
		EndDate: "2026-04-25",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC), entry.StartDate)
	assert.Equal(t, time.Date(2026, time.April, 25, 0, 0, 0, 0, time.UTC), entry.EndDate)
}

func TestCreateEntryRejectsInvertedRange(t *testing.T) {
	svc := NewCalendarService(newStubCalendarRepo(), nil, nil, 5, nil)

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Title:   "UTS Ganjil",
		Date:    "2026-04-25",
		EndDate: "2026-04-20",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)
}
