package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type stubAttendanceRepo struct {
	records map[string]models.AttendanceRecord
	batches [][]models.AttendanceRecord
}

func recordKey(sessionID, nim string, seq int) string {
	return sessionID + "/" + nim + "/" + strconv.Itoa(seq)
}

func newStubAttendanceRepo() *stubAttendanceRepo {
	return &stubAttendanceRepo{records: map[string]models.AttendanceRecord{}}
}

func (s *stubAttendanceRepo) Get(ctx context.Context, sessionID, nim string, seq int) (*models.AttendanceRecord, error) {
	record, ok := s.records[recordKey(sessionID, nim, seq)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &record, nil
}

func (s *stubAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	s.records[recordKey(record.SessionID, record.NIM, record.SequenceNumber)] = *record
	return nil
}

func (s *stubAttendanceRepo) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	s.batches = append(s.batches, records)
	for _, record := range records {
		s.records[recordKey(record.SessionID, record.NIM, record.SequenceNumber)] = record
	}
	return nil
}

func (s *stubAttendanceRepo) ListByStudentSession(ctx context.Context, sessionID, nim string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, record := range s.records {
		if record.SessionID == sessionID && record.NIM == nim {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubAttendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, record := range s.records {
		if record.SessionID == sessionID {
			out = append(out, record)
		}
	}
	return out, nil
}

type stubEnrollments struct {
	rows  []models.Enrollment
	taken []string
}

func (s *stubEnrollments) ListByStudent(ctx context.Context, nim string) ([]models.Enrollment, error) {
	return s.rows, nil
}

func (s *stubEnrollments) ListTakenBySession(ctx context.Context, sessionID string) ([]string, error) {
	return s.taken, nil
}

type stubSessions struct {
	byID    map[string]models.CourseSession
	byKelas []models.CourseSession
}

func (s *stubSessions) GetByID(ctx context.Context, id string) (*models.CourseSession, error) {
	session, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}

func (s *stubSessions) ListByKelas(ctx context.Context, kelas string) ([]models.CourseSession, error) {
	return s.byKelas, nil
}

type stubStudents struct {
	byMemberID map[string]models.User
	byKelas    []models.User
}

func (s *stubStudents) GetByMemberID(ctx context.Context, memberID string) (*models.User, error) {
	user, ok := s.byMemberID[memberID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (s *stubStudents) ListByKelas(ctx context.Context, kelas string) ([]models.User, error) {
	return s.byKelas, nil
}

type stubLocator struct {
	meeting *models.CalendarEntry
}

func (s *stubLocator) FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error) {
	return s.meeting, nil
}

// monday is a Monday so weekday placement is predictable.
var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func activeMeeting(seq int) *models.CalendarEntry {
	return &models.CalendarEntry{
		ID:             models.MeetingID(seq),
		Kind:           models.EntryKindMeeting,
		SequenceNumber: seq,
		StartDate:      monday,
	}
}

func algorithmsOnMonday() models.CourseSession {
	return models.CourseSession{
		ID:         "jadwal-1",
		Kode:       "IF101",
		Matkul:     "Algoritma",
		Kelas:      "TI-1A",
		DosenID:    "dosen-1",
		Hari:       "senin",
		JamMulai:   "07:30",
		JamSelesai: "09:10",
	}
}

// newAttendanceFixture enrolls student 210001 as taken in every session.
func newAttendanceFixture(meeting *models.CalendarEntry, sessions ...models.CourseSession) (*AttendanceService, *stubAttendanceRepo) {
	records := newStubAttendanceRepo()
	byID := map[string]models.CourseSession{}
	rows := make([]models.Enrollment, 0, len(sessions))
	for _, session := range sessions {
		byID[session.ID] = session
		rows = append(rows, models.Enrollment{NIM: "210001", SessionID: session.ID, State: models.EnrollmentTaken})
	}
	svc := NewAttendanceService(
		records,
		&stubEnrollments{rows: rows},
		&stubSessions{byID: byID, byKelas: sessions},
		&stubStudents{byMemberID: map[string]models.User{
			"210001": {MemberID: "210001", Name: "Andi", Kelas: "TI-1A", Role: models.RoleMahasiswa},
		}},
		&stubLocator{meeting: meeting},
		nil, nil, nil,
	)
	return svc, records
}

func TestEvaluateDayNoActiveMeeting(t *testing.T) {
	svc, records := newAttendanceFixture(nil, algorithmsOnMonday())

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	assert.Empty(t, evals)
	assert.Empty(t, records.records)
}

func TestEvaluateDayUpcomingBeforeSlot(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(6 * time.Hour) } // 06:00 Monday

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalUpcoming, evals[0].State)
	assert.Empty(t, records.records)
}

func TestEvaluateDayFormPendingDuringSlot(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(8 * time.Hour) } // 08:00 Monday

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalFormPending, evals[0].State)
	assert.Empty(t, records.records)
}

func TestEvaluateDayAutoClosesMissedSlot(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(10 * time.Hour) } // 10:00, slot ended 09:10

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalAutoAbsent, evals[0].State)

	closed := records.records[recordKey("jadwal-1", "210001", 3)]
	assert.Equal(t, models.StatusAlpha, closed.Status)
	assert.Equal(t, models.FilledBySystem, closed.FilledBy)
	assert.True(t, closed.AutoMarked)
	assert.Equal(t, models.AutoAbsentNote, closed.Note)
}

func TestEvaluateDayFormPendingAtSlotEnd(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(9*time.Hour + 10*time.Minute) } // 09:10 sharp

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalFormPending, evals[0].State)
	assert.Empty(t, records.records)
}

func TestEvaluateDayIgnoresOtherWeekdays(t *testing.T) {
	statistics := models.CourseSession{
		ID: "jadwal-2", Kode: "IF103", Matkul: "Statistika", Kelas: "TI-1A",
		DosenID: "dosen-1", Hari: "jumat", JamMulai: "13:00", JamSelesai: "14:40",
	}
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday(), statistics)
	// Wednesday: the Monday slot is over and the Friday slot has not come,
	// but neither meets today, so the day has nothing to settle.
	svc.now = func() time.Time { return monday.AddDate(0, 0, 2).Add(10 * time.Hour) }

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	assert.Empty(t, evals)
	assert.Empty(t, records.records)
}

func TestEvaluateDayKeepsExistingRecord(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	existing := models.AttendanceRecord{
		SessionID:      "jadwal-1",
		NIM:            "210001",
		SequenceNumber: 3,
		Status:         models.StatusIzin,
		FilledBy:       models.FilledByMahasiswa,
	}
	records.records[recordKey("jadwal-1", "210001", 3)] = existing
	svc.now = func() time.Time { return monday.Add(10 * time.Hour) }

	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalRecorded, evals[0].State)
	// The Izin survives the past-deadline evaluation.
	assert.Equal(t, models.StatusIzin, records.records[recordKey("jadwal-1", "210001", 3)].Status)
}

func TestEvaluateDayAutoCloseIsIdempotent(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(10 * time.Hour) }

	_, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)
	evals, err := svc.EvaluateDay(context.Background(), "210001")
	require.NoError(t, err)

	// Second run sees the system record and reports it, with still exactly
	// one record in the store.
	require.Len(t, evals, 1)
	assert.Equal(t, models.EvalRecorded, evals[0].State)
	assert.Len(t, records.records, 1)
}

func TestEvaluateDayOnlyCoversTakenSessions(t *testing.T) {
	session := algorithmsOnMonday()
	for name, rows := range map[string][]models.Enrollment{
		"skipped": {{NIM: "210001", SessionID: session.ID, State: models.EnrollmentSkipped}},
		"no rows": nil,
	} {
		t.Run(name, func(t *testing.T) {
			records := newStubAttendanceRepo()
			svc := NewAttendanceService(
				records,
				&stubEnrollments{rows: rows},
				&stubSessions{byID: map[string]models.CourseSession{session.ID: session}, byKelas: []models.CourseSession{session}},
				&stubStudents{byMemberID: map[string]models.User{
					"210001": {MemberID: "210001", Kelas: "TI-1A", Role: models.RoleMahasiswa},
				}},
				&stubLocator{meeting: activeMeeting(3)},
				nil, nil, nil,
			)
			svc.now = func() time.Time { return monday.Add(10 * time.Hour) }

			evals, err := svc.EvaluateDay(context.Background(), "210001")
			require.NoError(t, err)
			assert.Empty(t, evals)
			assert.Empty(t, records.records)
		})
	}
}

func TestSubmitWithinWindow(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(8 * time.Hour) }

	record, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusSakit, Note: "demam"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSakit, record.Status)
	assert.Equal(t, models.FilledByMahasiswa, record.FilledBy)
	assert.Equal(t, 3, record.SequenceNumber)
	assert.False(t, record.AutoMarked)
	assert.Len(t, records.records, 1)
}

func TestSubmitAtSlotEnd(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(9*time.Hour + 10*time.Minute) } // 09:10 sharp

	_, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusHadir})
	require.NoError(t, err)
	assert.Len(t, records.records, 1)
}

func TestSubmitBeforeWindowOpens(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(6 * time.Hour) } // 06:00, slot opens 07:30

	_, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusHadir})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, records.records)
}

func TestSubmitAfterWindowClosed(t *testing.T) {
	svc, _ := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(12 * time.Hour) } // noon, slot ended 09:10

	_, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusHadir})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsAlphaStatus(t *testing.T) {
	svc, _ := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	svc.now = func() time.Time { return monday.Add(8 * time.Hour) }

	_, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusAlpha})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitWithoutActiveMeeting(t *testing.T) {
	svc, _ := newAttendanceFixture(nil, algorithmsOnMonday())

	_, err := svc.Submit(context.Background(), "210001", SubmitRequest{SessionID: "jadwal-1", Status: models.StatusHadir})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMatrixSaveOverridesSystemAlpha(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())
	records.records[recordKey("jadwal-1", "210001", 3)] = models.AttendanceRecord{
		SessionID: "jadwal-1", NIM: "210001", SequenceNumber: 3,
		Status: models.StatusAlpha, FilledBy: models.FilledBySystem, AutoMarked: true,
	}

	saved, err := svc.MatrixSave(context.Background(), "dosen-1", MatrixSaveRequest{
		SessionID: "jadwal-1",
		Cells: []MatrixCell{
			{NIM: "210001", SequenceNumber: 3, Status: models.StatusHadir},
			{NIM: "210002", SequenceNumber: 3, Status: models.StatusIzin},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	corrected := records.records[recordKey("jadwal-1", "210001", 3)]
	assert.Equal(t, models.StatusHadir, corrected.Status)
	assert.Equal(t, models.FilledByDosen, corrected.FilledBy)
	require.Len(t, records.batches, 1)
}

func TestMatrixSaveRejectsForeignSession(t *testing.T) {
	svc, _ := newAttendanceFixture(activeMeeting(3), algorithmsOnMonday())

	_, err := svc.MatrixSave(context.Background(), "dosen-2", MatrixSaveRequest{
		SessionID: "jadwal-1",
		Cells:     []MatrixCell{{NIM: "210001", SequenceNumber: 1, Status: models.StatusHadir}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMatrixTotals(t *testing.T) {
	session := algorithmsOnMonday()
	records := newStubAttendanceRepo()
	records.records[recordKey(session.ID, "210001", 1)] = models.AttendanceRecord{SessionID: session.ID, NIM: "210001", SequenceNumber: 1, Status: models.StatusHadir}
	records.records[recordKey(session.ID, "210001", 2)] = models.AttendanceRecord{SessionID: session.ID, NIM: "210001", SequenceNumber: 2, Status: models.StatusAlpha}
	svc := NewAttendanceService(
		records,
		&stubEnrollments{},
		&stubSessions{byID: map[string]models.CourseSession{session.ID: session}},
		&stubStudents{byKelas: []models.User{
			{MemberID: "210001", Name: "Andi"},
			{MemberID: "210002", Name: "Budi"},
		}},
		&stubLocator{},
		nil, nil, nil,
	)

	rows, err := svc.Matrix(context.Background(), "dosen-1", session.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Totals.Hadir)
	assert.Equal(t, 1, rows[0].Totals.Alpha)
	assert.Equal(t, models.StatusHadir, rows[0].Cells[1])
	assert.Empty(t, rows[1].Cells)
}

func TestHistoryTotals(t *testing.T) {
	svc, records := newAttendanceFixture(activeMeeting(1), algorithmsOnMonday())
	records.records[recordKey("jadwal-1", "210001", 1)] = models.AttendanceRecord{SessionID: "jadwal-1", NIM: "210001", SequenceNumber: 1, Status: models.StatusHadir}
	records.records[recordKey("jadwal-1", "210001", 2)] = models.AttendanceRecord{SessionID: "jadwal-1", NIM: "210001", SequenceNumber: 2, Status: models.StatusSakit}

	history, totals, err := svc.History(context.Background(), "210001", "jadwal-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 1, totals.Hadir)
	assert.Equal(t, 1, totals.Sakit)
}
