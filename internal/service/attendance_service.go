package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type attendanceRepository interface {
	Get(ctx context.Context, sessionID, nim string, seq int) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	ListByStudentSession(ctx context.Context, sessionID, nim string) ([]models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
}

type enrollmentReader interface {
	ListByStudent(ctx context.Context, nim string) ([]models.Enrollment, error)
	ListTakenBySession(ctx context.Context, sessionID string) ([]string, error)
}

type sessionReader interface {
	GetByID(ctx context.Context, id string) (*models.CourseSession, error)
	ListByKelas(ctx context.Context, kelas string) ([]models.CourseSession, error)
}

type studentReader interface {
	GetByMemberID(ctx context.Context, memberID string) (*models.User, error)
	ListByKelas(ctx context.Context, kelas string) ([]models.User, error)
}

type meetingLocator interface {
	FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error)
}

// AttendanceService records attendance and closes missed submission windows.
type AttendanceService struct {
	records     attendanceRepository
	enrollments enrollmentReader
	sessions    sessionReader
	students    studentReader
	locator     meetingLocator
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *Metrics
	now         func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(
	records attendanceRepository,
	enrollments enrollmentReader,
	sessions sessionReader,
	students studentReader,
	locator meetingLocator,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *Metrics,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics()
	}
	return &AttendanceService{
		records:     records,
		enrollments: enrollments,
		sessions:    sessions,
		students:    students,
		locator:     locator,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
	}
}

// SubmitRequest is a student's self-report for the active meeting.
type SubmitRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=H I S"`
	Note      string `json:"note"`
}

// MatrixCell is one cell of the lecturer recap payload.
type MatrixCell struct {
	NIM            string `json:"nim" validate:"required"`
	SequenceNumber int    `json:"sequence_number" validate:"required,min=1,max=20"`
	Status         string `json:"status" validate:"required,oneof=H I S A"`
	Note           string `json:"note"`
}

// MatrixSaveRequest is the lecturer's bulk save for one course session.
type MatrixSaveRequest struct {
	SessionID string       `json:"session_id" validate:"required"`
	Cells     []MatrixCell `json:"cells" validate:"required,min=1,dive"`
}

// EvaluateDay settles a student's taken sessions that meet on now's weekday
// for the active meeting: already recorded, still open for submission, not
// yet reached, or past its slot, in which case the system writes Alpha.
// Sessions on other weekdays are out of scope for the day. The Alpha write is
// an upsert on the composite key, so re-evaluating the same day never
// duplicates or flips an existing record.
func (s *AttendanceService) EvaluateDay(ctx context.Context, nim string) ([]models.SessionEvaluation, error) {
	now := s.now()

	meeting, err := s.locator.FindActiveMeeting(ctx, now)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return []models.SessionEvaluation{}, nil
	}

	student, err := s.students.GetByMemberID(ctx, nim)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}

	taken, err := s.takenSessions(ctx, student)
	if err != nil {
		return nil, err
	}

	evaluations := make([]models.SessionEvaluation, 0, len(taken))
	for _, session := range taken {
		if !session.MatchesDay(now) {
			continue
		}
		eval, err := s.evaluateSession(ctx, session, *meeting, nim, now)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, eval)
	}
	return evaluations, nil
}

// takenSessions resolves the sessions the student explicitly took from the
// class timetable. Enrollment is opt-in: a session without a taken row is
// never evaluated, so no Alpha can land on a course the student never chose.
func (s *AttendanceService) takenSessions(ctx context.Context, student *models.User) ([]models.CourseSession, error) {
	sessions, err := s.sessions.ListByKelas(ctx, student.Kelas)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load timetable")
	}

	rows, err := s.enrollments.ListByStudent(ctx, student.MemberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load enrollments")
	}
	taken := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.State == models.EnrollmentTaken {
			taken[row.SessionID] = true
		}
	}
	kept := sessions[:0]
	for _, session := range sessions {
		if taken[session.ID] {
			kept = append(kept, session)
		}
	}
	return kept, nil
}

func (s *AttendanceService) evaluateSession(ctx context.Context, session models.CourseSession, meeting models.CalendarEntry, nim string, now time.Time) (models.SessionEvaluation, error) {
	eval := models.SessionEvaluation{
		Session:        session,
		SequenceNumber: meeting.SequenceNumber,
	}

	record, err := s.records.Get(ctx, session.ID, nim, meeting.SequenceNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return eval, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance record")
	}
	if record != nil {
		eval.State = models.EvalRecorded
		eval.Record = record
		return eval, nil
	}

	occurrence, err := sessionOccurrence(session, meeting)
	if err != nil {
		// Malformed weekday or clock on the slot; leave it open rather
		// than auto-closing on bad data.
		s.logger.Warn("cannot place session in meeting window",
			zap.String("session_id", session.ID),
			zap.Error(err))
		eval.State = models.EvalUpcoming
		return eval, nil
	}

	switch {
	case now.Before(occurrence.start):
		eval.State = models.EvalUpcoming
	case !now.After(occurrence.end):
		// The slot's last minute still shows the form.
		eval.State = models.EvalFormPending
	default:
		closed := &models.AttendanceRecord{
			SessionID:      session.ID,
			NIM:            nim,
			SequenceNumber: meeting.SequenceNumber,
			Status:         models.StatusAlpha,
			Note:           models.AutoAbsentNote,
			FilledBy:       models.FilledBySystem,
			AutoMarked:     true,
			RecordedAt:     now.UTC(),
			UpdatedAt:      now.UTC(),
		}
		if err := s.records.Upsert(ctx, closed); err != nil {
			return eval, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to close attendance record")
		}
		s.metrics.AutoAbsentTotal.Inc()
		s.logger.Info("attendance auto closed",
			zap.String("session_id", session.ID),
			zap.String("nim", nim),
			zap.Int("sequence_number", meeting.SequenceNumber))
		eval.State = models.EvalAutoAbsent
		eval.Record = closed
	}
	return eval, nil
}

type occurrence struct {
	start time.Time
	end   time.Time
}

// sessionOccurrence places a weekly slot inside a meeting window: the day in
// [start, start+6] whose weekday matches the slot, bounded by its clock
// times.
func sessionOccurrence(session models.CourseSession, meeting models.CalendarEntry) (occurrence, error) {
	startMin, err := models.ClockMinutes(session.JamMulai)
	if err != nil {
		return occurrence{}, err
	}
	endMin, err := models.ClockMinutes(session.JamSelesai)
	if err != nil {
		return occurrence{}, err
	}

	base := models.DateOnly(meeting.StartDate)
	for offset := 0; offset < models.MeetingWindowDays; offset++ {
		day := base.AddDate(0, 0, offset)
		if session.MatchesDay(day) {
			return occurrence{
				start: day.Add(time.Duration(startMin) * time.Minute),
				end:   day.Add(time.Duration(endMin) * time.Minute),
			}, nil
		}
	}
	return occurrence{}, fmt.Errorf("weekday %q not in meeting window", session.Hari)
}

// Submit records a student's self-report for the active meeting. Statuses
// are limited to H, I, S; Alpha is reserved for the system and lecturers.
func (s *AttendanceService) Submit(ctx context.Context, nim string, req SubmitRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	now := s.now()
	meeting, err := s.locator.FindActiveMeeting(ctx, now)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no active meeting today")
	}

	session, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}

	occ, err := sessionOccurrence(*session, *meeting)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course session has no slot in the active meeting")
	}
	if now.Before(occ.start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission window has not opened")
	}
	if now.After(occ.end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission window has closed")
	}

	record := &models.AttendanceRecord{
		SessionID:      req.SessionID,
		NIM:            nim,
		SequenceNumber: meeting.SequenceNumber,
		Status:         req.Status,
		Note:           req.Note,
		FilledBy:       models.FilledByMahasiswa,
		RecordedAt:     now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to save attendance")
	}
	s.metrics.SubmissionsTotal.WithLabelValues(models.FilledByMahasiswa).Inc()
	return record, nil
}

// MatrixSave stores a lecturer's recap edits for one course session in a
// single transaction. Lecturer entries override anything already recorded,
// including system Alphas.
func (s *AttendanceService) MatrixSave(ctx context.Context, dosenID string, req MatrixSaveRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	session, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}
	if session.DosenID != dosenID {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "course session belongs to another lecturer")
	}

	now := s.now().UTC()
	records := make([]models.AttendanceRecord, 0, len(req.Cells))
	for _, cell := range req.Cells {
		records = append(records, models.AttendanceRecord{
			SessionID:      req.SessionID,
			NIM:            cell.NIM,
			SequenceNumber: cell.SequenceNumber,
			Status:         cell.Status,
			Note:           cell.Note,
			FilledBy:       models.FilledByDosen,
			RecordedAt:     now,
			UpdatedAt:      now,
		})
	}
	if err := s.records.UpsertBatch(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to save recap")
	}
	s.metrics.SubmissionsTotal.WithLabelValues(models.FilledByDosen).Add(float64(len(records)))
	s.logger.Info("attendance recap saved",
		zap.String("session_id", req.SessionID),
		zap.Int("cells", len(records)))
	return len(records), nil
}

// Matrix builds the lecturer recap for one course session: a row per
// enrolled student with a cell per recorded meeting and running totals.
func (s *AttendanceService) Matrix(ctx context.Context, dosenID, sessionID string) ([]models.MatrixRow, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}
	if dosenID != "" && session.DosenID != dosenID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course session belongs to another lecturer")
	}

	students, err := s.students.ListByKelas(ctx, session.Kelas)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load students")
	}
	names := make(map[string]string, len(students))
	order := make([]string, 0, len(students))
	for _, student := range students {
		names[student.MemberID] = student.Name
		order = append(order, student.MemberID)
	}

	// Enrollment rows narrow the roster when present.
	taken, err := s.enrollments.ListTakenBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load enrollments")
	}
	if len(taken) > 0 {
		order = order[:0]
		for _, nim := range taken {
			order = append(order, nim)
		}
	}

	records, err := s.records.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load records")
	}
	cells := make(map[string]map[int]string)
	for _, record := range records {
		if cells[record.NIM] == nil {
			cells[record.NIM] = make(map[int]string)
		}
		cells[record.NIM][record.SequenceNumber] = record.Status
	}

	rows := make([]models.MatrixRow, 0, len(order))
	for _, nim := range order {
		row := models.MatrixRow{
			NIM:   nim,
			Name:  names[nim],
			Cells: cells[nim],
		}
		if row.Cells == nil {
			row.Cells = map[int]string{}
		}
		for _, status := range row.Cells {
			row.Totals.Add(status)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// History returns one student's records for a course session with totals.
func (s *AttendanceService) History(ctx context.Context, nim, sessionID string) ([]models.AttendanceRecord, models.AttendanceTotals, error) {
	records, err := s.records.ListByStudentSession(ctx, sessionID, nim)
	if err != nil {
		return nil, models.AttendanceTotals{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load history")
	}
	var totals models.AttendanceTotals
	for _, record := range records {
		totals.Add(record.Status)
	}
	return records, totals, nil
}
