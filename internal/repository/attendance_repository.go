package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
)

// AttendanceRepository persists per-meeting attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, session_id, nim, sequence_number, status, note, filled_by, auto_marked, recorded_at, updated_at"

// Get fetches the record for one (session, student, meeting) triple.
func (r *AttendanceRepository) Get(ctx context.Context, sessionID, nim string, seq int) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE session_id = $1 AND nim = $2 AND sequence_number = $3`, attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, sessionID, nim, seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return &record, nil
}

// Upsert writes a record keyed on (session_id, nim, sequence_number). An
// existing row is overwritten, which keeps repeated auto-closer runs and
// lecturer corrections idempotent.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance_records (session_id, nim, sequence_number, status, note, filled_by, auto_marked, recorded_at, updated_at)
VALUES (:session_id, :nim, :sequence_number, :status, :note, :filled_by, :auto_marked, :recorded_at, :updated_at)
ON CONFLICT (session_id, nim, sequence_number) DO UPDATE SET
	status = EXCLUDED.status,
	note = EXCLUDED.note,
	filled_by = EXCLUDED.filled_by,
	auto_marked = EXCLUDED.auto_marked,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// UpsertBatch writes many records in one transaction. Used by the lecturer
// matrix save so a partial write never survives.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO attendance_records (session_id, nim, sequence_number, status, note, filled_by, auto_marked, recorded_at, updated_at)
VALUES (:session_id, :nim, :sequence_number, :status, :note, :filled_by, :auto_marked, :recorded_at, :updated_at)
ON CONFLICT (session_id, nim, sequence_number) DO UPDATE SET
	status = EXCLUDED.status,
	note = EXCLUDED.note,
	filled_by = EXCLUDED.filled_by,
	auto_marked = EXCLUDED.auto_marked,
	updated_at = EXCLUDED.updated_at`
	for i := range records {
		if _, err := tx.NamedExecContext(ctx, query, &records[i]); err != nil {
			return fmt.Errorf("upsert attendance record %s/%s/%d: %w",
				records[i].SessionID, records[i].NIM, records[i].SequenceNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	return nil
}

// ListByStudentSession returns a student's records for one course session in
// meeting order.
func (r *AttendanceRepository) ListByStudentSession(ctx context.Context, sessionID, nim string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE session_id = $1 AND nim = $2 ORDER BY sequence_number ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID, nim); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// ListBySession returns every record for one course session, ordered for the
// lecturer matrix.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE session_id = $1 ORDER BY nim ASC, sequence_number ASC`, attendanceColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance by session: %w", err)
	}
	return records, nil
}

// CountAutoMarked returns how many records the system closed. Feeds the
// dashboard and metrics.
func (r *AttendanceRepository) CountAutoMarked(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance_records WHERE auto_marked = TRUE"); err != nil {
		return 0, fmt.Errorf("count auto marked records: %w", err)
	}
	return total, nil
}
