package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
)

// ScheduleRepository persists course sessions (weekly timetable slots).
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const sessionColumns = "id, kode, matkul, kelas, dosen_id, dosen_name, hari, jam_mulai, jam_selesai, ruang, sks, created_at, updated_at"

// GetByID fetches one course session.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE id = $1", sessionColumns)
	var session models.CourseSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get course session %s: %w", id, err)
	}
	return &session, nil
}

// ListByKelas returns the timetable for one class. Ordering by weekday and
// start time happens in the service because weekday names sort by the
// school-week position, not alphabetically.
func (r *ScheduleRepository) ListByKelas(ctx context.Context, kelas string) ([]models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE kelas = $1", sessionColumns)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, kelas); err != nil {
		return nil, fmt.Errorf("list course sessions for kelas %s: %w", kelas, err)
	}
	return sessions, nil
}

// ListByDosen returns the sessions taught by one lecturer.
func (r *ScheduleRepository) ListByDosen(ctx context.Context, dosenID string) ([]models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions WHERE dosen_id = $1", sessionColumns)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, dosenID); err != nil {
		return nil, fmt.Errorf("list course sessions for dosen %s: %w", dosenID, err)
	}
	return sessions, nil
}

// List returns every course session.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.CourseSession, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sessions", sessionColumns)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list course sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts a course session.
func (r *ScheduleRepository) Create(ctx context.Context, session *models.CourseSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	const query = `INSERT INTO course_sessions (id, kode, matkul, kelas, dosen_id, dosen_name, hari, jam_mulai, jam_selesai, ruang, sks, created_at, updated_at)
VALUES (:id, :kode, :matkul, :kelas, :dosen_id, :dosen_name, :hari, :jam_mulai, :jam_selesai, :ruang, :sks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create course session: %w", err)
	}
	return nil
}

// Update modifies a course session.
func (r *ScheduleRepository) Update(ctx context.Context, session *models.CourseSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_sessions SET kode = :kode, matkul = :matkul, kelas = :kelas, dosen_id = :dosen_id,
dosen_name = :dosen_name, hari = :hari, jam_mulai = :jam_mulai, jam_selesai = :jam_selesai, ruang = :ruang, sks = :sks, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("update course session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course session: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course session.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM course_sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete course session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course session: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
