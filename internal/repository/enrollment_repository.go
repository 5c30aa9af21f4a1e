package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
)

// EnrollmentRepository persists the student/course-session links.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = "id, nim, session_id, state, created_at, updated_at"

// ListByStudent returns all enrollment rows for one student, taken and
// skipped alike.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, nim string) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE nim = $1 ORDER BY session_id ASC", enrollmentColumns)
	var rows []models.Enrollment
	if err := r.db.SelectContext(ctx, &rows, query, nim); err != nil {
		return nil, fmt.Errorf("list enrollments for %s: %w", nim, err)
	}
	return rows, nil
}

// ListTakenBySession returns the NIMs enrolled as taken in one course
// session. Drives the lecturer matrix row set.
func (r *EnrollmentRepository) ListTakenBySession(ctx context.Context, sessionID string) ([]string, error) {
	const query = `SELECT nim FROM enrollments WHERE session_id = $1 AND state = 'taken' ORDER BY nim ASC`
	var nims []string
	if err := r.db.SelectContext(ctx, &nims, query, sessionID); err != nil {
		return nil, fmt.Errorf("list taken enrollments for %s: %w", sessionID, err)
	}
	return nims, nil
}

// Upsert writes one enrollment row keyed on (nim, session_id). Re-enrolling
// flips the state instead of duplicating the row.
func (r *EnrollmentRepository) Upsert(ctx context.Context, row *models.Enrollment) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO enrollments (nim, session_id, state, created_at, updated_at)
VALUES (:nim, :session_id, :state, :created_at, :updated_at)
ON CONFLICT (nim, session_id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert enrollment %s/%s: %w", row.NIM, row.SessionID, err)
	}
	return nil
}

// Delete removes one enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, nim, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE nim = $1 AND session_id = $2", nim, sessionID); err != nil {
		return fmt.Errorf("delete enrollment %s/%s: %w", nim, sessionID, err)
	}
	return nil
}
