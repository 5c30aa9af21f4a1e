package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
)

// CalendarRepository persists academic calendar entries.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const calendarColumns = "id, kind, title, sequence_number, start_date, end_date, created_at, updated_at"

// List returns calendar entries, meetings first in sequence order, then
// other entries by date.
func (r *CalendarRepository) List(ctx context.Context) ([]models.CalendarEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_entries
ORDER BY CASE kind WHEN 'meeting' THEN 0 ELSE 1 END, sequence_number ASC, start_date ASC`, calendarColumns)
	var entries []models.CalendarEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list calendar entries: %w", err)
	}
	return entries, nil
}

// GetByID fetches a single calendar entry.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.CalendarEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM calendar_entries WHERE id = $1", calendarColumns)
	var entry models.CalendarEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get calendar entry %s: %w", id, err)
	}
	return &entry, nil
}

// ListRecentStarts returns meetings already started by the given day, newest
// start first, capped at limit. The locator scans these for a containing
// window.
func (r *CalendarRepository) ListRecentStarts(ctx context.Context, day time.Time, limit int) ([]models.CalendarEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_entries
WHERE kind = 'meeting' AND start_date <= $1
ORDER BY start_date DESC LIMIT $2`, calendarColumns)
	var entries []models.CalendarEntry
	if err := r.db.SelectContext(ctx, &entries, query, models.DateOnly(day), limit); err != nil {
		return nil, fmt.Errorf("list recent meeting starts: %w", err)
	}
	return entries, nil
}

// ListMeetingsAfter returns meetings with a sequence number strictly greater
// than seq, in ascending sequence order.
func (r *CalendarRepository) ListMeetingsAfter(ctx context.Context, seq int) ([]models.CalendarEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_entries
WHERE kind = 'meeting' AND sequence_number > $1
ORDER BY sequence_number ASC`, calendarColumns)
	var entries []models.CalendarEntry
	if err := r.db.SelectContext(ctx, &entries, query, seq); err != nil {
		return nil, fmt.Errorf("list meetings after %d: %w", seq, err)
	}
	return entries, nil
}

// UpsertMeetings writes the whole meeting series in one transaction so a
// failed run leaves the calendar untouched. Re-running with the same ids
// overwrites the previous series.
func (r *CalendarRepository) UpsertMeetings(ctx context.Context, entries []models.CalendarEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert meetings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO calendar_entries (id, kind, title, sequence_number, start_date, end_date, created_at, updated_at)
VALUES (:id, :kind, :title, :sequence_number, :start_date, :end_date, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	sequence_number = EXCLUDED.sequence_number,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	updated_at = EXCLUDED.updated_at`
	for i := range entries {
		if _, err := tx.NamedExecContext(ctx, query, &entries[i]); err != nil {
			return fmt.Errorf("upsert meeting %s: %w", entries[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert meetings: %w", err)
	}
	return nil
}

// RebaseMeetings updates the window and title of an edited meeting and every
// meeting after it in one transaction.
func (r *CalendarRepository) RebaseMeetings(ctx context.Context, entries []models.CalendarEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebase meetings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `UPDATE calendar_entries
SET title = :title, start_date = :start_date, end_date = :end_date, updated_at = :updated_at
WHERE id = :id`
	for i := range entries {
		if _, err := tx.NamedExecContext(ctx, query, &entries[i]); err != nil {
			return fmt.Errorf("rebase meeting %s: %w", entries[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebase meetings: %w", err)
	}
	return nil
}

// Create inserts a non-meeting calendar entry.
func (r *CalendarRepository) Create(ctx context.Context, entry *models.CalendarEntry) error {
	const query = `INSERT INTO calendar_entries (id, kind, title, sequence_number, start_date, end_date, created_at, updated_at)
VALUES (:id, :kind, :title, :sequence_number, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create calendar entry: %w", err)
	}
	return nil
}

// Delete removes a calendar entry.
func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM calendar_entries WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete calendar entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar entry: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
