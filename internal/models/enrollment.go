package models

import "time"

// Enrollment states. Only a "taken" row puts the course session in scope for
// the auto-closer and the lecturer recap; a "skipped" row records a declined
// offer so the session stops showing as unchosen.
const (
	EnrollmentTaken   = "taken"
	EnrollmentSkipped = "skipped"
)

// Enrollment links a student to a course session.
type Enrollment struct {
	ID        int64     `db:"id" json:"id"`
	NIM       string    `db:"nim" json:"nim"`
	SessionID string    `db:"session_id" json:"session_id"`
	State     string    `db:"state" json:"state"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
