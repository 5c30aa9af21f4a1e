package models

import "time"

// Attendance status codes as stored: Hadir, Izin, Sakit, Alpha.
const (
	StatusHadir = "H"
	StatusIzin  = "I"
	StatusSakit = "S"
	StatusAlpha = "A"
)

// Sources for a recorded status.
const (
	FilledByMahasiswa = "mahasiswa"
	FilledByDosen     = "dosen"
	FilledBySystem    = "system"
)

// Daily evaluation states for one (session, meeting) pair.
const (
	EvalRecorded    = "recorded"
	EvalFormPending = "form-pending"
	EvalAutoAbsent  = "auto-absent"
	EvalUpcoming    = "upcoming"
)

// AutoAbsentNote is written on records closed by the system.
const AutoAbsentNote = "not submitted in time"

// AttendanceRecord is one student's status for one meeting of one course
// session. The triple (SessionID, NIM, SequenceNumber) is unique.
type AttendanceRecord struct {
	ID             int64     `db:"id" json:"id"`
	SessionID      string    `db:"session_id" json:"session_id"`
	NIM            string    `db:"nim" json:"nim"`
	SequenceNumber int       `db:"sequence_number" json:"sequence_number"`
	Status         string    `db:"status" json:"status"`
	Note           string    `db:"note" json:"note,omitempty"`
	FilledBy       string    `db:"filled_by" json:"filled_by"`
	AutoMarked     bool      `db:"auto_marked" json:"auto_marked"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SessionEvaluation is the auto-closer's verdict for one course session on a
// given day.
type SessionEvaluation struct {
	Session        CourseSession     `json:"session"`
	SequenceNumber int               `json:"sequence_number"`
	State          string            `json:"state"`
	Record         *AttendanceRecord `json:"record,omitempty"`
}

// AttendanceTotals aggregates one student's statuses over a course session.
type AttendanceTotals struct {
	Hadir int `json:"hadir"`
	Izin  int `json:"izin"`
	Sakit int `json:"sakit"`
	Alpha int `json:"alpha"`
}

// Add counts the record into the matching bucket.
func (t *AttendanceTotals) Add(status string) {
	switch status {
	case StatusHadir:
		t.Hadir++
	case StatusIzin:
		t.Izin++
	case StatusSakit:
		t.Sakit++
	case StatusAlpha:
		t.Alpha++
	}
}

// MatrixRow is one student's line in the lecturer recap: a cell per meeting
// plus running totals.
type MatrixRow struct {
	NIM    string           `json:"nim"`
	Name   string           `json:"name"`
	Cells  map[int]string   `json:"cells"`
	Totals AttendanceTotals `json:"totals"`
}
