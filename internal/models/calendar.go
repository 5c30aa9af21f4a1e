package models

import (
	"fmt"
	"time"
)

// Calendar entry kinds. Meetings carry a sequence number and participate in
// the weekly cadence; other entries (exams, holidays) do not.
const (
	EntryKindMeeting = "meeting"
	EntryKindOther   = "other"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MeetingWindowDays is the length of the window a meeting stays active for.
const MeetingWindowDays = 7

// CalendarEntry is one row of the academic calendar, spanning the inclusive
// range [StartDate, EndDate]. For meetings EndDate is always StartDate+6d;
// "other" entries (exams, holidays) carry whatever range the admin entered,
// down to a single day.
type CalendarEntry struct {
	ID             string    `db:"id" json:"id"`
	Kind           string    `db:"kind" json:"kind"`
	Title          string    `db:"title" json:"title"`
	SequenceNumber int       `db:"sequence_number" json:"sequence_number,omitempty"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MeetingID builds the deterministic identifier for the n-th meeting.
func MeetingID(n int) string {
	return fmt.Sprintf("meeting_%d", n)
}

// MeetingTitle builds the display title for the n-th meeting.
func MeetingTitle(n int) string {
	return fmt.Sprintf("Pertemuan %d", n)
}

// WindowEnd returns the last day of the entry's active window.
func (e CalendarEntry) WindowEnd() time.Time {
	return e.StartDate.AddDate(0, 0, MeetingWindowDays-1)
}

// Contains reports whether the given day falls inside the entry's window.
// Both operands are truncated to dates so the time of day never matters.
func (e CalendarEntry) Contains(day time.Time) bool {
	d := DateOnly(day)
	start := DateOnly(e.StartDate)
	end := DateOnly(e.WindowEnd())
	return !d.Before(start) && !d.After(end)
}

// DateOnly strips the clock from a timestamp, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
