package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CourseSession is one weekly slot on the class timetable: a course taught
// to one class on a fixed weekday and time range.
type CourseSession struct {
	ID         string    `db:"id" json:"id"`
	Kode       string    `db:"kode" json:"kode"`
	Matkul     string    `db:"matkul" json:"matkul"`
	Kelas      string    `db:"kelas" json:"kelas"`
	DosenID    string    `db:"dosen_id" json:"dosen_id"`
	DosenName  string    `db:"dosen_name" json:"dosen_name"`
	Hari       string    `db:"hari" json:"hari"`
	JamMulai   string    `db:"jam_mulai" json:"jam_mulai"`
	JamSelesai string    `db:"jam_selesai" json:"jam_selesai"`
	Ruang      string    `db:"ruang" json:"ruang,omitempty"`
	SKS        int       `db:"sks" json:"sks"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// weekdayOrder fixes the display order of the Indonesian school week.
var weekdayOrder = map[string]int{
	"senin":  1,
	"selasa": 2,
	"rabu":   3,
	"kamis":  4,
	"jumat":  5,
	"sabtu":  6,
	"minggu": 7,
}

// indonesianWeekdays maps Go weekdays to their lowercase Indonesian names.
var indonesianWeekdays = map[time.Weekday]string{
	time.Monday:    "senin",
	time.Tuesday:   "selasa",
	time.Wednesday: "rabu",
	time.Thursday:  "kamis",
	time.Friday:    "jumat",
	time.Saturday:  "sabtu",
	time.Sunday:    "minggu",
}

// WeekdayRank returns the sort position of an Indonesian weekday name, or 8
// for unknown names so they sort last.
func WeekdayRank(hari string) int {
	if rank, ok := weekdayOrder[strings.ToLower(strings.TrimSpace(hari))]; ok {
		return rank
	}
	return 8
}

// WeekdayName translates a timestamp into the Indonesian weekday name.
func WeekdayName(t time.Time) string {
	return indonesianWeekdays[t.Weekday()]
}

// MatchesDay reports whether the session's weekday equals the given day.
func (s CourseSession) MatchesDay(day time.Time) bool {
	return strings.EqualFold(strings.TrimSpace(s.Hari), WeekdayName(day))
}

// ClockMinutes converts a clock string into minutes since midnight. Legacy
// records use "07.30" while newer ones use "07:30"; both are accepted.
func ClockMinutes(clock string) (int, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(clock), ".", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return hours*60 + minutes, nil
}
