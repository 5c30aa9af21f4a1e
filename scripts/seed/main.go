// Command seed creates the database schema and, optionally, a demo dataset
// for local development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/config"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL,
	member_id     TEXT NOT NULL DEFAULT '',
	kelas         TEXT NOT NULL DEFAULT '',
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	last_login_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS users_member_id_idx ON users (member_id) WHERE member_id <> '';

CREATE TABLE IF NOT EXISTS calendar_entries (
	id              TEXT PRIMARY KEY,
	kind            TEXT NOT NULL,
	title           TEXT NOT NULL,
	sequence_number INTEGER NOT NULL DEFAULT 0,
	start_date      DATE NOT NULL,
	end_date        DATE NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS calendar_entries_start_idx ON calendar_entries (kind, start_date DESC);

CREATE TABLE IF NOT EXISTS course_sessions (
	id          TEXT PRIMARY KEY,
	kode        TEXT NOT NULL,
	matkul      TEXT NOT NULL,
	kelas       TEXT NOT NULL,
	dosen_id    TEXT NOT NULL,
	dosen_name  TEXT NOT NULL,
	hari        TEXT NOT NULL,
	jam_mulai   TEXT NOT NULL,
	jam_selesai TEXT NOT NULL,
	ruang       TEXT NOT NULL DEFAULT '',
	sks         INTEGER NOT NULL DEFAULT 2,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS course_sessions_kelas_idx ON course_sessions (kelas);
CREATE INDEX IF NOT EXISTS course_sessions_dosen_idx ON course_sessions (dosen_id);

CREATE TABLE IF NOT EXISTS enrollments (
	id         BIGSERIAL PRIMARY KEY,
	nim        TEXT NOT NULL,
	session_id TEXT NOT NULL REFERENCES course_sessions (id) ON DELETE CASCADE,
	state      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (nim, session_id)
);

CREATE TABLE IF NOT EXISTS attendance_records (
	id              BIGSERIAL PRIMARY KEY,
	session_id      TEXT NOT NULL,
	nim             TEXT NOT NULL,
	sequence_number INTEGER NOT NULL,
	status          TEXT NOT NULL,
	note            TEXT NOT NULL DEFAULT '',
	filled_by       TEXT NOT NULL,
	auto_marked     BOOLEAN NOT NULL DEFAULT FALSE,
	recorded_at     TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, nim, sequence_number)
);
CREATE INDEX IF NOT EXISTS attendance_records_session_idx ON attendance_records (session_id, nim);
`

func main() {
	var withDemo bool
	flag.BoolVar(&withDemo, "demo", false, "insert demo accounts and timetable")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
	log.Println("schema applied")

	if !withDemo {
		return
	}
	if err := seedDemo(ctx, db); err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}
	log.Println("demo data seeded")
}

func seedDemo(ctx context.Context, db *sqlx.DB) error {
	now := time.Now().UTC()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{ID: uuid.NewString(), Email: "admin@kampus.ac.id", Name: "Admin Akademik", Role: models.RoleAdmin},
		{ID: uuid.NewString(), Email: "budi@kampus.ac.id", Name: "Budi Santoso", Role: models.RoleDosen, MemberID: "198001012005011001"},
		{ID: uuid.NewString(), Email: "andi@kampus.ac.id", Name: "Andi Pratama", Role: models.RoleMahasiswa, MemberID: "210001", Kelas: "TI-1A"},
		{ID: uuid.NewString(), Email: "sari@kampus.ac.id", Name: "Sari Dewi", Role: models.RoleMahasiswa, MemberID: "210002", Kelas: "TI-1A"},
	}
	const userInsert = `INSERT INTO users (id, email, password_hash, name, role, member_id, kelas, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8) ON CONFLICT (email) DO NOTHING`
	for _, u := range users {
		if _, err := db.ExecContext(ctx, userInsert, u.ID, u.Email, string(hash), u.Name, u.Role, u.MemberID, u.Kelas, now); err != nil {
			return err
		}
	}

	sessions := []models.CourseSession{
		{ID: "jadwal-algoritma", Kode: "IF101", Matkul: "Algoritma dan Pemrograman", Kelas: "TI-1A", DosenID: "198001012005011001", DosenName: "Budi Santoso", Hari: "senin", JamMulai: "07:30", JamSelesai: "09:10", Ruang: "R201", SKS: 3},
		{ID: "jadwal-basisdata", Kode: "IF102", Matkul: "Basis Data", Kelas: "TI-1A", DosenID: "198001012005011001", DosenName: "Budi Santoso", Hari: "rabu", JamMulai: "10:00", JamSelesai: "11:40", Ruang: "R202", SKS: 3},
	}
	const sessionInsert = `INSERT INTO course_sessions (id, kode, matkul, kelas, dosen_id, dosen_name, hari, jam_mulai, jam_selesai, ruang, sks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) ON CONFLICT (id) DO NOTHING`
	for _, s := range sessions {
		if _, err := db.ExecContext(ctx, sessionInsert, s.ID, s.Kode, s.Matkul, s.Kelas, s.DosenID, s.DosenName, s.Hari, s.JamMulai, s.JamSelesai, s.Ruang, s.SKS, now); err != nil {
			return err
		}
	}
	return nil
}
