package models

import "time"

// Role enumerates the access levels recognised by the API.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDosen     Role = "DOSEN"
	RoleMahasiswa Role = "MAHASISWA"
)

// User represents an account that can sign in. MemberID holds the NIM for
// students and the NIP for lecturers; admins leave it empty.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         Role       `db:"role" json:"role"`
	MemberID     string     `db:"member_id" json:"member_id,omitempty"`
	Kelas        string     `db:"kelas" json:"kelas,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// Pagination describes the slice of a collection included in a response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}
