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

// UserRepository persists user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, role, member_id, kelas, active, created_at, updated_at, last_login_at"

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetByID fetches a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

// GetByMemberID fetches a user by NIM or NIP.
func (r *UserRepository) GetByMemberID(ctx context.Context, memberID string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE member_id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get user by member id: %w", err)
	}
	return &user, nil
}

// List returns every account, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListByRole returns users holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1 ORDER BY name ASC", userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role %s: %w", role, err)
	}
	return users, nil
}

// ListByKelas returns the active students of one class in NIM order.
func (r *UserRepository) ListByKelas(ctx context.Context, kelas string) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
WHERE role = $1 AND kelas = $2 AND active = TRUE ORDER BY member_id ASC`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleMahasiswa, kelas); err != nil {
		return nil, fmt.Errorf("list students of kelas %s: %w", kelas, err)
	}
	return users, nil
}

// CountByRole returns the number of active users per role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users WHERE role = $1 AND active = TRUE", role); err != nil {
		return 0, fmt.Errorf("count users by role %s: %w", role, err)
	}
	return total, nil
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, email, password_hash, name, role, member_id, kelas, active, created_at, updated_at)
VALUES (:id, :email, :password_hash, :name, :role, :member_id, :kelas, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// SetActive flips an account's active flag.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET active = $1, updated_at = $2 WHERE id = $3", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set user %s active: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user %s active: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateKelas moves a student account to another class.
func (r *UserRepository) UpdateKelas(ctx context.Context, id, kelas string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET kelas = $1, updated_at = $2 WHERE id = $3", kelas, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user %s kelas: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user %s kelas: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchLastLogin stamps the successful sign-in time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", at, id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
