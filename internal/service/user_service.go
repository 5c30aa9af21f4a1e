package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type accountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateKelas(ctx context.Context, id, kelas string) error
}

// UserService manages accounts on behalf of admins.
type UserService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo accountRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// CreateUserRequest describes a new account. MemberID holds the NIM for
// students and the NIP for lecturers.
type CreateUserRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Name     string      `json:"name" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=ADMIN DOSEN MAHASISWA"`
	MemberID string      `json:"member_id"`
	Kelas    string      `json:"kelas"`
}

// Create registers an account. New accounts start active; lecturers and
// students must carry a member id, and students must name their class.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.Role != models.RoleAdmin && req.MemberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member_id is required for this role")
	}
	if req.Role == models.RoleMahasiswa && req.Kelas == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kelas is required for students")
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		MemberID:     req.MemberID,
		Kelas:        req.Kelas,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create user")
	}
	s.logger.Info("account created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

// List returns accounts, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	var (
		users []models.User
		err   error
	)
	switch models.Role(role) {
	case "":
		users, err = s.repo.List(ctx)
	case models.RoleAdmin, models.RoleDosen, models.RoleMahasiswa:
		users, err = s.repo.ListByRole(ctx, models.Role(role))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list users")
	}
	return users, nil
}

// SetActive enables or disables sign-in for an account.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update user")
	}
	s.logger.Info("account active flag changed",
		zap.String("user_id", id),
		zap.Bool("active", active))
	return nil
}

// SetKelas moves a student to another class.
func (s *UserService) SetKelas(ctx context.Context, id, kelas string) error {
	if kelas == "" {
		return appErrors.Clone(appErrors.ErrValidation, "kelas is required")
	}
	if err := s.repo.UpdateKelas(ctx, id, kelas); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update user")
	}
	return nil
}
