package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type enrollmentRepository interface {
	ListByStudent(ctx context.Context, nim string) ([]models.Enrollment, error)
	Upsert(ctx context.Context, row *models.Enrollment) error
	Delete(ctx context.Context, nim, sessionID string) error
}

// EnrollmentService manages which course sessions a student takes or skips.
type EnrollmentService struct {
	repo      enrollmentRepository
	sessions  sessionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, sessions sessionReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// EnrollmentRequest marks one course session as taken or skipped.
type EnrollmentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	State     string `json:"state" validate:"required,oneof=taken skipped"`
}

// List returns a student's enrollment rows.
func (s *EnrollmentService) List(ctx context.Context, nim string) ([]models.Enrollment, error) {
	rows, err := s.repo.ListByStudent(ctx, nim)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list enrollments")
	}
	return rows, nil
}

// Set records a student's choice for one course session. Only taken sessions
// are attended; a skipped row marks the offer as declined.
func (s *EnrollmentService) Set(ctx context.Context, nim string, req EnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.sessions.GetByID(ctx, req.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}
	row := &models.Enrollment{NIM: nim, SessionID: req.SessionID, State: req.State}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to save enrollment")
	}
	return row, nil
}

// Clear removes a student's row for one course session, returning it to the
// unchosen state.
func (s *EnrollmentService) Clear(ctx context.Context, nim, sessionID string) error {
	if err := s.repo.Delete(ctx, nim, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to clear enrollment")
	}
	return nil
}
