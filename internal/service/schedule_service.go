package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type scheduleRepository interface {
	GetByID(ctx context.Context, id string) (*models.CourseSession, error)
	List(ctx context.Context) ([]models.CourseSession, error)
	ListByKelas(ctx context.Context, kelas string) ([]models.CourseSession, error)
	ListByDosen(ctx context.Context, dosenID string) ([]models.CourseSession, error)
	Create(ctx context.Context, session *models.CourseSession) error
	Update(ctx context.Context, session *models.CourseSession) error
	Delete(ctx context.Context, id string) error
}

// ScheduleService manages the weekly timetable.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("hari", func(fl validator.FieldLevel) bool {
		return models.WeekdayRank(fl.Field().String()) <= 7
	})
	return svc
}

// CourseSessionRequest is the create/update payload for a timetable slot.
type CourseSessionRequest struct {
	Kode       string `json:"kode" validate:"required"`
	Matkul     string `json:"matkul" validate:"required"`
	Kelas      string `json:"kelas" validate:"required"`
	DosenID    string `json:"dosen_id" validate:"required"`
	DosenName  string `json:"dosen_name" validate:"required"`
	Hari       string `json:"hari" validate:"required,hari"`
	JamMulai   string `json:"jam_mulai" validate:"required"`
	JamSelesai string `json:"jam_selesai" validate:"required"`
	Ruang      string `json:"ruang"`
	SKS        int    `json:"sks" validate:"required,min=1,max=6"`
}

func (r CourseSessionRequest) clockOrder() error {
	start, err := models.ClockMinutes(r.JamMulai)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "jam_mulai must be HH:MM")
	}
	end, err := models.ClockMinutes(r.JamSelesai)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "jam_selesai must be HH:MM")
	}
	if end <= start {
		return appErrors.Clone(appErrors.ErrValidation, "jam_selesai must be after jam_mulai")
	}
	return nil
}

// Get returns one timetable slot.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.CourseSession, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}
	return session, nil
}

// ListForKelas returns a class timetable sorted by school-week position and
// start time.
func (s *ScheduleService) ListForKelas(ctx context.Context, kelas string) ([]models.CourseSession, error) {
	sessions, err := s.repo.ListByKelas(ctx, kelas)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list timetable")
	}
	sortSessions(sessions)
	return sessions, nil
}

// ListForDosen returns a lecturer's sessions in week order.
func (s *ScheduleService) ListForDosen(ctx context.Context, dosenID string) ([]models.CourseSession, error) {
	sessions, err := s.repo.ListByDosen(ctx, dosenID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list timetable")
	}
	sortSessions(sessions)
	return sessions, nil
}

// List returns every session in week order.
func (s *ScheduleService) List(ctx context.Context) ([]models.CourseSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list timetable")
	}
	sortSessions(sessions)
	return sessions, nil
}

func sortSessions(sessions []models.CourseSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		ri, rj := models.WeekdayRank(sessions[i].Hari), models.WeekdayRank(sessions[j].Hari)
		if ri != rj {
			return ri < rj
		}
		mi, err := models.ClockMinutes(sessions[i].JamMulai)
		if err != nil {
			mi = 24 * 60
		}
		mj, err := models.ClockMinutes(sessions[j].JamMulai)
		if err != nil {
			mj = 24 * 60
		}
		return mi < mj
	})
}

// Create adds a timetable slot.
func (s *ScheduleService) Create(ctx context.Context, req CourseSessionRequest) (*models.CourseSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := req.clockOrder(); err != nil {
		return nil, err
	}
	session := &models.CourseSession{
		Kode:       req.Kode,
		Matkul:     req.Matkul,
		Kelas:      req.Kelas,
		DosenID:    req.DosenID,
		DosenName:  req.DosenName,
		Hari:       strings.ToLower(req.Hari),
		JamMulai:   req.JamMulai,
		JamSelesai: req.JamSelesai,
		Ruang:      req.Ruang,
		SKS:        req.SKS,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create course session")
	}
	return session, nil
}

// Update modifies a timetable slot.
func (s *ScheduleService) Update(ctx context.Context, id string, req CourseSessionRequest) (*models.CourseSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := req.clockOrder(); err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Kode = req.Kode
	session.Matkul = req.Matkul
	session.Kelas = req.Kelas
	session.DosenID = req.DosenID
	session.DosenName = req.DosenName
	session.Hari = strings.ToLower(req.Hari)
	session.JamMulai = req.JamMulai
	session.JamSelesai = req.JamSelesai
	session.Ruang = req.Ruang
	session.SKS = req.SKS
	if err := s.repo.Update(ctx, session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update course session")
	}
	return session, nil
}

// Delete removes a timetable slot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete course session")
	}
	return nil
}
