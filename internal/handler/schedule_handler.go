package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/response"
)

type scheduleService interface {
	Get(ctx context.Context, id string) (*models.CourseSession, error)
	List(ctx context.Context) ([]models.CourseSession, error)
	ListForKelas(ctx context.Context, kelas string) ([]models.CourseSession, error)
	ListForDosen(ctx context.Context, dosenID string) ([]models.CourseSession, error)
	Create(ctx context.Context, req service.CourseSessionRequest) (*models.CourseSession, error)
	Update(ctx context.Context, id string, req service.CourseSessionRequest) (*models.CourseSession, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleHandler exposes the timetable endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// List godoc
// @Summary List course sessions
// @Description Without filters returns everything; students and lecturers usually call /schedule/mine instead.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param kelas query string false "filter by class"
// @Success 200 {object} response.Envelope{data=[]models.CourseSession}
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var (
		sessions []models.CourseSession
		err      error
	)
	if kelas := c.Query("kelas"); kelas != "" {
		sessions, err = h.service.ListForKelas(c.Request.Context(), kelas)
	} else {
		sessions, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Mine godoc
// @Summary The caller's timetable
// @Description Students get their class timetable, lecturers the sessions they teach.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.CourseSession}
// @Failure 403 {object} response.Envelope
// @Router /schedule/mine [get]
func (h *ScheduleHandler) Mine(c *gin.Context) {
	claims, err := currentClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var sessions []models.CourseSession
	switch claims.Role {
	case models.RoleMahasiswa:
		sessions, err = h.service.ListForKelas(c.Request.Context(), claims.Kelas)
	case models.RoleDosen:
		sessions, err = h.service.ListForDosen(c.Request.Context(), claims.MemberID)
	default:
		sessions, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Get godoc
// @Summary Get one course session
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "course session id"
// @Success 200 {object} response.Envelope{data=models.CourseSession}
// @Failure 404 {object} response.Envelope
// @Router /schedule/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Add a course session
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CourseSessionRequest true "course session"
// @Success 201 {object} response.Envelope{data=models.CourseSession}
// @Failure 400 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CourseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update a course session
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "course session id"
// @Param payload body service.CourseSessionRequest true "course session"
// @Success 200 {object} response.Envelope{data=models.CourseSession}
// @Failure 404 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.CourseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	session, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete a course session
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "course session id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
