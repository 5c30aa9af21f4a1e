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

type enrollmentService interface {
	List(ctx context.Context, nim string) ([]models.Enrollment, error)
	Set(ctx context.Context, nim string, req service.EnrollmentRequest) (*models.Enrollment, error)
	Clear(ctx context.Context, nim, sessionID string) error
}

// EnrollmentHandler exposes a student's take/skip choices.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// List godoc
// @Summary List my enrollments
// @Tags enrollment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Enrollment}
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.List(c.Request.Context(), nim)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Set godoc
// @Summary Take or skip a course session
// @Tags enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollmentRequest true "choice"
// @Success 200 {object} response.Envelope{data=models.Enrollment}
// @Failure 404 {object} response.Envelope
// @Router /enrollments [put]
func (h *EnrollmentHandler) Set(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	row, err := h.service.Set(c.Request.Context(), nim, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Clear godoc
// @Summary Clear a choice
// @Tags enrollment
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "course session id"
// @Success 204
// @Router /enrollments/{sessionId} [delete]
func (h *EnrollmentHandler) Clear(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Clear(c.Request.Context(), nim, c.Param("sessionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
