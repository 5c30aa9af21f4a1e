package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/response"
)

type attendanceService interface {
	EvaluateDay(ctx context.Context, nim string) ([]models.SessionEvaluation, error)
	Submit(ctx context.Context, nim string, req service.SubmitRequest) (*models.AttendanceRecord, error)
	MatrixSave(ctx context.Context, dosenID string, req service.MatrixSaveRequest) (int, error)
	Matrix(ctx context.Context, dosenID, sessionID string) ([]models.MatrixRow, error)
	History(ctx context.Context, nim, sessionID string) ([]models.AttendanceRecord, models.AttendanceTotals, error)
}

type exportService interface {
	AttendanceCard(ctx context.Context, sessionID, format string, meetings int) (*service.ExportResult, error)
}

// AttendanceHandler exposes attendance submission, evaluation and recap.
type AttendanceHandler struct {
	service attendanceService
	exports exportService
}

// NewAttendanceHandler constructs the handler. exports may be nil when the
// export surface is disabled.
func NewAttendanceHandler(service attendanceService, exports exportService) *AttendanceHandler {
	return &AttendanceHandler{service: service, exports: exports}
}

// Today godoc
// @Summary Evaluate today's sessions
// @Description Settles each enrolled session for the active meeting; slots past their end time are closed as Alpha.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.SessionEvaluation}
// @Failure 403 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	evals, err := h.service.EvaluateDay(c.Request.Context(), nim)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evals, nil)
}

// Submit godoc
// @Summary Submit attendance
// @Description Records the student's status for the active meeting. Only H, I and S are accepted.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitRequest true "submission"
// @Success 201 {object} response.Envelope{data=models.AttendanceRecord}
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	record, err := h.service.Submit(c.Request.Context(), nim, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// SaveMatrix godoc
// @Summary Save the lecturer recap
// @Description Bulk-writes recap cells for one course session in a single transaction.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.MatrixSaveRequest true "recap cells"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/matrix [put]
func (h *AttendanceHandler) SaveMatrix(c *gin.Context) {
	dosenID, err := currentDosenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.MatrixSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	saved, err := h.service.MatrixSave(c.Request.Context(), dosenID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": saved}, nil)
}

// Matrix godoc
// @Summary Lecturer recap for a course session
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "course session id"
// @Success 200 {object} response.Envelope{data=[]models.MatrixRow}
// @Failure 404 {object} response.Envelope
// @Router /attendance/matrix/{sessionId} [get]
func (h *AttendanceHandler) Matrix(c *gin.Context) {
	dosenID, err := currentDosenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.Matrix(c.Request.Context(), dosenID, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// History godoc
// @Summary Student history for a course session
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "course session id"
// @Success 200 {object} response.Envelope
// @Router /attendance/history/{sessionId} [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	nim, err := currentNIM(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, totals, err := h.service.History(c.Request.Context(), nim, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"records": records, "totals": totals}, nil)
}

// ExportCard godoc
// @Summary Export the attendance card
// @Description Renders the recap of one course session as CSV or PDF.
// @Tags attendance
// @Produce octet-stream
// @Security BearerAuth
// @Param sessionId path string true "course session id"
// @Param format query string true "csv or pdf"
// @Param meetings query int false "meeting columns, defaults to 16"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /attendance/matrix/{sessionId}/export [get]
func (h *AttendanceHandler) ExportCard(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports disabled"))
		return
	}
	meetings, _ := strconv.Atoi(c.DefaultQuery("meetings", "0"))
	result, err := h.exports.AttendanceCard(c.Request.Context(), c.Param("sessionId"), c.Query("format"), meetings)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
