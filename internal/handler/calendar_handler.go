package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/response"
)

type calendarService interface {
	GenerateMeetings(ctx context.Context, req service.GenerateMeetingsRequest) ([]models.CalendarEntry, error)
	FindActiveMeeting(ctx context.Context, day time.Time) (*models.CalendarEntry, error)
	EditMeetingAndShift(ctx context.Context, id string, req service.ShiftMeetingRequest) ([]models.CalendarEntry, error)
	CreateEntry(ctx context.Context, req service.CreateEntryRequest) (*models.CalendarEntry, error)
	List(ctx context.Context) ([]models.CalendarEntry, error)
	Delete(ctx context.Context, id string) error
}

// CalendarHandler exposes the academic calendar endpoints.
type CalendarHandler struct {
	service calendarService
	now     func() time.Time
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service, now: time.Now}
}

// GenerateMeetings godoc
// @Summary Generate the meeting series
// @Description Writes meetings 1..count on a weekly cadence from start_date. Re-running overwrites the series.
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.GenerateMeetingsRequest true "plan"
// @Success 201 {object} response.Envelope{data=[]models.CalendarEntry}
// @Failure 400 {object} response.Envelope
// @Router /calendar/meetings [post]
func (h *CalendarHandler) GenerateMeetings(c *gin.Context) {
	var req service.GenerateMeetingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	entries, err := h.service.GenerateMeetings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, entries, nil)
}

// ActiveMeeting godoc
// @Summary Locate the active meeting
// @Description Returns the meeting whose 7-day window contains the given date, or null when none does.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope{data=models.CalendarEntry}
// @Failure 400 {object} response.Envelope
// @Router /calendar/active [get]
func (h *CalendarHandler) ActiveMeeting(c *gin.Context) {
	day := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDate, ""))
			return
		}
		day = parsed
	}
	meeting, err := h.service.FindActiveMeeting(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}

// ShiftMeeting godoc
// @Summary Move a meeting and shift the rest
// @Description Rebases the meeting and every later one onto a weekly cadence from the new date.
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "meeting id"
// @Param payload body service.ShiftMeetingRequest true "new start date"
// @Success 200 {object} response.Envelope{data=[]models.CalendarEntry}
// @Failure 404 {object} response.Envelope
// @Router /calendar/meetings/{id} [put]
func (h *CalendarHandler) ShiftMeeting(c *gin.Context) {
	var req service.ShiftMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	entries, err := h.service.EditMeetingAndShift(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// CreateEntry godoc
// @Summary Add a calendar entry
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateEntryRequest true "entry"
// @Success 201 {object} response.Envelope{data=models.CalendarEntry}
// @Failure 400 {object} response.Envelope
// @Router /calendar/entries [post]
func (h *CalendarHandler) CreateEntry(c *gin.Context) {
	var req service.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid json body"))
		return
	}
	entry, err := h.service.CreateEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary List the calendar
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.CalendarEntry}
// @Router /calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Delete godoc
// @Summary Delete a calendar entry
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "entry id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /calendar/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
