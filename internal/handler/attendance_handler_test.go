package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/siakad-dev/presensi-kuliah-api/internal/middleware"
	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
)

type attendanceServiceMock struct {
	evaluatedNIM string
	submitted    service.SubmitRequest
	savedBy      string
	saved        service.MatrixSaveRequest
}

func (m *attendanceServiceMock) EvaluateDay(ctx context.Context, nim string) ([]models.SessionEvaluation, error) {
	m.evaluatedNIM = nim
	return []models.SessionEvaluation{{State: models.EvalFormPending, SequenceNumber: 3}}, nil
}

func (m *attendanceServiceMock) Submit(ctx context.Context, nim string, req service.SubmitRequest) (*models.AttendanceRecord, error) {
	m.submitted = req
	return &models.AttendanceRecord{SessionID: req.SessionID, NIM: nim, Status: req.Status}, nil
}

func (m *attendanceServiceMock) MatrixSave(ctx context.Context, dosenID string, req service.MatrixSaveRequest) (int, error) {
	m.savedBy = dosenID
	m.saved = req
	return len(req.Cells), nil
}

func (m *attendanceServiceMock) Matrix(ctx context.Context, dosenID, sessionID string) ([]models.MatrixRow, error) {
	return []models.MatrixRow{{NIM: "210001"}}, nil
}

func (m *attendanceServiceMock) History(ctx context.Context, nim, sessionID string) ([]models.AttendanceRecord, models.AttendanceTotals, error) {
	return nil, models.AttendanceTotals{}, nil
}

func studentContext(w *httptest.ResponseRecorder) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "user-1", Role: models.RoleMahasiswa, MemberID: "210001", Kelas: "TI-1A",
	})
	return c, r
}

func TestAttendanceHandlerTodayUsesClaimNIM(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{}
	h := NewAttendanceHandler(mockSvc, nil)
	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/today", nil)
	c.Request = req

	h.Today(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "210001", mockSvc.evaluatedNIM)
	require.Contains(t, w.Body.String(), models.EvalFormPending)
}

func TestAttendanceHandlerTodayRejectsLecturer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleDosen, MemberID: "nip-1"})
	req, _ := http.NewRequest(http.MethodGet, "/attendance/today", nil)
	c.Request = req

	h.Today(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAttendanceHandlerTodayRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/today", nil)
	c.Request = req

	h.Today(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{}
	h := NewAttendanceHandler(mockSvc, nil)
	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/attendance", service.SubmitRequest{SessionID: "jadwal-1", Status: models.StatusSakit, Note: "demam"})

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "jadwal-1", mockSvc.submitted.SessionID)
	require.Equal(t, models.StatusSakit, mockSvc.submitted.Status)
}

func TestAttendanceHandlerSaveMatrix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{}
	h := NewAttendanceHandler(mockSvc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleDosen, MemberID: "nip-1"})
	c.Request = jsonRequest(t, http.MethodPut, "/attendance/matrix", service.MatrixSaveRequest{
		SessionID: "jadwal-1",
		Cells:     []service.MatrixCell{{NIM: "210001", SequenceNumber: 3, Status: models.StatusHadir}},
	})

	h.SaveMatrix(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "nip-1", mockSvc.savedBy)
	require.Len(t, mockSvc.saved.Cells, 1)
	require.Contains(t, w.Body.String(), `"saved":1`)
}

func TestAttendanceHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleDosen, MemberID: "nip-1"})
	req, _ := http.NewRequest(http.MethodGet, "/attendance/matrix/jadwal-1/export?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "sessionId", Value: "jadwal-1"}}

	h.ExportCard(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
