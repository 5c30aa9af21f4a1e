package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/export"
)

type matrixBuilder interface {
	Matrix(ctx context.Context, dosenID, sessionID string) ([]models.MatrixRow, error)
}

// ExportService renders the attendance card for one course session as CSV or
// PDF.
type ExportService struct {
	matrix          matrixBuilder
	sessions        sessionReader
	csv             *export.CSVExporter
	pdf             *export.PDFExporter
	defaultMeetings int
	logger          *zap.Logger
}

// NewExportService constructs the service. defaultMeetings sets the number
// of meeting columns when the request does not say.
func NewExportService(matrix matrixBuilder, sessions sessionReader, defaultMeetings int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMeetings < MinMeetingCount || defaultMeetings > MaxMeetingCount {
		defaultMeetings = 16
	}
	return &ExportService{
		matrix:          matrix,
		sessions:        sessions,
		csv:             export.NewCSVExporter(),
		pdf:             export.NewPDFExporter(),
		defaultMeetings: defaultMeetings,
		logger:          logger,
	}
}

// ExportResult carries the rendered bytes plus response metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttendanceCard renders the recap of one course session. Format is "csv"
// or "pdf".
func (s *ExportService) AttendanceCard(ctx context.Context, sessionID, format string, meetings int) (*ExportResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load course session")
	}
	rows, err := s.matrix.Matrix(ctx, "", sessionID)
	if err != nil {
		return nil, err
	}
	if meetings < MinMeetingCount || meetings > MaxMeetingCount {
		meetings = s.defaultMeetings
	}

	dataset := buildCardDataset(rows, meetings)
	title := fmt.Sprintf("Presensi %s %s", session.Matkul, session.Kelas)

	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("presensi_%s.csv", session.Kode),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("presensi_%s.pdf", session.Kode),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func buildCardDataset(rows []models.MatrixRow, meetings int) export.Dataset {
	headers := []string{"NIM", "Nama"}
	for n := 1; n <= meetings; n++ {
		headers = append(headers, fmt.Sprintf("P%d", n))
	}
	headers = append(headers, "H", "I", "S", "A")

	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := map[string]string{
			"NIM":  row.NIM,
			"Nama": row.Name,
			"H":    strconv.Itoa(row.Totals.Hadir),
			"I":    strconv.Itoa(row.Totals.Izin),
			"S":    strconv.Itoa(row.Totals.Sakit),
			"A":    strconv.Itoa(row.Totals.Alpha),
		}
		for n := 1; n <= meetings; n++ {
			record[fmt.Sprintf("P%d", n)] = row.Cells[n]
		}
		records = append(records, record)
	}
	return export.Dataset{Headers: headers, Rows: records}
}
