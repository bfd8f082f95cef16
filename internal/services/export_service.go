package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

var attendanceHeader = []string{
	"Registration ID", "Participant ID", "Name", "Email", "Team",
	"Status", "Attended", "Size", "Color", "Quantity", "Registered At", "Checked In At",
}

type exportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *exportService) ExportAttendanceCSV(ctx context.Context, eventID uint, userID string) (*ExportResult, error) {
	event, rows, err := s.loadExport(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(attendanceHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(attendanceRecord(row)); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("Attendance exported", "event_id", eventID, "format", "csv", "rows", len(rows))

	return &ExportResult{
		FileName:    exportFileName(event, "csv"),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *exportService) ExportAttendanceXLSX(ctx context.Context, eventID uint, userID string) (*ExportResult, error) {
	event, rows, err := s.loadExport(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range attendanceHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		for col, value := range attendanceRecord(row) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Attendance exported", "event_id", eventID, "format", "xlsx", "rows", len(rows))

	return &ExportResult{
		FileName:    exportFileName(event, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func (s *exportService) loadExport(ctx context.Context, eventID uint, userID string) (*models.Event, []*repositories.AttendanceRow, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "export attendance"); err != nil {
		return nil, nil, err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}

	rows, err := s.repo.Analytics().GetAttendanceRows(ctx, nil, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attendance rows: %w", err)
	}

	return event, rows, nil
}

func attendanceRecord(row *repositories.AttendanceRow) []string {
	checkedIn := ""
	if row.CheckedInAt != nil {
		checkedIn = row.CheckedInAt.Format(time.RFC3339)
	}

	return []string{
		strconv.FormatUint(uint64(row.RegistrationID), 10),
		row.ParticipantID,
		row.ParticipantName,
		row.Email,
		row.TeamName,
		row.Status,
		strconv.FormatBool(row.Attendance),
		row.MerchSize,
		row.MerchColor,
		strconv.Itoa(row.MerchQuantity),
		row.RegisteredAt.Format(time.RFC3339),
		checkedIn,
	}
}

func exportFileName(event *models.Event, ext string) string {
	return fmt.Sprintf("attendance_event_%d_%s.%s", event.ID, time.Now().Format("20060102"), ext)
}
