package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

const (
	sheetMedications = "Medications"
	sheetRecords     = "Health Records"
	sheetLabs        = "Lab Results"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	medsRepo     repository.MedicationRepository
	recordsRepo  repository.HealthRecordRepository
	analysesRepo repository.AnalysisRepository
	logger       *slog.Logger
}

func NewService(meds repository.MedicationRepository, records repository.HealthRecordRepository, analyses repository.AnalysisRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{medsRepo: meds, recordsRepo: records, analysesRepo: analyses, logger: logger}
}

// ExportHealthXLSX returns an XLSX workbook (as bytes) for the given user and date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> everything for the user.
// The window applies to measured/analyzed dates; the medication list is always complete.
func (s *Service) ExportHealthXLSX(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	meds, err := s.medsRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	records, err := s.recordsRepo.ListByUser(ctx, userID, "", fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query health records: %w", err)
	}
	labCategory := constants.LabReport
	labDocs, err := s.analysesRepo.ListByUser(ctx, userID, &labCategory, 0)
	if err != nil {
		return nil, fmt.Errorf("query lab analyses: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetMedications); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetRecords, sheetLabs} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	if idx, err := f.GetSheetIndex(sheetMedications); err == nil {
		f.SetActiveSheet(idx)
	}

	writeMedications(f, meds)
	writeHealthRecords(f, records)
	labRows := writeLabResults(f, labDocs, fromDate, toDate)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID.String(),
		"medications", len(meds),
		"health_records", len(records),
		"lab_values", labRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func setHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func writeMedications(f *excelize.File, meds []*entity.Medication) {
	setHeaders(f, sheetMedications, []string{
		"Name",
		"Dosage",
		"Frequency",
		"Start Date",
		"End Date",
		"Active",
		"Reminder Times",
		"Instructions",
	})

	row := 2
	for _, m := range meds {
		write := cellWriter(f, sheetMedications, row)
		write(1, m.Name)
		write(2, deref(m.Dosage))
		write(3, deref(m.Frequency))
		write(4, m.StartDate.Format("2006-01-02"))
		if m.EndDate != nil {
			write(5, m.EndDate.Format("2006-01-02"))
		} else {
			write(5, "")
		}
		write(6, m.IsActive)
		write(7, strings.Join(m.ReminderTimes, ", "))
		write(8, truncate(deref(m.Instructions), 140))
		row++
	}

	_ = f.SetColWidth(sheetMedications, "A", "A", 24)
	_ = f.SetColWidth(sheetMedications, "B", "C", 16)
	_ = f.SetColWidth(sheetMedications, "D", "E", 12)
	_ = f.SetColWidth(sheetMedications, "G", "G", 18)
	_ = f.SetColWidth(sheetMedications, "H", "H", 48)
}

func writeHealthRecords(f *excelize.File, records []*entity.HealthRecord) {
	setHeaders(f, sheetRecords, []string{
		"Measured Date",
		"Type",
		"Value",
		"Unit",
		"Notes",
	})

	row := 2
	for _, r := range records {
		write := cellWriter(f, sheetRecords, row)
		write(1, r.MeasuredDate.Format("2006-01-02"))
		write(2, r.RecordType)
		write(3, r.Value)
		write(4, deref(r.Unit))
		write(5, truncate(deref(r.Notes), 140))
		row++
	}

	_ = f.SetColWidth(sheetRecords, "A", "A", 14)
	_ = f.SetColWidth(sheetRecords, "B", "B", 18)
	_ = f.SetColWidth(sheetRecords, "C", "D", 12)
	_ = f.SetColWidth(sheetRecords, "E", "E", 48)
}

// writeLabResults flattens stored lab-report analyses into one row per lab
// value. Returns the number of rows written.
func writeLabResults(f *excelize.File, docs []*entity.DocumentAnalysis, fromDate, toDate *time.Time) int {
	setHeaders(f, sheetLabs, []string{
		"Document",
		"Analyzed Date",
		"Test",
		"Value",
		"Unit",
		"Reference",
		"Flag",
	})

	row := 2
	for _, d := range docs {
		if fromDate != nil && d.CreatedAt.Before(*fromDate) {
			continue
		}
		if toDate != nil && !d.CreatedAt.Before(toDate.Add(24*time.Hour)) {
			continue
		}
		if len(d.FieldsJSON) == 0 {
			continue
		}
		var fields entity.StructuredFields
		if err := json.Unmarshal(d.FieldsJSON, &fields); err != nil {
			continue
		}

		for _, lv := range fields.LabValues {
			write := cellWriter(f, sheetLabs, row)
			write(1, d.Filename)
			write(2, d.CreatedAt.Format("2006-01-02"))
			write(3, lv.Test)
			write(4, lv.Value)
			write(5, lv.Unit)
			write(6, formatReference(lv))
			if lv.Abnormal != nil && *lv.Abnormal {
				write(7, "abnormal")
			} else {
				write(7, "")
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetLabs, "A", "A", 32)
	_ = f.SetColWidth(sheetLabs, "B", "B", 14)
	_ = f.SetColWidth(sheetLabs, "C", "C", 24)
	_ = f.SetColWidth(sheetLabs, "D", "F", 12)

	return row - 2
}

func formatReference(lv entity.LabValue) string {
	if lv.RefLow == nil || lv.RefHigh == nil {
		return ""
	}
	return fmt.Sprintf("%g-%g", *lv.RefLow, *lv.RefHigh)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
