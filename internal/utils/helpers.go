package utils

import (
	"encoding/hex"
	"time"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func ToUser(e *ent.User) *entity.User {
	return &entity.User{
		ID:                e.ID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Email:             e.Email,
		Phone:             e.Phone,
		DateOfBirth:       e.DateOfBirth,
		Gender:            e.Gender,
		BloodGroup:        e.BloodGroup,
		HeightCM:          e.HeightCm,
		WeightKG:          e.WeightKg,
		EmergencyContact:  e.EmergencyContact,
		Allergies:         e.Allergies,
		MedicalConditions: e.MedicalConditions,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func ToMedication(e *ent.Medication) *entity.Medication {
	return &entity.Medication{
		ID:              e.ID,
		UserID:          e.UserID,
		Name:            e.Name,
		Dosage:          e.Dosage,
		Frequency:       e.Frequency,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		Instructions:    e.Instructions,
		SideEffects:     e.SideEffects,
		IsActive:        e.IsActive,
		ReminderEnabled: e.ReminderEnabled,
		ReminderTimes:   e.ReminderTimes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func ToMedicationLog(e *ent.MedicationLog) *entity.MedicationLog {
	return &entity.MedicationLog{
		ID:            e.ID,
		MedicationID:  e.MedicationID,
		ScheduledTime: e.ScheduledTime,
		TakenTime:     e.TakenTime,
		Status:        e.Status,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}

func ToAppointment(e *ent.Appointment) *entity.Appointment {
	return &entity.Appointment{
		ID:              e.ID,
		UserID:          e.UserID,
		Title:           e.Title,
		DoctorName:      e.DoctorName,
		HospitalName:    e.HospitalName,
		AppointmentDate: e.AppointmentDate,
		DurationMinutes: e.DurationMinutes,
		Type:            e.Type,
		Status:          e.Status,
		ReminderEnabled: e.ReminderEnabled,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func ToHealthRecord(e *ent.HealthRecord) *entity.HealthRecord {
	return &entity.HealthRecord{
		ID:           e.ID,
		UserID:       e.UserID,
		RecordType:   e.RecordType,
		Value:        e.Value,
		Unit:         e.Unit,
		MeasuredDate: e.MeasuredDate,
		Notes:        e.Notes,
		CreatedAt:    e.CreatedAt,
	}
}

func ToSetting(e *ent.Setting) *entity.Setting {
	return &entity.Setting{
		Key:         e.Key,
		Value:       e.Value,
		Description: e.Description,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToDocumentAnalysis(e *ent.DocumentAnalysis) *entity.DocumentAnalysis {
	return &entity.DocumentAnalysis{
		ID:              e.ID,
		UserID:          e.UserID,
		Filename:        e.Filename,
		FilePath:        e.FilePath,
		FileExt:         e.FileExt,
		FileSize:        e.FileSize,
		ContentHash:     hex.EncodeToString(e.ContentHash),
		Category:        constants.Category(e.Category),
		Confidence:      e.Confidence,
		Extractor:       strOrEmpty(e.Extractor),
		RawText:         strOrEmpty(e.RawText),
		FieldsJSON:      e.FieldsJSON,
		Summary:         strOrEmpty(e.Summary),
		Recommendations: e.Recommendations,
		SummarySource:   strOrEmpty(e.SummarySource),
		Tags:            e.Tags,
		Warnings:        e.Warnings,
		Status:          constants.AnalysisStatus(e.Status),
		ErrorCode:       e.ErrorCode,
		ErrorMessage:    e.ErrorMessage,
		AnalyzedAt:      e.AnalyzedAt,
		CreatedAt:       e.CreatedAt,
	}
}

// systemTags annotate stored documents per category for browsing and search.
// Unlike the pipeline's keyword tags these do not come out of document text.
var systemTags = map[constants.Category][]string{
	constants.ECG:          {"cardiology", "heart", "diagnostic"},
	constants.Prescription: {"medication", "pharmacy", "treatment"},
	constants.Radiology:    {"imaging", "diagnostic", "radiology"},
	constants.LabReport:    {"laboratory", "test_results", "clinical"},
}

// SystemTags returns the fixed tag set for a category.
func SystemTags(category constants.Category) []string {
	if tags, ok := systemTags[category]; ok {
		return tags
	}
	return []string{"medical", "document"}
}

// MergeTags combines system tags with keyword tags found in the document,
// first occurrence wins.
func MergeTags(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, t := range g {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
