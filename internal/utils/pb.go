package utils

import (
	"time"

	"github.com/anudeep227/personal-health-manager/internal/entity"

	healthpb "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
)

func fmtRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtRFC3339Ptr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtRFC3339(*t)
}

func fmtYMD(t time.Time) string {
	return t.Format("2006-01-02")
}

func fmtYMDPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtYMD(*t)
}

func f64OrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func ToPBUser(u *entity.User) *healthpb.User {
	return &healthpb.User{
		Id:                u.ID.String(),
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             strOrEmpty(u.Email),
		Phone:             strOrEmpty(u.Phone),
		DateOfBirth:       fmtYMDPtr(u.DateOfBirth),
		Gender:            strOrEmpty(u.Gender),
		BloodGroup:        strOrEmpty(u.BloodGroup),
		HeightCm:          f64OrZero(u.HeightCM),
		WeightKg:          f64OrZero(u.WeightKG),
		EmergencyContact:  strOrEmpty(u.EmergencyContact),
		Allergies:         strOrEmpty(u.Allergies),
		MedicalConditions: strOrEmpty(u.MedicalConditions),
		CreatedAt:         fmtRFC3339(u.CreatedAt),
		UpdatedAt:         fmtRFC3339(u.UpdatedAt),
	}
}

func ToPBMedication(m *entity.Medication) *healthpb.Medication {
	return &healthpb.Medication{
		Id:              m.ID.String(),
		UserId:          m.UserID.String(),
		Name:            m.Name,
		Dosage:          strOrEmpty(m.Dosage),
		Frequency:       strOrEmpty(m.Frequency),
		StartDate:       fmtYMD(m.StartDate),
		EndDate:         fmtYMDPtr(m.EndDate),
		Instructions:    strOrEmpty(m.Instructions),
		SideEffects:     strOrEmpty(m.SideEffects),
		IsActive:        m.IsActive,
		ReminderEnabled: m.ReminderEnabled,
		ReminderTimes:   m.ReminderTimes,
		CreatedAt:       fmtRFC3339(m.CreatedAt),
		UpdatedAt:       fmtRFC3339(m.UpdatedAt),
	}
}

func ToPBMedicationLog(l *entity.MedicationLog) *healthpb.MedicationLogEntry {
	return &healthpb.MedicationLogEntry{
		Id:            l.ID.String(),
		MedicationId:  l.MedicationID.String(),
		ScheduledTime: fmtRFC3339(l.ScheduledTime),
		TakenTime:     fmtRFC3339Ptr(l.TakenTime),
		Status:        l.Status,
		Notes:         strOrEmpty(l.Notes),
		CreatedAt:     fmtRFC3339(l.CreatedAt),
	}
}

func ToPBAppointment(a *entity.Appointment) *healthpb.Appointment {
	return &healthpb.Appointment{
		Id:              a.ID.String(),
		UserId:          a.UserID.String(),
		Title:           a.Title,
		DoctorName:      strOrEmpty(a.DoctorName),
		HospitalName:    strOrEmpty(a.HospitalName),
		AppointmentDate: fmtRFC3339(a.AppointmentDate),
		DurationMinutes: int32(intOrZero(a.DurationMinutes)),
		Type:            strOrEmpty(a.Type),
		Status:          a.Status,
		ReminderEnabled: a.ReminderEnabled,
		Notes:           strOrEmpty(a.Notes),
		CreatedAt:       fmtRFC3339(a.CreatedAt),
		UpdatedAt:       fmtRFC3339(a.UpdatedAt),
	}
}

func ToPBHealthRecord(r *entity.HealthRecord) *healthpb.HealthRecord {
	return &healthpb.HealthRecord{
		Id:           r.ID.String(),
		UserId:       r.UserID.String(),
		RecordType:   r.RecordType,
		Value:        r.Value,
		Unit:         strOrEmpty(r.Unit),
		MeasuredDate: fmtRFC3339(r.MeasuredDate),
		Notes:        strOrEmpty(r.Notes),
		CreatedAt:    fmtRFC3339(r.CreatedAt),
	}
}

func ToPBAnalysis(d *entity.DocumentAnalysis) *healthpb.DocumentAnalysis {
	return &healthpb.DocumentAnalysis{
		Id:              d.ID.String(),
		UserId:          d.UserID.String(),
		Filename:        d.Filename,
		FileExt:         d.FileExt,
		FileSize:        d.FileSize,
		ContentHash:     d.ContentHash,
		Category:        string(d.Category),
		Status:          string(d.Status),
		Confidence:      d.Confidence,
		Extractor:       d.Extractor,
		FieldsJson:      string(d.FieldsJSON),
		Summary:         d.Summary,
		Recommendations: d.Recommendations,
		SummarySource:   d.SummarySource,
		Tags:            d.Tags,
		Warnings:        d.Warnings,
		ErrorCode:       strOrEmpty(d.ErrorCode),
		ErrorMessage:    strOrEmpty(d.ErrorMessage),
		AnalyzedAt:      fmtRFC3339Ptr(d.AnalyzedAt),
		CreatedAt:       fmtRFC3339(d.CreatedAt),
	}
}

func ToPBStats(s *entity.AnalysisStats) *healthpb.GetDocumentStatsResponse {
	out := &healthpb.GetDocumentStatsResponse{
		Total:         int32(s.Total),
		ByCategory:    make(map[string]int32, len(s.ByCategory)),
		ByStatus:      make(map[string]int32, len(s.ByStatus)),
		AvgConfidence: s.AvgConfidence,
		TotalBytes:    s.TotalBytes,
		LastUploadAt:  fmtRFC3339Ptr(s.LastUploadAt),
	}
	for k, v := range s.ByCategory {
		out.ByCategory[k] = int32(v)
	}
	for k, v := range s.ByStatus {
		out.ByStatus[k] = int32(v)
	}
	return out
}
