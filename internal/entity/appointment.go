package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a scheduled visit with a doctor or clinic.
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	DoctorName      *string   `json:"doctor_name,omitempty"`
	HospitalName    *string   `json:"hospital_name,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Type            *string   `json:"type,omitempty"`
	Status          string    `json:"status"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsUpcoming reports whether the appointment is still scheduled and in the
// future relative to now.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	return a.Status == "scheduled" && a.AppointmentDate.After(now)
}
