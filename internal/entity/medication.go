package entity

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a drug the user takes on a schedule.
type Medication struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	Dosage          *string    `json:"dosage,omitempty"`
	Frequency       *string    `json:"frequency,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Instructions    *string    `json:"instructions,omitempty"`
	SideEffects     *string    `json:"side_effects,omitempty"`
	IsActive        bool       `json:"is_active"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	ReminderTimes   []string   `json:"reminder_times,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MedicationLog records one scheduled dose and whether it was taken.
type MedicationLog struct {
	ID            uuid.UUID  `json:"id"`
	MedicationID  uuid.UUID  `json:"medication_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
