package entity

import (
	"time"

	"github.com/google/uuid"
)

// HealthRecord is a single vital measurement such as blood pressure, weight
// or temperature.
type HealthRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	RecordType   string    `json:"record_type"`
	Value        string    `json:"value"`
	Unit         *string   `json:"unit,omitempty"`
	MeasuredDate time.Time `json:"measured_date"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
