package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the person whose health data is being tracked.
type User struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             *string    `json:"email,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Gender            *string    `json:"gender,omitempty"`
	BloodGroup        *string    `json:"blood_group,omitempty"`
	HeightCM          *float64   `json:"height_cm,omitempty"`
	WeightKG          *float64   `json:"weight_kg,omitempty"`
	EmergencyContact  *string    `json:"emergency_contact,omitempty"`
	Allergies         *string    `json:"allergies,omitempty"`
	MedicalConditions *string    `json:"medical_conditions,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FullName joins the first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
