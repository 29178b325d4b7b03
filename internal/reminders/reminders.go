// Package reminders sweeps the database on a cron schedule and emits
// notifications for medications due at the current time of day and for
// appointments coming up inside the configured lookahead window.
package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// Kind tells a notification consumer what triggered the reminder.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindAppointment Kind = "appointment"
)

// Notification is one reminder ready for delivery.
type Notification struct {
	Kind    Kind
	UserID  uuid.UUID
	RefID   uuid.UUID // medication or appointment id
	Title   string
	Message string
	DueAt   time.Time
}

// Notifier delivers a notification to the outside world (desktop popup,
// push gateway, test probe). The scheduler always logs; the hook is extra.
type Notifier func(ctx context.Context, n Notification)

// MedicationDue pairs a medication with the reminder time that fired.
type MedicationDue struct {
	Medication *entity.Medication
	At         time.Time
}

// AppointmentDue pairs an appointment with the lead-time offset that fired.
type AppointmentDue struct {
	Appointment *entity.Appointment
	Offset      time.Duration
	At          time.Time
}

// medicationsDue returns the medications with a reminder clock time falling
// inside the half-open window (from, to]. Malformed clock entries are
// skipped. Each medication fires at most once per window.
func medicationsDue(meds []*entity.Medication, from, to time.Time) []MedicationDue {
	var due []MedicationDue
	for _, m := range meds {
		for _, clock := range m.ReminderTimes {
			hh, mm, err := parseClock(clock)
			if err != nil {
				continue
			}
			if at, ok := clockInWindow(hh, mm, from, to); ok {
				due = append(due, MedicationDue{Medication: m, At: at})
				break
			}
		}
	}
	return due
}

// appointmentsDue returns appointments with a reminder offset landing inside
// (from, to]. Each appointment fires at most once per window even when two
// offsets sit close together.
func appointmentsDue(appts []*entity.Appointment, offsets []time.Duration, from, to time.Time) []AppointmentDue {
	var due []AppointmentDue
	for _, a := range appts {
		for _, off := range offsets {
			at := a.AppointmentDate.Add(-off)
			if at.After(from) && !at.After(to) {
				due = append(due, AppointmentDue{Appointment: a, Offset: off, At: at})
				break
			}
		}
	}
	return due
}

// parseClock parses a "HH:MM" wall-clock string. Single-digit hours are
// accepted.
func parseClock(s string) (hh, mm int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// clockInWindow reports whether a wall-clock time of day occurs inside
// (from, to], and if so at which instant. Sweeps run about a minute apart,
// so the window spans at most two calendar days (around midnight); checking
// the date of each endpoint covers both.
func clockInWindow(hh, mm int, from, to time.Time) (time.Time, bool) {
	for _, day := range []time.Time{from, to} {
		at := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, to.Location())
		if at.After(from) && !at.After(to) {
			return at, true
		}
	}
	return time.Time{}, false
}

// medicationMessage renders the notification body for a due medication.
func medicationMessage(m *entity.Medication) string {
	msg := "Time to take " + m.Name
	if m.Dosage != nil && *m.Dosage != "" {
		msg += " (" + *m.Dosage + ")"
	}
	return msg
}

// appointmentMessage renders the notification body for an upcoming
// appointment. lead is the time remaining until the appointment itself.
func appointmentMessage(a *entity.Appointment, lead time.Duration) string {
	who := a.Title
	if a.DoctorName != nil && *a.DoctorName != "" {
		who = *a.DoctorName
	}
	return fmt.Sprintf("Appointment with %s %s", who, formatLead(lead))
}

// formatLead renders a duration the way a reminder reads naturally, rounded
// down to the largest useful unit.
func formatLead(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("in %d day(s)", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("in %d hour(s)", int(d.Hours()))
	default:
		return fmt.Sprintf("in %d minute(s)", int(d.Minutes()))
	}
}
