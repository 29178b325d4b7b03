package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/appointment"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// Appointment wraps parameters for creating an appointment.
type Appointment struct {
	UserID          uuid.UUID
	Title           string
	DoctorName      *string
	HospitalName    *string
	AppointmentDate time.Time
	DurationMinutes *int
	Type            *string
	ReminderEnabled bool
	Notes           *string
}

// AppointmentUpdate carries mutable appointment fields; nil members are left
// unchanged.
type AppointmentUpdate struct {
	Title           *string
	DoctorName      *string
	HospitalName    *string
	AppointmentDate *time.Time
	DurationMinutes *int
	Type            *string
	Status          *string
	ReminderEnabled *bool
	Notes           *string
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) (*entity.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*entity.Appointment, error)
	ListUpcoming(ctx context.Context, within time.Duration) ([]*entity.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, upd *AppointmentUpdate) (*entity.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type appointmentRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewAppointmentRepository(client *ent.Client, logger *slog.Logger) AppointmentRepository {
	return &appointmentRepository{
		client: client,
		logger: logger,
	}
}

func (r *appointmentRepository) Create(ctx context.Context, a *Appointment) (*entity.Appointment, error) {
	row, err := r.client.Appointment.Create().
		SetUserID(a.UserID).
		SetTitle(a.Title).
		SetNillableDoctorName(a.DoctorName).
		SetNillableHospitalName(a.HospitalName).
		SetAppointmentDate(a.AppointmentDate).
		SetNillableDurationMinutes(a.DurationMinutes).
		SetNillableType(a.Type).
		SetReminderEnabled(a.ReminderEnabled).
		SetNillableNotes(a.Notes).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create appointment", "user_id", a.UserID, "title", a.Title, "error", err)
		return nil, err
	}
	return utils.ToAppointment(row), nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	row, err := r.client.Appointment.Query().Where(appointment.ID(id)).Only(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToAppointment(row), nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*entity.Appointment, error) {
	q := r.client.Appointment.Query().Where(appointment.UserID(userID))
	if from != nil {
		q = q.Where(appointment.AppointmentDateGTE(*from))
	}
	if to != nil {
		q = q.Where(appointment.AppointmentDateLTE(*to))
	}
	rows, err := q.Order(appointment.ByAppointmentDate()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list appointments", "user_id", userID, "error", err)
		return nil, err
	}
	result := make([]*entity.Appointment, len(rows))
	for i, row := range rows {
		result[i] = utils.ToAppointment(row)
	}
	return result, nil
}

// ListUpcoming returns scheduled, reminder-enabled appointments starting in
// the next `within` window, across all users. The reminder scheduler polls
// this.
func (r *appointmentRepository) ListUpcoming(ctx context.Context, within time.Duration) ([]*entity.Appointment, error) {
	now := time.Now()
	rows, err := r.client.Appointment.Query().
		Where(
			appointment.StatusEQ("scheduled"),
			appointment.ReminderEnabled(true),
			appointment.AppointmentDateGTE(now),
			appointment.AppointmentDateLTE(now.Add(within)),
		).
		Order(appointment.ByAppointmentDate()).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to list upcoming appointments", "error", err)
		return nil, err
	}
	result := make([]*entity.Appointment, len(rows))
	for i, row := range rows {
		result[i] = utils.ToAppointment(row)
	}
	return result, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, upd *AppointmentUpdate) (*entity.Appointment, error) {
	b := r.client.Appointment.UpdateOneID(id)
	if upd.Title != nil {
		b.SetTitle(*upd.Title)
	}
	if upd.AppointmentDate != nil {
		b.SetAppointmentDate(*upd.AppointmentDate)
	}
	if upd.Status != nil {
		b.SetStatus(*upd.Status)
	}
	b.SetNillableDoctorName(upd.DoctorName).
		SetNillableHospitalName(upd.HospitalName).
		SetNillableDurationMinutes(upd.DurationMinutes).
		SetNillableType(upd.Type).
		SetNillableReminderEnabled(upd.ReminderEnabled).
		SetNillableNotes(upd.Notes)

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to update appointment", "appointment_id", id, "error", err)
		return nil, err
	}
	return utils.ToAppointment(row), nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Appointment.DeleteOneID(id).Exec(ctx); err != nil {
		r.logger.Error("failed to delete appointment", "appointment_id", id, "error", err)
		return err
	}
	return nil
}
