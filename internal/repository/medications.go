package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/medication"
	"github.com/anudeep227/personal-health-manager/gen/ent/medicationlog"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// Medication wraps parameters for creating a medication.
type Medication struct {
	UserID          uuid.UUID
	Name            string
	Dosage          *string
	Frequency       *string
	StartDate       *time.Time
	EndDate         *time.Time
	Instructions    *string
	SideEffects     *string
	ReminderEnabled bool
	ReminderTimes   []string
}

// MedicationUpdate carries mutable medication fields; nil members are left
// unchanged.
type MedicationUpdate struct {
	Name            *string
	Dosage          *string
	Frequency       *string
	StartDate       *time.Time
	EndDate         *time.Time
	Instructions    *string
	SideEffects     *string
	IsActive        *bool
	ReminderEnabled *bool
	ReminderTimes   []string
}

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) (*entity.Medication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Medication, error)
	ListWithReminders(ctx context.Context) ([]*entity.Medication, error)
	Update(ctx context.Context, id uuid.UUID, upd *MedicationUpdate) (*entity.Medication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LogIntake(ctx context.Context, medicationID uuid.UUID, scheduled time.Time, status string, notes *string) (*entity.MedicationLog, error)
	ListLogs(ctx context.Context, medicationID uuid.UUID, from, to *time.Time) ([]*entity.MedicationLog, error)
}

type medicationRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewMedicationRepository(client *ent.Client, logger *slog.Logger) MedicationRepository {
	return &medicationRepository{
		client: client,
		logger: logger,
	}
}

func (r *medicationRepository) Create(ctx context.Context, m *Medication) (*entity.Medication, error) {
	b := r.client.Medication.Create().
		SetUserID(m.UserID).
		SetName(m.Name).
		SetNillableDosage(m.Dosage).
		SetNillableFrequency(m.Frequency).
		SetNillableStartDate(m.StartDate).
		SetNillableEndDate(m.EndDate).
		SetNillableInstructions(m.Instructions).
		SetNillableSideEffects(m.SideEffects).
		SetReminderEnabled(m.ReminderEnabled)
	if len(m.ReminderTimes) > 0 {
		b.SetReminderTimes(m.ReminderTimes)
	}

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to create medication", "user_id", m.UserID, "name", m.Name, "error", err)
		return nil, err
	}
	return utils.ToMedication(row), nil
}

func (r *medicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	row, err := r.client.Medication.Query().Where(medication.ID(id)).Only(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToMedication(row), nil
}

func (r *medicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Medication, error) {
	q := r.client.Medication.Query().Where(medication.UserID(userID))
	if activeOnly {
		q = q.Where(medication.IsActive(true))
	}
	rows, err := q.Order(medication.ByName()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list medications", "user_id", userID, "error", err)
		return nil, err
	}
	result := make([]*entity.Medication, len(rows))
	for i, row := range rows {
		result[i] = utils.ToMedication(row)
	}
	return result, nil
}

// ListWithReminders returns every active medication with reminders switched
// on, across all users. The reminder scheduler polls this.
func (r *medicationRepository) ListWithReminders(ctx context.Context) ([]*entity.Medication, error) {
	rows, err := r.client.Medication.Query().
		Where(medication.IsActive(true), medication.ReminderEnabled(true)).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to list reminder medications", "error", err)
		return nil, err
	}
	result := make([]*entity.Medication, len(rows))
	for i, row := range rows {
		result[i] = utils.ToMedication(row)
	}
	return result, nil
}

func (r *medicationRepository) Update(ctx context.Context, id uuid.UUID, upd *MedicationUpdate) (*entity.Medication, error) {
	b := r.client.Medication.UpdateOneID(id)
	if upd.Name != nil {
		b.SetName(*upd.Name)
	}
	b.SetNillableDosage(upd.Dosage).
		SetNillableFrequency(upd.Frequency).
		SetNillableStartDate(upd.StartDate).
		SetNillableEndDate(upd.EndDate).
		SetNillableInstructions(upd.Instructions).
		SetNillableSideEffects(upd.SideEffects).
		SetNillableIsActive(upd.IsActive).
		SetNillableReminderEnabled(upd.ReminderEnabled)
	if upd.ReminderTimes != nil {
		b.SetReminderTimes(upd.ReminderTimes)
	}

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to update medication", "medication_id", id, "error", err)
		return nil, err
	}
	return utils.ToMedication(row), nil
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Medication.DeleteOneID(id).Exec(ctx); err != nil {
		r.logger.Error("failed to delete medication", "medication_id", id, "error", err)
		return err
	}
	return nil
}

func (r *medicationRepository) LogIntake(ctx context.Context, medicationID uuid.UUID, scheduled time.Time, status string, notes *string) (*entity.MedicationLog, error) {
	b := r.client.MedicationLog.Create().
		SetMedicationID(medicationID).
		SetScheduledTime(scheduled).
		SetStatus(status).
		SetNillableNotes(notes)
	if status == "taken" {
		b.SetTakenTime(time.Now())
	}

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to log medication intake", "medication_id", medicationID, "status", status, "error", err)
		return nil, err
	}
	return utils.ToMedicationLog(row), nil
}

func (r *medicationRepository) ListLogs(ctx context.Context, medicationID uuid.UUID, from, to *time.Time) ([]*entity.MedicationLog, error) {
	q := r.client.MedicationLog.Query().Where(medicationlog.MedicationID(medicationID))
	if from != nil {
		q = q.Where(medicationlog.ScheduledTimeGTE(*from))
	}
	if to != nil {
		q = q.Where(medicationlog.ScheduledTimeLTE(*to))
	}
	rows, err := q.Order(medicationlog.ByScheduledTime()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list medication logs", "medication_id", medicationID, "error", err)
		return nil, err
	}
	result := make([]*entity.MedicationLog, len(rows))
	for i, row := range rows {
		result[i] = utils.ToMedicationLog(row)
	}
	return result, nil
}
