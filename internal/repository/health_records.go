package repository

import (
	"context"
	"log/slog"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/healthrecord"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// HealthRecord wraps parameters for creating a measurement entry.
type HealthRecord struct {
	UserID       uuid.UUID
	RecordType   string
	Value        string
	Unit         *string
	MeasuredDate time.Time
	Notes        *string
}

type HealthRecordRepository interface {
	Create(ctx context.Context, rec *HealthRecord) (*entity.HealthRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, recordType string, from, to *time.Time) ([]*entity.HealthRecord, error)
	Latest(ctx context.Context, userID uuid.UUID, recordType string) (*entity.HealthRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type healthRecordRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewHealthRecordRepository(client *ent.Client, logger *slog.Logger) HealthRecordRepository {
	return &healthRecordRepository{
		client: client,
		logger: logger,
	}
}

func (r *healthRecordRepository) Create(ctx context.Context, rec *HealthRecord) (*entity.HealthRecord, error) {
	row, err := r.client.HealthRecord.Create().
		SetUserID(rec.UserID).
		SetRecordType(rec.RecordType).
		SetValue(rec.Value).
		SetNillableUnit(rec.Unit).
		SetMeasuredDate(rec.MeasuredDate).
		SetNillableNotes(rec.Notes).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create health record", "user_id", rec.UserID, "record_type", rec.RecordType, "error", err)
		return nil, err
	}
	return utils.ToHealthRecord(row), nil
}

func (r *healthRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID, recordType string, from, to *time.Time) ([]*entity.HealthRecord, error) {
	q := r.client.HealthRecord.Query().Where(healthrecord.UserID(userID))
	if recordType != "" {
		q = q.Where(healthrecord.RecordType(recordType))
	}
	if from != nil {
		q = q.Where(healthrecord.MeasuredDateGTE(*from))
	}
	if to != nil {
		q = q.Where(healthrecord.MeasuredDateLTE(*to))
	}
	rows, err := q.Order(healthrecord.ByMeasuredDate()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list health records", "user_id", userID, "record_type", recordType, "error", err)
		return nil, err
	}
	result := make([]*entity.HealthRecord, len(rows))
	for i, row := range rows {
		result[i] = utils.ToHealthRecord(row)
	}
	return result, nil
}

func (r *healthRecordRepository) Latest(ctx context.Context, userID uuid.UUID, recordType string) (*entity.HealthRecord, error) {
	row, err := r.client.HealthRecord.Query().
		Where(healthrecord.UserID(userID), healthrecord.RecordType(recordType)).
		Order(healthrecord.ByMeasuredDate(sql.OrderDesc())).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToHealthRecord(row), nil
}

func (r *healthRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.HealthRecord.DeleteOneID(id).Exec(ctx); err != nil {
		r.logger.Error("failed to delete health record", "record_id", id, "error", err)
		return err
	}
	return nil
}
