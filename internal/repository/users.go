package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/user"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// User wraps parameters for creating a user.
type User struct {
	FirstName         string
	LastName          string
	Email             *string
	Phone             *string
	DateOfBirth       *time.Time
	Gender            *string
	BloodGroup        *string
	HeightCM          *float64
	WeightKG          *float64
	EmergencyContact  *string
	Allergies         *string
	MedicalConditions *string
}

// UserUpdate carries the mutable fields of a user; nil members are left
// unchanged.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Phone             *string
	DateOfBirth       *time.Time
	Gender            *string
	BloodGroup        *string
	HeightCM          *float64
	WeightKG          *float64
	EmergencyContact  *string
	Allergies         *string
	MedicalConditions *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, upd *UserUpdate) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewUserRepository(client *ent.Client, logger *slog.Logger) UserRepository {
	return &userRepository{
		client: client,
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, u *User) (*entity.User, error) {
	row, err := r.client.User.Create().
		SetFirstName(u.FirstName).
		SetLastName(u.LastName).
		SetNillableEmail(u.Email).
		SetNillablePhone(u.Phone).
		SetNillableDateOfBirth(u.DateOfBirth).
		SetNillableGender(u.Gender).
		SetNillableBloodGroup(u.BloodGroup).
		SetNillableHeightCm(u.HeightCM).
		SetNillableWeightKg(u.WeightKG).
		SetNillableEmergencyContact(u.EmergencyContact).
		SetNillableAllergies(u.Allergies).
		SetNillableMedicalConditions(u.MedicalConditions).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create user", "first_name", u.FirstName, "last_name", u.LastName, "error", err)
		return nil, err
	}
	return utils.ToUser(row), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row, err := r.client.User.Query().Where(user.ID(id)).Only(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToUser(row), nil
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.client.User.Query().Order(user.ByCreatedAt()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	result := make([]*entity.User, len(rows))
	for i, row := range rows {
		result[i] = utils.ToUser(row)
	}
	return result, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, upd *UserUpdate) (*entity.User, error) {
	b := r.client.User.UpdateOneID(id)
	if upd.FirstName != nil {
		b.SetFirstName(*upd.FirstName)
	}
	if upd.LastName != nil {
		b.SetLastName(*upd.LastName)
	}
	b.SetNillableEmail(upd.Email).
		SetNillablePhone(upd.Phone).
		SetNillableDateOfBirth(upd.DateOfBirth).
		SetNillableGender(upd.Gender).
		SetNillableBloodGroup(upd.BloodGroup).
		SetNillableHeightCm(upd.HeightCM).
		SetNillableWeightKg(upd.WeightKG).
		SetNillableEmergencyContact(upd.EmergencyContact).
		SetNillableAllergies(upd.Allergies).
		SetNillableMedicalConditions(upd.MedicalConditions)

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, err
	}
	return utils.ToUser(row), nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.User.DeleteOneID(id).Exec(ctx); err != nil {
		r.logger.Error("failed to delete user", "user_id", id, "error", err)
		return err
	}
	return nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := r.client.User.Query().Where(user.ID(id)).Exist(ctx)
	if err != nil {
		r.logger.Error("failed to check user existence", "user_id", id, "error", err)
		return false, err
	}
	return exists, nil
}
