package repository

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/setting"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// Well-known setting keys, seeded by InitializeDefaults.
const (
	SettingTheme                = "theme"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingMedicationReminders  = "medication_reminders"
	SettingAppointmentReminders = "appointment_reminders"
	SettingBackupEnabled        = "backup_enabled"
	SettingEncryptionEnabled    = "encryption_enabled"
	SettingAppointmentLookahead = "appointment_reminder_lookahead_hours"
)

var defaultSettings = []struct {
	key, value, description string
}{
	{SettingTheme, "light", "Application theme"},
	{SettingNotificationsEnabled, "true", "Enable notifications"},
	{SettingMedicationReminders, "true", "Enable medication reminders"},
	{SettingAppointmentReminders, "true", "Enable appointment reminders"},
	{SettingBackupEnabled, "true", "Enable automatic backups"},
	{SettingEncryptionEnabled, "true", "Enable data encryption"},
	{SettingAppointmentLookahead, "24", "Hours before an appointment to remind"},
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (*entity.Setting, error)
	GetBool(ctx context.Context, key string, fallback bool) bool
	GetInt(ctx context.Context, key string, fallback int) int
	Set(ctx context.Context, key, value string, description *string) (*entity.Setting, error)
	All(ctx context.Context) ([]*entity.Setting, error)
	InitializeDefaults(ctx context.Context) error
}

type settingsRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewSettingsRepository(client *ent.Client, logger *slog.Logger) SettingsRepository {
	return &settingsRepository{
		client: client,
		logger: logger,
	}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (*entity.Setting, error) {
	row, err := r.client.Setting.Query().Where(setting.Key(key)).Only(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToSetting(row), nil
}

// GetBool reads a boolean switch, returning fallback when the key is absent
// or unparseable.
func (r *settingsRepository) GetBool(ctx context.Context, key string, fallback bool) bool {
	s, err := r.Get(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		r.logger.Warn("setting holds a non-boolean value", "key", key, "value", s.Value)
		return fallback
	}
	return v
}

// GetInt reads a numeric setting, returning fallback when the key is absent
// or unparseable.
func (r *settingsRepository) GetInt(ctx context.Context, key string, fallback int) int {
	s, err := r.Get(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(s.Value)
	if err != nil {
		r.logger.Warn("setting holds a non-numeric value", "key", key, "value", s.Value)
		return fallback
	}
	return v
}

func (r *settingsRepository) Set(ctx context.Context, key, value string, description *string) (*entity.Setting, error) {
	existing, err := r.client.Setting.Query().Where(setting.Key(key)).Only(ctx)
	if err == nil {
		row, uerr := existing.Update().
			SetValue(value).
			SetNillableDescription(description).
			Save(ctx)
		if uerr != nil {
			r.logger.Error("failed to update setting", "key", key, "error", uerr)
			return nil, uerr
		}
		return utils.ToSetting(row), nil
	}
	if !ent.IsNotFound(err) {
		r.logger.Error("failed to look up setting", "key", key, "error", err)
		return nil, err
	}

	row, err := r.client.Setting.Create().
		SetKey(key).
		SetValue(value).
		SetNillableDescription(description).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create setting", "key", key, "error", err)
		return nil, err
	}
	return utils.ToSetting(row), nil
}

// InitializeDefaults seeds missing settings without touching existing values.
func (r *settingsRepository) InitializeDefaults(ctx context.Context) error {
	for _, d := range defaultSettings {
		exists, err := r.client.Setting.Query().Where(setting.Key(d.key)).Exist(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		desc := d.description
		if _, err := r.Set(ctx, d.key, d.value, &desc); err != nil {
			return err
		}
	}
	return nil
}

func (r *settingsRepository) All(ctx context.Context) ([]*entity.Setting, error) {
	rows, err := r.client.Setting.Query().Order(setting.ByKey()).All(ctx)
	if err != nil {
		r.logger.Error("failed to list settings", "error", err)
		return nil, err
	}
	result := make([]*entity.Setting, len(rows))
	for i, row := range rows {
		result[i] = utils.ToSetting(row)
	}
	return result, nil
}
