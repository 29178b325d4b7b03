package reminders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

type fakeMedRepo struct {
	repository.MedicationRepository
	meds   []*entity.Medication
	err    error
	called bool
}

func (f *fakeMedRepo) ListWithReminders(ctx context.Context) ([]*entity.Medication, error) {
	f.called = true
	return f.meds, f.err
}

type fakeApptRepo struct {
	repository.AppointmentRepository
	appts  []*entity.Appointment
	err    error
	called bool
	within time.Duration
}

func (f *fakeApptRepo) ListUpcoming(ctx context.Context, within time.Duration) ([]*entity.Appointment, error) {
	f.called = true
	f.within = within
	return f.appts, f.err
}

type fakeSettings struct {
	repository.SettingsRepository
	bools map[string]bool
	ints  map[string]int
}

func (f *fakeSettings) GetBool(ctx context.Context, key string, fallback bool) bool {
	if v, ok := f.bools[key]; ok {
		return v
	}
	return fallback
}

func (f *fakeSettings) GetInt(ctx context.Context, key string, fallback int) int {
	if v, ok := f.ints[key]; ok {
		return v
	}
	return fallback
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func TestSweepEmitsMedicationReminder(t *testing.T) {
	now := time.Now()
	med := &entity.Medication{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "Metformin",
		Dosage: strPtr("500 mg"),
		ReminderTimes: []string{
			now.Format("15:04"),
			now.Add(time.Minute).Format("15:04"),
		},
	}
	var got []Notification
	notify := func(ctx context.Context, n Notification) { got = append(got, n) }

	s := NewScheduler(Config{}, &fakeMedRepo{meds: []*entity.Medication{med}}, &fakeApptRepo{}, &fakeSettings{}, notify, discardLogger())
	stats := s.Sweep(context.Background())

	assert.Equal(t, 1, stats.Medications)
	require.Len(t, got, 1)
	assert.Equal(t, KindMedication, got[0].Kind)
	assert.Equal(t, med.UserID, got[0].UserID)
	assert.Equal(t, med.ID, got[0].RefID)
	assert.Equal(t, "Time to take Metformin (500 mg)", got[0].Message)
}

func TestSweepEmitsAppointmentReminder(t *testing.T) {
	appt := &entity.Appointment{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Title:           "Cardiology follow-up",
		DoctorName:      strPtr("Dr. Chen"),
		AppointmentDate: time.Now().Add(30 * time.Minute),
	}
	appts := &fakeApptRepo{appts: []*entity.Appointment{appt}}
	var got []Notification
	notify := func(ctx context.Context, n Notification) { got = append(got, n) }

	s := NewScheduler(Config{}, &fakeMedRepo{}, appts, &fakeSettings{}, notify, discardLogger())
	stats := s.Sweep(context.Background())

	assert.Equal(t, 1, stats.Appointments)
	require.Len(t, got, 1)
	assert.Equal(t, KindAppointment, got[0].Kind)
	assert.Equal(t, appt.ID, got[0].RefID)
	assert.Contains(t, got[0].Message, "Dr. Chen")
	assert.Equal(t, 24*time.Hour, appts.within)
}

func TestSweepHonorsSettingSwitches(t *testing.T) {
	meds := &fakeMedRepo{meds: []*entity.Medication{{ID: uuid.New(), Name: "Metformin"}}}
	appts := &fakeApptRepo{}
	settings := &fakeSettings{bools: map[string]bool{
		repository.SettingMedicationReminders:  false,
		repository.SettingAppointmentReminders: false,
	}}

	s := NewScheduler(Config{}, meds, appts, settings, nil, discardLogger())
	stats := s.Sweep(context.Background())

	assert.Equal(t, SweepStats{}, stats)
	assert.False(t, meds.called)
	assert.False(t, appts.called)
}

func TestSweepLookaheadFromSettings(t *testing.T) {
	appts := &fakeApptRepo{}
	settings := &fakeSettings{ints: map[string]int{
		repository.SettingAppointmentLookahead: 48,
	}}

	s := NewScheduler(Config{}, &fakeMedRepo{}, appts, settings, nil, discardLogger())
	s.Sweep(context.Background())

	assert.Equal(t, 48*time.Hour, appts.within)
}

func TestSweepSurvivesRepositoryErrors(t *testing.T) {
	meds := &fakeMedRepo{err: errors.New("db down")}
	appts := &fakeApptRepo{err: errors.New("db down")}
	var got []Notification
	notify := func(ctx context.Context, n Notification) { got = append(got, n) }

	s := NewScheduler(Config{}, meds, appts, &fakeSettings{}, notify, discardLogger())
	stats := s.Sweep(context.Background())

	assert.Equal(t, SweepStats{}, stats)
	assert.Empty(t, got)
}

func TestSweepDoesNotRepeatWithinSameMinute(t *testing.T) {
	med := &entity.Medication{
		ID:            uuid.New(),
		Name:          "Metformin",
		ReminderTimes: []string{time.Now().Format("15:04")},
	}

	s := NewScheduler(Config{}, &fakeMedRepo{meds: []*entity.Medication{med}}, &fakeApptRepo{}, &fakeSettings{}, nil, discardLogger())
	first := s.Sweep(context.Background())
	second := s.Sweep(context.Background())

	assert.Equal(t, 1, first.Medications)
	assert.Equal(t, 0, second.Medications)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(Config{}, &fakeMedRepo{}, &fakeApptRepo{}, &fakeSettings{}, nil, discardLogger())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	s.Stop(context.Background())
	assert.False(t, s.IsRunning())
	s.Stop(context.Background())
}

func TestSchedulerStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(Config{Spec: "whenever"}, &fakeMedRepo{}, &fakeApptRepo{}, &fakeSettings{}, nil, discardLogger())

	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}
