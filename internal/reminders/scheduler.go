package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/anudeep227/personal-health-manager/internal/repository"
)

const defaultSpec = "* * * * *"

var defaultOffsets = []time.Duration{30 * time.Minute, time.Hour, 24 * time.Hour}

// Config tunes the reminder scheduler.
type Config struct {
	Spec    string          // sweep schedule, default every minute
	Offsets []time.Duration // appointment lead times, default 30m, 1h and 24h
}

// Scheduler runs the reminder sweep on a cron schedule. Both reminder kinds
// can be switched off at runtime through the settings table.
type Scheduler struct {
	spec    string
	offsets []time.Duration

	meds     repository.MedicationRepository
	appts    repository.AppointmentRepository
	settings repository.SettingsRepository
	notify   Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	last    time.Time
	running bool
}

// NewScheduler wires a scheduler. notify may be nil; reminders are then only
// logged.
func NewScheduler(cfg Config, meds repository.MedicationRepository, appts repository.AppointmentRepository, settings repository.SettingsRepository, notify Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Spec == "" {
		cfg.Spec = defaultSpec
	}
	if len(cfg.Offsets) == 0 {
		cfg.Offsets = defaultOffsets
	}
	return &Scheduler{
		spec:     cfg.Spec,
		offsets:  cfg.Offsets,
		meds:     meds,
		appts:    appts,
		settings: settings,
		notify:   notify,
		logger:   logger,
	}
}

// Start begins sweeping on the configured schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("reminder scheduler already running")
	}
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron = c
	s.last = time.Now()
	s.running = true
	c.Start()
	s.logger.Info("reminder scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for an in-flight sweep to finish, or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.cron
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info("reminder scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("reminder scheduler stop interrupted", "err", ctx.Err())
	}
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SweepStats counts what one sweep produced.
type SweepStats struct {
	Medications  int
	Appointments int
}

// Sweep runs one pass over both reminder sources, covering the window since
// the previous sweep. The cron entry calls this every tick; callers may also
// invoke it directly to force a check.
func (s *Scheduler) Sweep(ctx context.Context) SweepStats {
	s.mu.Lock()
	now := time.Now()
	from := s.last
	if from.IsZero() {
		from = now.Add(-time.Minute)
	}
	s.last = now
	s.mu.Unlock()

	var stats SweepStats
	if s.settings.GetBool(ctx, repository.SettingMedicationReminders, true) {
		stats.Medications = s.sweepMedications(ctx, from, now)
	}
	if s.settings.GetBool(ctx, repository.SettingAppointmentReminders, true) {
		stats.Appointments = s.sweepAppointments(ctx, from, now)
	}
	return stats
}

func (s *Scheduler) sweepMedications(ctx context.Context, from, to time.Time) int {
	meds, err := s.meds.ListWithReminders(ctx)
	if err != nil {
		s.logger.Error("reminders.medications.query", "err", err)
		return 0
	}
	due := medicationsDue(meds, from, to)
	for _, d := range due {
		s.emit(ctx, Notification{
			Kind:    KindMedication,
			UserID:  d.Medication.UserID,
			RefID:   d.Medication.ID,
			Title:   "Medication reminder",
			Message: medicationMessage(d.Medication),
			DueAt:   d.At,
		})
	}
	return len(due)
}

func (s *Scheduler) sweepAppointments(ctx context.Context, from, to time.Time) int {
	lookahead := s.settings.GetInt(ctx, repository.SettingAppointmentLookahead, 24)
	appts, err := s.appts.ListUpcoming(ctx, time.Duration(lookahead)*time.Hour)
	if err != nil {
		s.logger.Error("reminders.appointments.query", "err", err)
		return 0
	}
	due := appointmentsDue(appts, s.offsets, from, to)
	for _, d := range due {
		s.emit(ctx, Notification{
			Kind:    KindAppointment,
			UserID:  d.Appointment.UserID,
			RefID:   d.Appointment.ID,
			Title:   "Appointment reminder",
			Message: appointmentMessage(d.Appointment, d.Appointment.AppointmentDate.Sub(to)),
			DueAt:   d.At,
		})
	}
	return len(due)
}

func (s *Scheduler) emit(ctx context.Context, n Notification) {
	s.logger.Info("reminder due",
		"kind", n.Kind,
		"user_id", n.UserID,
		"message", n.Message,
	)
	if s.notify != nil {
		s.notify(ctx, n)
	}
}
