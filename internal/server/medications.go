package server

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

type MedicationsServer struct {
	v1.UnimplementedMedicationsServiceServer
	meds   repository.MedicationRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewMedicationsServer(meds repository.MedicationRepository, users repository.UserRepository, logger *slog.Logger) *MedicationsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MedicationsServer{meds: meds, users: users, logger: logger}
}

func (s *MedicationsServer) AddMedication(ctx context.Context, req *v1.AddMedicationRequest) (*v1.AddMedicationResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for add medication", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	name := strings.TrimSpace(req.GetName())
	if name == "" {
		s.logger.Error("add medication request missing name", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if exists, _ := s.users.Exists(ctx, userID); !exists {
		s.logger.Error("user not found for add medication", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "user not found")
	}

	// New medications start today unless the request says otherwise.
	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if sd := strings.TrimSpace(req.GetStartDate()); sd != "" {
		t, err := utils.ParseYMD(sd)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "start_date must be YYYY-MM-DD")
		}
		startDate = t
	}
	var endDate *time.Time
	if ed := strings.TrimSpace(req.GetEndDate()); ed != "" {
		t, err := utils.ParseYMD(ed)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "end_date must be YYYY-MM-DD")
		}
		endDate = &t
	}

	m, err := s.meds.Create(ctx, &repository.Medication{
		UserID:          userID,
		Name:            name,
		Dosage:          optStr(req.GetDosage()),
		Frequency:       optStr(req.GetFrequency()),
		StartDate:       &startDate,
		EndDate:         endDate,
		Instructions:    optStr(req.GetInstructions()),
		SideEffects:     optStr(req.GetSideEffects()),
		ReminderEnabled: req.GetReminderEnabled(),
		ReminderTimes:   req.GetReminderTimes(),
	})
	if err != nil {
		s.logger.Error("failed to create medication", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "create medication: %v", err)
	}
	s.logger.Info("medication created successfully", "user_id", userID, "medication_id", m.ID, "name", m.Name)

	return &v1.AddMedicationResponse{Medication: utils.ToPBMedication(m)}, nil
}

func (s *MedicationsServer) ListMedications(ctx context.Context, req *v1.ListMedicationsRequest) (*v1.ListMedicationsResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for list medications", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	meds, err := s.meds.ListByUser(ctx, userID, req.GetActiveOnly())
	if err != nil {
		s.logger.Error("failed to list medications", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "list medications: %v", err)
	}

	out := make([]*v1.Medication, 0, len(meds))
	for _, m := range meds {
		out = append(out, utils.ToPBMedication(m))
	}
	return &v1.ListMedicationsResponse{Medications: out}, nil
}

func (s *MedicationsServer) LogIntake(ctx context.Context, req *v1.LogIntakeRequest) (*v1.LogIntakeResponse, error) {
	medicationID, err := uuid.Parse(strings.TrimSpace(req.GetMedicationId()))
	if err != nil {
		s.logger.Error("invalid medication_id format for log intake", "medication_id", req.GetMedicationId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "medication_id must be a UUID")
	}

	intakeStatus := strings.TrimSpace(req.GetStatus())
	if intakeStatus == "" {
		intakeStatus = "taken"
	}
	if intakeStatus != "taken" && intakeStatus != "skipped" {
		return nil, status.Error(codes.InvalidArgument, "status must be taken or skipped")
	}

	scheduled := time.Now()
	if ts := strings.TrimSpace(req.GetScheduledTime()); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "scheduled_time must be RFC3339")
		}
		scheduled = t
	}

	entry, err := s.meds.LogIntake(ctx, medicationID, scheduled, intakeStatus, optStr(req.GetNotes()))
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "medication not found")
		}
		s.logger.Error("failed to log intake", "medication_id", medicationID, "error", err)
		return nil, status.Errorf(codes.Internal, "log intake: %v", err)
	}
	s.logger.Info("intake logged successfully", "medication_id", medicationID, "status", intakeStatus)

	return &v1.LogIntakeResponse{Entry: utils.ToPBMedicationLog(entry)}, nil
}

func (s *MedicationsServer) ListIntakeLog(ctx context.Context, req *v1.ListIntakeLogRequest) (*v1.ListIntakeLogResponse, error) {
	medicationID, err := uuid.Parse(strings.TrimSpace(req.GetMedicationId()))
	if err != nil {
		s.logger.Error("invalid medication_id format for list intake log", "medication_id", req.GetMedicationId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "medication_id must be a UUID")
	}

	from, to, err := parseDateRange(req.GetFromDate(), req.GetToDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logs, err := s.meds.ListLogs(ctx, medicationID, from, to)
	if err != nil {
		s.logger.Error("failed to list intake log", "medication_id", medicationID, "error", err)
		return nil, status.Errorf(codes.Internal, "list intake log: %v", err)
	}

	out := make([]*v1.MedicationLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, utils.ToPBMedicationLog(l))
	}
	return &v1.ListIntakeLogResponse{Entries: out}, nil
}
