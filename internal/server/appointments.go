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

type AppointmentsServer struct {
	v1.UnimplementedAppointmentsServiceServer
	appts  repository.AppointmentRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewAppointmentsServer(appts repository.AppointmentRepository, users repository.UserRepository, logger *slog.Logger) *AppointmentsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentsServer{appts: appts, users: users, logger: logger}
}

func (s *AppointmentsServer) ScheduleAppointment(ctx context.Context, req *v1.ScheduleAppointmentRequest) (*v1.ScheduleAppointmentResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for schedule appointment", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	title := strings.TrimSpace(req.GetTitle())
	if title == "" {
		s.logger.Error("schedule appointment request missing title", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "title is required")
	}
	when, err := time.Parse(time.RFC3339, strings.TrimSpace(req.GetAppointmentDate()))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "appointment_date must be RFC3339")
	}
	if exists, _ := s.users.Exists(ctx, userID); !exists {
		s.logger.Error("user not found for schedule appointment", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "user not found")
	}

	a, err := s.appts.Create(ctx, &repository.Appointment{
		UserID:          userID,
		Title:           title,
		DoctorName:      optStr(req.GetDoctorName()),
		HospitalName:    optStr(req.GetHospitalName()),
		AppointmentDate: when,
		DurationMinutes: optInt(req.GetDurationMinutes()),
		Type:            optStr(req.GetType()),
		ReminderEnabled: req.GetReminderEnabled(),
		Notes:           optStr(req.GetNotes()),
	})
	if err != nil {
		s.logger.Error("failed to create appointment", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "create appointment: %v", err)
	}
	s.logger.Info("appointment scheduled successfully", "user_id", userID, "appointment_id", a.ID, "title", a.Title)

	return &v1.ScheduleAppointmentResponse{Appointment: utils.ToPBAppointment(a)}, nil
}

func (s *AppointmentsServer) ListAppointments(ctx context.Context, req *v1.ListAppointmentsRequest) (*v1.ListAppointmentsResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for list appointments", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	from, to, err := parseDateRange(req.GetFromDate(), req.GetToDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	appts, err := s.appts.ListByUser(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("failed to list appointments", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "list appointments: %v", err)
	}

	out := make([]*v1.Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, utils.ToPBAppointment(a))
	}
	return &v1.ListAppointmentsResponse{Appointments: out}, nil
}

func (s *AppointmentsServer) CancelAppointment(ctx context.Context, req *v1.CancelAppointmentRequest) (*v1.CancelAppointmentResponse, error) {
	appointmentID, err := uuid.Parse(strings.TrimSpace(req.GetAppointmentId()))
	if err != nil {
		s.logger.Error("invalid appointment_id format for cancel", "appointment_id", req.GetAppointmentId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}

	cancelled := "cancelled"
	a, err := s.appts.Update(ctx, appointmentID, &repository.AppointmentUpdate{Status: &cancelled})
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "appointment not found")
		}
		s.logger.Error("failed to cancel appointment", "appointment_id", appointmentID, "error", err)
		return nil, status.Errorf(codes.Internal, "cancel appointment: %v", err)
	}
	s.logger.Info("appointment cancelled successfully", "appointment_id", appointmentID)

	return &v1.CancelAppointmentResponse{Appointment: utils.ToPBAppointment(a)}, nil
}
