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

type UsersServer struct {
	v1.UnimplementedUsersServiceServer
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUsersServer(users repository.UserRepository, logger *slog.Logger) *UsersServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsersServer{users: users, logger: logger}
}

func (s *UsersServer) CreateUser(ctx context.Context, req *v1.CreateUserRequest) (*v1.CreateUserResponse, error) {
	firstName := strings.TrimSpace(req.GetFirstName())
	if firstName == "" {
		s.logger.Error("create user request missing first_name")
		return nil, status.Error(codes.InvalidArgument, "first_name is required")
	}

	var dob *time.Time
	if d := strings.TrimSpace(req.GetDateOfBirth()); d != "" {
		t, err := utils.ParseYMD(d)
		if err != nil {
			s.logger.Error("invalid date_of_birth format", "date_of_birth", d, "error", err)
			return nil, status.Error(codes.InvalidArgument, "date_of_birth must be YYYY-MM-DD")
		}
		dob = &t
	}

	u, err := s.users.Create(ctx, &repository.User{
		FirstName:         firstName,
		LastName:          strings.TrimSpace(req.GetLastName()),
		Email:             optStr(req.GetEmail()),
		Phone:             optStr(req.GetPhone()),
		DateOfBirth:       dob,
		Gender:            optStr(req.GetGender()),
		BloodGroup:        optStr(req.GetBloodGroup()),
		HeightCM:          optF64(req.GetHeightCm()),
		WeightKG:          optF64(req.GetWeightKg()),
		EmergencyContact:  optStr(req.GetEmergencyContact()),
		Allergies:         optStr(req.GetAllergies()),
		MedicalConditions: optStr(req.GetMedicalConditions()),
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, status.Errorf(codes.Internal, "create user: %v", err)
	}
	s.logger.Info("user created successfully", "user_id", u.ID)

	return &v1.CreateUserResponse{User: utils.ToPBUser(u)}, nil
}

func (s *UsersServer) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.GetUserResponse, error) {
	uid := strings.TrimSpace(req.GetUserId())
	if uid == "" {
		s.logger.Error("get user request missing user_id")
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	userID, err := uuid.Parse(uid)
	if err != nil {
		s.logger.Error("invalid user_id format", "user_id", uid, "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		s.logger.Error("failed to get user", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "get user: %v", err)
	}

	return &v1.GetUserResponse{User: utils.ToPBUser(u)}, nil
}

func (s *UsersServer) ListUsers(ctx context.Context, _ *v1.ListUsersRequest) (*v1.ListUsersResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, status.Errorf(codes.Internal, "list users: %v", err)
	}

	out := make([]*v1.User, 0, len(users))
	for _, u := range users {
		out = append(out, utils.ToPBUser(u))
	}
	return &v1.ListUsersResponse{Users: out}, nil
}
