package server

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

type RecordsServer struct {
	v1.UnimplementedRecordsServiceServer
	records repository.HealthRecordRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewRecordsServer(records repository.HealthRecordRepository, users repository.UserRepository, logger *slog.Logger) *RecordsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordsServer{records: records, users: users, logger: logger}
}

func (s *RecordsServer) AddHealthRecord(ctx context.Context, req *v1.AddHealthRecordRequest) (*v1.AddHealthRecordResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for add health record", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	recordType := strings.TrimSpace(req.GetRecordType())
	if recordType == "" {
		s.logger.Error("add health record request missing record_type", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "record_type is required")
	}
	value := strings.TrimSpace(req.GetValue())
	if value == "" {
		s.logger.Error("add health record request missing value", "user_id", userID, "record_type", recordType)
		return nil, status.Error(codes.InvalidArgument, "value is required")
	}
	if exists, _ := s.users.Exists(ctx, userID); !exists {
		s.logger.Error("user not found for add health record", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "user not found")
	}

	measured := time.Now()
	if ts := strings.TrimSpace(req.GetMeasuredDate()); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "measured_date must be RFC3339")
		}
		measured = t
	}

	rec, err := s.records.Create(ctx, &repository.HealthRecord{
		UserID:       userID,
		RecordType:   recordType,
		Value:        value,
		Unit:         optStr(req.GetUnit()),
		MeasuredDate: measured,
		Notes:        optStr(req.GetNotes()),
	})
	if err != nil {
		s.logger.Error("failed to create health record", "user_id", userID, "record_type", recordType, "error", err)
		return nil, status.Errorf(codes.Internal, "create health record: %v", err)
	}
	s.logger.Info("health record created successfully", "user_id", userID, "record_id", rec.ID, "record_type", recordType)

	return &v1.AddHealthRecordResponse{Record: utils.ToPBHealthRecord(rec)}, nil
}

func (s *RecordsServer) ListHealthRecords(ctx context.Context, req *v1.ListHealthRecordsRequest) (*v1.ListHealthRecordsResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for list health records", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	from, to, err := parseDateRange(req.GetFromDate(), req.GetToDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	recs, err := s.records.ListByUser(ctx, userID, strings.TrimSpace(req.GetRecordType()), from, to)
	if err != nil {
		s.logger.Error("failed to list health records", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "list health records: %v", err)
	}

	out := make([]*v1.HealthRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, utils.ToPBHealthRecord(r))
	}
	return &v1.ListHealthRecordsResponse{Records: out}, nil
}
