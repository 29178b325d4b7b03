package server

import (
	"context"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/export"
)

type ExportServer struct {
	v1.UnimplementedExportServiceServer
	svc    *export.Service
	logger *slog.Logger
}

func NewExportServer(svc *export.Service, logger *slog.Logger) *ExportServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportServer{svc: svc, logger: logger}
}

// ExportHealthData builds an xlsx workbook with the user's medications,
// measurements and lab results and returns it as raw bytes.
func (s *ExportServer) ExportHealthData(ctx context.Context, req *v1.ExportHealthDataRequest) (*v1.ExportHealthDataResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for export", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	from, to, err := parseDateRange(req.GetFromDate(), req.GetToDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Info("starting health data export", "user_id", userID)
	data, err := s.svc.ExportHealthXLSX(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("failed to export health data", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "export health data: %v", err)
	}
	s.logger.Info("health data export completed", "user_id", userID, "bytes", len(data))

	return &v1.ExportHealthDataResponse{Data: data}, nil
}
