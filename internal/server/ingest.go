package server

import (
	"context"
	"time"

	"log/slog"

	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
)

type IngestionServer struct {
	v1.UnimplementedIngestionServiceServer
	svc    *ingest.Service
	logger *slog.Logger
}

func NewIngestionServer(svc *ingest.Service, logger *slog.Logger) *IngestionServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionServer{svc: svc, logger: logger}
}

// IngestFile registers one local document and queues it for analysis.
// Validation and dedup live in the ingest service; errors come back already
// carrying a status code.
func (s *IngestionServer) IngestFile(ctx context.Context, req *v1.IngestFileRequest) (*v1.IngestResponse, error) {
	r, err := s.svc.IngestFile(ctx, ingest.FileIngestRequest{
		UserID:         req.GetUserId(),
		Path:           req.GetPath(),
		SkipDuplicates: req.GetSkipDuplicates(),
	})
	if err != nil {
		return nil, err
	}
	return toPBIngest(r), nil
}

func (s *IngestionServer) IngestDirectory(ctx context.Context, req *v1.IngestDirectoryRequest) (*v1.IngestDirectoryResponse, error) {
	res, err := s.svc.IngestDirectory(ctx, ingest.DirectoryIngestRequest{
		UserID:         req.GetUserId(),
		RootPath:       req.GetRootPath(),
		SkipHidden:     !req.GetIncludeHidden(),
		SkipDuplicates: req.GetSkipDuplicates(),
	})
	if err != nil {
		return nil, err
	}

	out := &v1.IngestDirectoryResponse{
		Scanned:      res.Statistics.Scanned,
		Matched:      res.Statistics.Matched,
		Succeeded:    res.Statistics.Succeeded,
		Deduplicated: res.Statistics.Deduplicated,
		Failed:       res.Statistics.Failed,
		Results:      make([]*v1.IngestResponse, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		out.Results = append(out.Results, toPBIngest(r))
	}
	return out, nil
}

func toPBIngest(r ingest.IngestionResult) *v1.IngestResponse {
	uploaded := ""
	if !r.UploadedAt.IsZero() {
		uploaded = r.UploadedAt.UTC().Format(time.RFC3339)
	}
	return &v1.IngestResponse{
		AnalysisId:     r.AnalysisID,
		Deduplicated:   r.Deduplicated,
		ContentHashHex: r.HashHex,
		FileExt:        r.FileExt,
		UploadedAt:     uploaded,
		SourcePath:     r.SourcePath,
		Error:          r.Err,
	}
}
