package ingest

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/async"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

// Service handles ingestion business logic.
type Service struct {
	ingestor Ingestor
	users    repository.UserRepository
	queue    async.Queue
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(ing Ingestor, users repository.UserRepository, q async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor: ing,
		users:    users,
		queue:    q,
		logger:   logger,
	}
}

// FileIngestRequest represents file ingestion parameters.
type FileIngestRequest struct {
	UserID         string
	Path           string
	SkipDuplicates bool
}

// DirectoryIngestRequest represents directory ingestion parameters.
type DirectoryIngestRequest struct {
	UserID         string
	RootPath       string
	SkipHidden     bool
	SkipDuplicates bool
}

// DirectoryIngestResult represents directory ingestion results.
type DirectoryIngestResult struct {
	Statistics DirStats
	Results    []IngestionResult
}

// IngestFile ingests a single file and queues it for analysis.
func (s *Service) IngestFile(ctx context.Context, req FileIngestRequest) (IngestionResult, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		s.logger.Error("invalid user_id format for ingest", "user_id", req.UserID, "error", err)
		return IngestionResult{}, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.logger.Error("ingest request missing path", "user_id", userID)
		return IngestionResult{}, status.Error(codes.InvalidArgument, "path is required")
	}

	s.logger.Info("starting file ingest", "user_id", userID, "path", path)
	r, err := s.ingestor.IngestPath(ctx, userID, path)
	if err != nil {
		return IngestionResult{}, status.Errorf(codes.InvalidArgument, "ingest: %v", err)
	}
	s.logger.Info("file ingest succeeded", "user_id", userID, "analysis_id", r.AnalysisID, "deduplicated", r.Deduplicated)

	if err := s.ProcessIngestedFile(ctx, &r, req.SkipDuplicates); err != nil {
		r.Err = err.Error()
	}
	return r, nil
}

// IngestDirectory ingests all files in a directory and queues them for analysis.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		s.logger.Error("invalid user_id format for ingest directory", "user_id", req.UserID, "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("ingest directory request missing root_path", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "root_path is required")
	}

	s.logger.Info("starting directory ingest", "user_id", userID, "root", root, "skip_hidden", req.SkipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, userID, root, req.SkipHidden)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "ingest directory: %v", err)
	}
	s.logger.Info("directory ingest completed", "user_id", userID, "scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	for idx := range results {
		if err := s.ProcessIngestedFile(ctx, &results[idx], req.SkipDuplicates); err != nil {
			s.logger.Error("enqueue failed for ingested file", "analysis_id", results[idx].AnalysisID, "err", err)
			results[idx].Err = err.Error()
		}
	}

	return &DirectoryIngestResult{
		Statistics: stats,
		Results:    results,
	}, nil
}

// ProcessIngestedFile queues an ingested file for analysis.
func (s *Service) ProcessIngestedFile(ctx context.Context, result *IngestionResult, skipDuplicates bool) error {
	if result.Err != "" || result.AnalysisID == "" {
		return nil
	}

	analysisID, err := uuid.Parse(result.AnalysisID)
	if err != nil {
		s.logger.Error("invalid analysis_id: cannot enqueue", "analysis_id", result.AnalysisID, "error", err)
		return status.Error(codes.InvalidArgument, "invalid analysis_id")
	}

	// A deduplicated row that never left QUEUED still needs a run.
	stillQueued := result.Status == string(constants.AnalysisQueued)
	if result.Deduplicated && skipDuplicates && !stillQueued {
		s.logger.Info("skipping processing (duplicate)", "analysis_id", result.AnalysisID, "path", result.SourcePath)
		return nil
	}

	if err := s.queue.Enqueue(ctx, async.Job{
		AnalysisID:  analysisID,
		Force:       !skipDuplicates && result.Deduplicated,
		SubmittedAt: time.Now(),
	}); err != nil {
		s.logger.Error("enqueue failed for file", "analysis_id", result.AnalysisID, "err", err)
		return status.Errorf(codes.Internal, "enqueue failed: %v", err)
	}

	return nil
}

// Watch ingests supported documents appearing under cfg.Roots until ctx is
// cancelled. Events and errors drain on their own goroutines.
func (s *Service) Watch(ctx context.Context, userID string, cfg WatchConfig) error {
	uid, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		s.logger.Error("invalid user_id format for watch", "user_id", userID, "error", err)
		return status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	if exists, err := s.users.Exists(ctx, uid); err != nil || !exists {
		s.logger.Error("user not found for watch", "user_id", uid, "error", err)
		return status.Error(codes.InvalidArgument, "user not found")
	}

	evCh, errCh, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}

	go func() {
		for path := range evCh {
			r, err := s.ingestor.IngestPath(ctx, uid, path)
			if err != nil {
				s.logger.Warn("watched file ingest failed", "path", path, "error", err)
				continue
			}
			s.logger.Info("watched file ingested", "path", path, "analysis_id", r.AnalysisID, "deduplicated", r.Deduplicated)
			if err := s.ProcessIngestedFile(ctx, &r, true); err != nil {
				s.logger.Warn("watched file enqueue failed", "path", path, "error", err)
			}
		}
	}()
	go func() {
		for err := range errCh {
			s.logger.Error("watcher error", "error", err)
		}
	}()

	s.logger.Info("watching for documents", "user_id", uid, "roots", cfg.Roots)
	return nil
}
