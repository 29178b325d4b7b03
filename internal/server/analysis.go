package server

import (
	"context"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/gen/ent"
	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
	"github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

const defaultListLimit = 50

type AnalysisServer struct {
	v1.UnimplementedAnalysisServiceServer
	ingestor ingest.Ingestor
	proc     *analysis.Processor
	analyses repository.AnalysisRepository
	logger   *slog.Logger
}

func NewAnalysisServer(ing ingest.Ingestor, proc *analysis.Processor, analyses repository.AnalysisRepository, logger *slog.Logger) *AnalysisServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisServer{
		ingestor: ing,
		proc:     proc,
		analyses: analyses,
		logger:   logger,
	}
}

// AnalyzeDocument registers the file and runs the pipeline synchronously.
// Degraded outcomes still return the stored analysis; only infrastructure
// failures surface as errors.
func (s *AnalysisServer) AnalyzeDocument(ctx context.Context, req *v1.AnalyzeDocumentRequest) (*v1.AnalyzeDocumentResponse, error) {
	uid := strings.TrimSpace(req.GetUserId())
	if uid == "" {
		s.logger.Error("analyze request missing user_id")
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	userID, err := uuid.Parse(uid)
	if err != nil {
		s.logger.Error("invalid user_id format for analyze", "user_id", uid, "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	path := strings.TrimSpace(req.GetPath())
	if path == "" {
		s.logger.Error("analyze request missing path", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}

	s.logger.Info("starting document analysis", "user_id", userID, "path", path)
	r, err := s.ingestor.IngestPath(ctx, userID, path)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "ingest: %v", err)
	}
	analysisID, err := uuid.Parse(r.AnalysisID)
	if err != nil {
		s.logger.Error("ingest returned malformed analysis id", "analysis_id", r.AnalysisID, "error", err)
		return nil, status.Errorf(codes.Internal, "analysis id: %v", err)
	}

	row, err := s.proc.ProcessDocument(ctx, analysisID)
	if err != nil {
		s.logger.Error("analysis.failed", "analysis_id", analysisID, "err", err)
		return nil, status.Errorf(codes.Internal, "analyze: %v", err)
	}
	s.logger.Info("document analysis completed", "analysis_id", analysisID, "category", row.Category, "status", row.Status)

	return &v1.AnalyzeDocumentResponse{Analysis: utils.ToPBAnalysis(row)}, nil
}

func (s *AnalysisServer) GetAnalysis(ctx context.Context, req *v1.GetAnalysisRequest) (*v1.GetAnalysisResponse, error) {
	aid := strings.TrimSpace(req.GetAnalysisId())
	if aid == "" {
		s.logger.Error("get analysis request missing analysis_id")
		return nil, status.Error(codes.InvalidArgument, "analysis_id is required")
	}
	analysisID, err := uuid.Parse(aid)
	if err != nil {
		s.logger.Error("invalid analysis_id format", "analysis_id", aid, "error", err)
		return nil, status.Error(codes.InvalidArgument, "analysis_id must be a UUID")
	}

	row, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "analysis not found")
		}
		s.logger.Error("failed to get analysis", "analysis_id", analysisID, "error", err)
		return nil, status.Errorf(codes.Internal, "get analysis: %v", err)
	}

	return &v1.GetAnalysisResponse{Analysis: utils.ToPBAnalysis(row)}, nil
}

func (s *AnalysisServer) ListAnalyses(ctx context.Context, req *v1.ListAnalysesRequest) (*v1.ListAnalysesResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for list analyses", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	var category *constants.Category
	if c := strings.TrimSpace(req.GetCategory()); c != "" {
		cat, ok := constants.Canonicalize(c)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown category %q", c)
		}
		category = &cat
	}

	limit := int(req.GetLimit())
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.analyses.ListByUser(ctx, userID, category, limit)
	if err != nil {
		s.logger.Error("failed to list analyses", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "list analyses: %v", err)
	}
	s.logger.Info("analyses listed successfully", "user_id", userID, "count", len(rows))

	out := make([]*v1.DocumentAnalysis, 0, len(rows))
	for _, row := range rows {
		out = append(out, utils.ToPBAnalysis(row))
	}
	return &v1.ListAnalysesResponse{Analyses: out}, nil
}

func (s *AnalysisServer) SearchAnalyses(ctx context.Context, req *v1.SearchAnalysesRequest) (*v1.SearchAnalysesResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for search", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}
	query := strings.TrimSpace(req.GetQuery())
	if query == "" {
		s.logger.Error("search request missing query", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "query is required")
	}

	var category *constants.Category
	if c := strings.TrimSpace(req.GetCategory()); c != "" {
		cat, ok := constants.Canonicalize(c)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown category %q", c)
		}
		category = &cat
	}

	limit := int(req.GetLimit())
	if limit <= 0 {
		limit = defaultListLimit
	}

	hits, err := s.analyses.Search(ctx, userID, query, limit)
	if err != nil {
		s.logger.Error("failed to search analyses", "user_id", userID, "query", query, "error", err)
		return nil, status.Errorf(codes.Internal, "search analyses: %v", err)
	}

	out := make([]*v1.SearchResult, 0, len(hits))
	for _, h := range hits {
		if category != nil && h.Document.Category != *category {
			continue
		}
		out = append(out, &v1.SearchResult{
			Document: utils.ToPBAnalysis(h.Document),
			Score:    h.Score,
		})
	}
	s.logger.Info("search completed", "user_id", userID, "query", query, "hits", len(out))

	return &v1.SearchAnalysesResponse{Results: out}, nil
}

func (s *AnalysisServer) GetDocumentStats(ctx context.Context, req *v1.GetDocumentStatsRequest) (*v1.GetDocumentStatsResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.GetUserId()))
	if err != nil {
		s.logger.Error("invalid user_id format for stats", "user_id", req.GetUserId(), "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	stats, err := s.analyses.Stats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to compute document stats", "user_id", userID, "error", err)
		return nil, status.Errorf(codes.Internal, "document stats: %v", err)
	}

	return utils.ToPBStats(stats), nil
}
