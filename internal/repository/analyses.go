package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/gen/ent"
	"github.com/anudeep227/personal-health-manager/gen/ent/documentanalysis"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// Search scoring weights. A filename hit outranks a category hit outranks a
// body hit.
const (
	scoreFilename = 0.5
	scoreCategory = 0.3
	scoreContent  = 0.2
)

type AnalysisRepository interface {
	// EnqueueFile records an uploaded document as QUEUED, or returns the
	// existing row when the same content was already stored for this user.
	EnqueueFile(ctx context.Context, userID uuid.UUID, sourcePath, filename, ext string, size int64, hash []byte) (*entity.DocumentAnalysis, bool, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	StoreResult(ctx context.Context, id uuid.UUID, res *entity.AnalysisResult) (*entity.DocumentAnalysis, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentAnalysis, error)
	GetByUserAndHash(ctx context.Context, userID uuid.UUID, hash []byte) (*entity.DocumentAnalysis, error)
	ListByUser(ctx context.Context, userID uuid.UUID, category *constants.Category, limit int) ([]*entity.DocumentAnalysis, error)
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*entity.SearchHit, error)
	Stats(ctx context.Context, userID uuid.UUID) (*entity.AnalysisStats, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type analysisRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewAnalysisRepository(client *ent.Client, logger *slog.Logger) AnalysisRepository {
	return &analysisRepository{
		client: client,
		logger: logger,
	}
}

func (r *analysisRepository) EnqueueFile(ctx context.Context, userID uuid.UUID, sourcePath, filename, ext string, size int64, hash []byte) (*entity.DocumentAnalysis, bool, error) {
	if existing, err := r.GetByUserAndHash(ctx, userID, hash); err == nil {
		return existing, true, nil
	}

	row, err := r.client.DocumentAnalysis.Create().
		SetUserID(userID).
		SetFilePath(sourcePath).
		SetFilename(filename).
		SetFileExt(ext).
		SetFileSize(size).
		SetContentHash(hash).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to enqueue document", "user_id", userID, "source_path", sourcePath, "filename", filename, "error", err)
		return nil, false, err
	}
	return utils.ToDocumentAnalysis(row), false, nil
}

func (r *analysisRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	err := r.client.DocumentAnalysis.UpdateOneID(id).
		SetStatus(string(constants.AnalysisRunning)).
		Exec(ctx)
	if err != nil {
		r.logger.Error("failed to mark analysis running", "analysis_id", id, "error", err)
	}
	return err
}

// StoreResult writes the full pipeline outcome onto the queued row. Tags
// combine the fixed per-category set with keywords found in the text.
func (r *analysisRepository) StoreResult(ctx context.Context, id uuid.UUID, res *entity.AnalysisResult) (*entity.DocumentAnalysis, error) {
	fieldsJSON, err := json.Marshal(res.Fields)
	if err != nil {
		return nil, err
	}

	b := r.client.DocumentAnalysis.UpdateOneID(id).
		SetCategory(string(res.Category)).
		SetConfidence(res.Extraction.Confidence).
		SetFieldsJSON(fieldsJSON).
		SetTags(utils.MergeTags(utils.SystemTags(res.Category), res.Fields.Tags)).
		SetStatus(string(res.Status())).
		SetAnalyzedAt(time.Now())
	if res.Extraction.Extractor != "" {
		b.SetExtractor(res.Extraction.Extractor)
	}
	if res.Extraction.Text != "" {
		b.SetRawText(res.Extraction.Text)
	}
	if res.Summary != "" {
		b.SetSummary(res.Summary)
	}
	if len(res.Recommendations) > 0 {
		b.SetRecommendations(res.Recommendations)
	}
	if res.SummarySource != "" {
		b.SetSummarySource(res.SummarySource)
	}
	if len(res.Warnings) > 0 {
		b.SetWarnings(res.Warnings)
	}
	if res.Err != nil {
		b.SetErrorCode(res.Err.Code).SetErrorMessage(res.Err.Message)
	}

	row, err := b.Save(ctx)
	if err != nil {
		r.logger.Error("failed to store analysis result", "analysis_id", id, "error", err)
		return nil, err
	}
	return utils.ToDocumentAnalysis(row), nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentAnalysis, error) {
	row, err := r.client.DocumentAnalysis.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return utils.ToDocumentAnalysis(row), nil
}

func (r *analysisRepository) GetByUserAndHash(ctx context.Context, userID uuid.UUID, hash []byte) (*entity.DocumentAnalysis, error) {
	row, err := r.client.DocumentAnalysis.Query().
		Where(
			documentanalysis.UserID(userID),
			documentanalysis.ContentHash(hash),
		).Only(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ToDocumentAnalysis(row), nil
}

func (r *analysisRepository) ListByUser(ctx context.Context, userID uuid.UUID, category *constants.Category, limit int) ([]*entity.DocumentAnalysis, error) {
	q := r.client.DocumentAnalysis.Query().Where(documentanalysis.UserID(userID))
	if category != nil {
		q = q.Where(documentanalysis.Category(string(*category)))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	rows, err := q.Order(documentanalysis.ByCreatedAt(sql.OrderDesc())).All(ctx)
	if err != nil {
		r.logger.Error("failed to list analyses", "user_id", userID, "error", err)
		return nil, err
	}
	result := make([]*entity.DocumentAnalysis, len(rows))
	for i, row := range rows {
		result[i] = utils.ToDocumentAnalysis(row)
	}
	return result, nil
}

// Search matches the query against filename, category and extracted text,
// and ranks hits by where they matched.
func (r *analysisRepository) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*entity.SearchHit, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	rows, err := r.client.DocumentAnalysis.Query().
		Where(
			documentanalysis.UserID(userID),
			documentanalysis.Or(
				documentanalysis.FilenameContainsFold(q),
				documentanalysis.CategoryContainsFold(q),
				documentanalysis.RawTextContainsFold(q),
			),
		).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to search analyses", "user_id", userID, "query", q, "error", err)
		return nil, err
	}

	lower := strings.ToLower(q)
	hits := make([]*entity.SearchHit, 0, len(rows))
	for _, row := range rows {
		var score float64
		if strings.Contains(strings.ToLower(row.Filename), lower) {
			score += scoreFilename
		}
		if strings.Contains(strings.ToLower(row.Category), lower) {
			score += scoreCategory
		}
		if row.RawText != nil && strings.Contains(strings.ToLower(*row.RawText), lower) {
			score += scoreContent
		}
		hits = append(hits, &entity.SearchHit{Document: utils.ToDocumentAnalysis(row), Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (r *analysisRepository) Stats(ctx context.Context, userID uuid.UUID) (*entity.AnalysisStats, error) {
	stats := &entity.AnalysisStats{
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}

	var byCategory []struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	err := r.client.DocumentAnalysis.Query().
		Where(documentanalysis.UserID(userID)).
		GroupBy(documentanalysis.FieldCategory).
		Aggregate(ent.Count()).
		Scan(ctx, &byCategory)
	if err != nil {
		r.logger.Error("failed to aggregate analyses by category", "user_id", userID, "error", err)
		return nil, err
	}
	for _, g := range byCategory {
		stats.ByCategory[g.Category] = g.Count
		stats.Total += g.Count
	}

	var byStatus []struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	err = r.client.DocumentAnalysis.Query().
		Where(documentanalysis.UserID(userID)).
		GroupBy(documentanalysis.FieldStatus).
		Aggregate(ent.Count()).
		Scan(ctx, &byStatus)
	if err != nil {
		r.logger.Error("failed to aggregate analyses by status", "user_id", userID, "error", err)
		return nil, err
	}
	for _, g := range byStatus {
		stats.ByStatus[g.Status] = g.Count
	}

	if stats.Total > 0 {
		var totals []struct {
			AvgConfidence float64 `json:"avg_confidence"`
			TotalBytes    int64   `json:"total_bytes"`
		}
		err = r.client.DocumentAnalysis.Query().
			Where(documentanalysis.UserID(userID)).
			Aggregate(
				ent.As(ent.Mean(documentanalysis.FieldConfidence), "avg_confidence"),
				ent.As(ent.Sum(documentanalysis.FieldFileSize), "total_bytes"),
			).
			Scan(ctx, &totals)
		if err != nil {
			r.logger.Error("failed to aggregate analysis totals", "user_id", userID, "error", err)
			return nil, err
		}
		if len(totals) > 0 {
			stats.AvgConfidence = totals[0].AvgConfidence
			stats.TotalBytes = totals[0].TotalBytes
		}
	}

	last, err := r.client.DocumentAnalysis.Query().
		Where(documentanalysis.UserID(userID)).
		Order(documentanalysis.ByCreatedAt(sql.OrderDesc())).
		First(ctx)
	switch {
	case err == nil:
		stats.LastUploadAt = &last.CreatedAt
	case !ent.IsNotFound(err):
		return nil, err
	}
	return stats, nil
}

func (r *analysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.DocumentAnalysis.DeleteOneID(id).Exec(ctx); err != nil {
		r.logger.Error("failed to delete analysis", "analysis_id", id, "error", err)
		return err
	}
	return nil
}
