package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

// Processor runs the analysis pipeline for a stored document and persists
// the outcome.
type Processor struct {
	logger   *slog.Logger
	analyzer *Analyzer
	repo     repository.AnalysisRepository
}

func NewProcessor(analyzer *Analyzer, repo repository.AnalysisRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		analyzer: analyzer,
		repo:     repo,
	}
}

// ProcessDocument loads a queued document row, marks it RUNNING, analyzes its
// source file, and stores the result. The pipeline itself always produces a
// result; an error here means the row could not be loaded or written back.
func (p *Processor) ProcessDocument(ctx context.Context, analysisID uuid.UUID) (*entity.DocumentAnalysis, error) {
	row, err := p.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	if err := p.repo.MarkRunning(ctx, row.ID); err != nil {
		return nil, fmt.Errorf("mark running: %w", err)
	}

	res := p.analyzer.Analyze(ctx, row.FilePath, row.UserID)

	stored, err := p.repo.StoreResult(ctx, row.ID, res)
	if err != nil {
		p.logger.Error("processor.store.failed", "analysis_id", row.ID, "err", err)
		return nil, fmt.Errorf("store result: %w", err)
	}

	p.logger.Debug("processor analysis stored",
		"analysis_id", stored.ID,
		"category", stored.Category,
		"status", stored.Status,
		"confidence", stored.Confidence,
	)
	return stored, nil
}
