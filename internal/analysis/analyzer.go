package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
)

// TextExtractor recovers text from a document on disk.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (entity.ExtractionResult, error)
}

// Classifier assigns a document category from extracted text.
type Classifier interface {
	Classify(text string) constants.Category
}

// FieldExtractor pulls category-dependent structured values from text.
type FieldExtractor interface {
	Extract(text string, category constants.Category) entity.StructuredFields
}

// Config for the analyzer.
type Config struct {
	MaxFileSize int64 // bytes, default 50 MB
}

// Analyzer runs the document pipeline: detect, extract, classify, pull
// structured fields, summarize. It owns the sequencing and the degradation
// policy; the individual stages are injected.
type Analyzer struct {
	cfg        Config
	extractor  TextExtractor
	classifier Classifier
	fields     FieldExtractor
	summarizer summarize.Summarizer
	logger     *slog.Logger
}

func NewAnalyzer(cfg Config, extractor TextExtractor, classifier Classifier, fields FieldExtractor, summarizer summarize.Summarizer, logger *slog.Logger) *Analyzer {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = constants.DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:        cfg,
		extractor:  extractor,
		classifier: classifier,
		fields:     fields,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Analyze runs the full pipeline on one document and always returns a result,
// never an error. Fatal stages (unknown extension, oversized file, corrupt
// source) set res.Err and stop early; a missing OCR engine or summarizer
// degrades into warnings and the pipeline carries on. Panics anywhere in the
// stages are converted into an INTERNAL error on the result.
func (a *Analyzer) Analyze(ctx context.Context, path string, userID uuid.UUID) (res *entity.AnalysisResult) {
	start := time.Now()
	res = &entity.AnalysisResult{
		UserID: userID,
		Source: entity.SourceDocument{
			Path:     path,
			Filename: filepath.Base(path),
		},
		Category: constants.General,
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis panic",
				"path", path,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			res.Err = &entity.AnalysisError{Code: entity.ErrCodeInternal, Message: fmt.Sprint(r)}
		}
		res.Duration = time.Since(start)
		a.logger.Info("analysis finished",
			"path", path,
			"user_id", userID,
			"category", res.Category,
			"confidence", res.Extraction.Confidence,
			"fields", res.Fields.Count(),
			"status", res.Status(),
			"duration_ms", res.Duration.Milliseconds(),
		)
	}()

	// Detect. Rejected extensions never reach the filesystem.
	res.Source.Format = constants.DetectFormat(path)
	if res.Source.Format == constants.FormatUnknown {
		res.Err = &entity.AnalysisError{
			Code:    entity.ErrCodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)),
		}
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = &entity.AnalysisError{
			Code:    entity.ErrCodeExtractionFailed,
			Message: fmt.Sprintf("stat source file: %v", err),
		}
		return res
	}
	res.Source.SizeBytes = info.Size()
	if info.Size() > a.cfg.MaxFileSize {
		res.Err = &entity.AnalysisError{
			Code:    entity.ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), a.cfg.MaxFileSize),
		}
		return res
	}

	// Extract. A missing external tool degrades; anything else is fatal.
	extraction, err := a.extractor.Extract(ctx, path)
	switch {
	case err == nil:
		res.Extraction = extraction
		res.Warnings = append(res.Warnings, extraction.Warnings...)
	case errors.Is(err, common.ErrDependencyUnavailable):
		a.logger.Warn("extraction degraded, continuing without text", "path", path, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("text extraction unavailable: %v", err))
	default:
		res.Err = &entity.AnalysisError{Code: entity.ErrCodeExtractionFailed, Message: err.Error()}
		return res
	}

	// Classify and pull fields. Both are pure text functions; empty text
	// yields General and an empty field set.
	res.Category = a.classifier.Classify(res.Extraction.Text)
	res.Fields = a.fields.Extract(res.Extraction.Text, res.Category)

	// Summarize. The composite summarizer falls back internally; an error
	// here still only costs us the summary.
	sum, err := a.summarizer.Summarize(ctx, summarize.SummaryRequest{
		Text:     res.Extraction.Text,
		Category: res.Category,
		Fields:   res.Fields,
		Filename: res.Source.Filename,
	})
	if err != nil {
		a.logger.Warn("summarizer failed, result carries no summary", "path", path, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("summary unavailable: %v", err))
		return res
	}
	res.Summary = sum.Summary
	res.Recommendations = sum.Recommendations
	res.SummarySource = sum.Source
	res.Warnings = append(res.Warnings, sum.Warnings...)

	return res
}
