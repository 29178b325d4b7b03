package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// Extractor names reported on entity.ExtractionResult.
const (
	ExtractorPDF    = "PDF"
	ExtractorPDFOCR = "PDF_OCR"
	ExtractorDOCX   = "DOCX"
	ExtractorText   = "TEXT"
	ExtractorOCR    = "OCR"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Extractor turns a supported document file into plain text plus a
// confidence score. Digital formats (PDF text layer, DOCX, TXT) score 1.0;
// OCR output scores strictly below 1.0.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (entity.ExtractionResult, error) {
	start := time.Now()
	format := constants.DetectFormat(path)
	e.logger.Debug("starting text extraction", "path", path, "format", format)

	var res entity.ExtractionResult
	var err error
	switch format {
	case constants.FormatPDF:
		res, err = e.extractPDF(ctx, path)
	case constants.FormatDOCX:
		res, err = e.extractDOCX(path)
	case constants.FormatText:
		res, err = e.extractText(path)
	case constants.FormatImage:
		res, err = e.extractImage(ctx, path)
	default:
		e.logger.Error("unsupported extension", "path", path)
		return entity.ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err == nil && res.Text == "" {
		res.Confidence = 0
		res.Warnings = append(res.Warnings, "no text content found")
	}
	e.logger.Info("text extraction finished",
		"path", path,
		"extractor", res.Extractor,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err)
	return res, err
}
