package fields

import (
	"log/slog"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// Extractor pulls structured values out of raw document text. Extraction is
// pattern-based and best-effort: text that matches nothing yields an empty
// field set, never an error. Every extracted value is a substring of the
// input text.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract dispatches on category to the matching pattern set. Radiology and
// General documents get keyword tagging only, no numeric extraction.
func (e *Extractor) Extract(text string, category constants.Category) entity.StructuredFields {
	if text == "" {
		return entity.StructuredFields{}
	}

	var f entity.StructuredFields
	switch category {
	case constants.ECG:
		f = extractECG(text)
	case constants.LabReport:
		f = extractLab(text)
	case constants.Prescription:
		f = extractPrescription(text)
	case constants.Radiology:
		f = entity.StructuredFields{Tags: findKeywords(text, radiologyVocabulary)}
	default:
		f = entity.StructuredFields{Tags: findKeywords(text, generalVocabulary)}
	}

	e.logger.Debug("structured fields extracted",
		"category", category,
		"field_count", f.Count(),
		"tags", len(f.Tags))
	return f
}
