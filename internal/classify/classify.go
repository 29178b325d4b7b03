package classify

import (
	"log/slog"
	"strings"

	"github.com/anudeep227/personal-health-manager/constants"
)

// markers are the keyword sets matched against lowercased document text.
// A marker hit is every occurrence of the marker, not just its presence, so
// a report mentioning glucose five times outweighs a passing ECG reference.
var markers = map[constants.Category][]string{
	constants.ECG: {
		"electrocardiogram", "ecg", "ekg", "heart rhythm", "cardiac", "heart rate",
	},
	constants.LabReport: {
		"blood", "hemoglobin", "glucose", "cholesterol", "cbc",
		"laboratory", "lab results", "reference range", "normal",
	},
	constants.Prescription: {
		"rx", "prescription", "medication", "dosage", "mg",
	},
	constants.Radiology: {
		"x-ray", "ct scan", "mri", "ultrasound", "radiology",
	},
}

// Classifier assigns a document category by counting keyword markers in the
// extracted text. Deterministic: equal totals resolve by CategoryPriority.
type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify returns the best-matching category for text. Text with no marker
// hits, including empty text, is General.
func (c *Classifier) Classify(text string) constants.Category {
	if text == "" {
		return constants.General
	}

	lower := strings.ToLower(text)
	best := constants.General
	bestHits := 0
	for _, cat := range constants.CategoryPriority {
		hits := 0
		for _, m := range markers[cat] {
			hits += strings.Count(lower, m)
		}
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}

	c.logger.Debug("document classified", "category", best, "marker_hits", bestHits)
	return best
}
