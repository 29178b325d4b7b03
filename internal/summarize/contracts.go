package summarize

import (
	"context"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// RuleBasedSource marks summaries produced without the language model.
const RuleBasedSource = "rule-based"

// SummaryRequest carries the extracted document content a summarizer works
// from. Fields lets the rule-based path build a summary without re-parsing.
type SummaryRequest struct {
	Text     string
	Category constants.Category
	Fields   entity.StructuredFields
	Filename string
}

// SummaryResult is a plain-language narrative plus ordered recommendations.
// Source names the producer: a model name, or RuleBasedSource.
type SummaryResult struct {
	Summary         string
	Recommendations []string
	Source          string
	Warnings        []string
}

// Summarizer produces a patient-readable summary for an analyzed document.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (SummaryResult, error)
}
