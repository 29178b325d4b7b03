package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anudeep227/personal-health-manager/constants"
)

// RuleBased builds a deterministic summary from the structured fields already
// extracted. It is the terminal safety net of the pipeline and never fails.
type RuleBased struct {
	logger *slog.Logger
}

func NewRuleBased(logger *slog.Logger) *RuleBased {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleBased{logger: logger}
}

func (r *RuleBased) Summarize(_ context.Context, req SummaryRequest) (SummaryResult, error) {
	f := req.Fields
	var summary string
	var recs []string

	switch req.Category {
	case constants.LabReport:
		n := len(f.LabValues)
		m := f.AbnormalCount()
		summary = fmt.Sprintf("Lab report processed. %d lab values found, %d outside reference range.", n, m)
		if m > 0 {
			recs = append(recs, "Discuss the flagged values with your healthcare provider.")
		}
		recs = append(recs, "Review results with your healthcare provider.")
	case constants.ECG:
		summary = fmt.Sprintf("ECG report processed. %d measurements extracted.", f.Count())
		if f.HeartRate != nil {
			summary += fmt.Sprintf(" Heart rate %d bpm.", *f.HeartRate)
		}
		if f.Rhythm != "" {
			summary += fmt.Sprintf(" Rhythm: %s.", f.Rhythm)
		}
		recs = append(recs, "Professional interpretation recommended.")
	case constants.Prescription:
		summary = fmt.Sprintf("Prescription processed. %d medications identified.", len(f.Medications))
		recs = append(recs, "Follow your doctor's instructions exactly.")
	case constants.Radiology:
		summary = fmt.Sprintf("Radiology report processed. %d keywords tagged.", len(f.Tags))
		recs = append(recs, "Review imaging results with your doctor.")
	default:
		summary = fmt.Sprintf("Medical document processed. %d structured values found.", f.Count()+len(f.Tags))
		recs = append(recs, "Consult your healthcare provider with any questions.")
	}

	r.logger.Debug("rule-based summary built", "category", req.Category, "field_count", f.Count())
	return SummaryResult{
		Summary:         summary,
		Recommendations: recs,
		Source:          RuleBasedSource,
	}, nil
}
