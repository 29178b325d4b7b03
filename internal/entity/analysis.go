package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
)

// SourceDocument identifies the file an analysis ran against.
type SourceDocument struct {
	Path      string               `json:"path"`
	Filename  string               `json:"filename"`
	Format    constants.FileFormat `json:"format"`
	SizeBytes int64                `json:"size_bytes"`
}

// ExtractionResult is the raw text recovered from a document together with a
// reliability score in [0,1]. Extractor names the backend that produced the
// text (PDF, DOCX, TEXT or OCR).
type ExtractionResult struct {
	Text       string   `json:"text"`
	Confidence float32  `json:"confidence"`
	Extractor  string   `json:"extractor,omitempty"`
	Pages      int      `json:"pages,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// LabValue is a single test result parsed out of a lab or blood report.
type LabValue struct {
	Test     string   `json:"test"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit,omitempty"`
	RefLow   *float64 `json:"ref_low,omitempty"`
	RefHigh  *float64 `json:"ref_high,omitempty"`
	Abnormal *bool    `json:"abnormal,omitempty"`
}

// MedicationEntry is a single drug mention parsed out of a prescription.
type MedicationEntry struct {
	Name      string  `json:"name"`
	Dosage    float64 `json:"dosage"`
	Unit      string  `json:"unit"`
	Frequency string  `json:"frequency,omitempty"`
	Route     string  `json:"route,omitempty"`
}

// StructuredFields holds the category-dependent values pulled from document
// text. Every member is optional; the zero value means nothing was found.
type StructuredFields struct {
	HeartRate   *int              `json:"heart_rate,omitempty"`
	PRInterval  *int              `json:"pr_interval,omitempty"`
	QRSDuration *int              `json:"qrs_duration,omitempty"`
	QTInterval  *int              `json:"qt_interval,omitempty"`
	Rhythm      string            `json:"rhythm,omitempty"`
	LabValues   []LabValue        `json:"lab_values,omitempty"`
	Medications []MedicationEntry `json:"medications,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

// Count reports how many individual values were extracted. Tags are
// descriptive rather than extracted, so they do not count.
func (f StructuredFields) Count() int {
	n := 0
	for _, p := range []*int{f.HeartRate, f.PRInterval, f.QRSDuration, f.QTInterval} {
		if p != nil {
			n++
		}
	}
	if f.Rhythm != "" {
		n++
	}
	n += len(f.LabValues)
	n += len(f.Medications)
	return n
}

// IsEmpty reports whether no values were extracted at all.
func (f StructuredFields) IsEmpty() bool {
	return f.Count() == 0 && len(f.Tags) == 0
}

// AbnormalCount reports how many lab values fell outside their reference
// range.
func (f StructuredFields) AbnormalCount() int {
	n := 0
	for _, lv := range f.LabValues {
		if lv.Abnormal != nil && *lv.Abnormal {
			n++
		}
	}
	return n
}

// Terminal error codes carried on AnalysisResult.Err.
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeInternal          = "INTERNAL"
)

// AnalysisError describes a terminal pipeline failure. It is carried on the
// result rather than returned so callers always receive whatever partial
// output the pipeline produced.
type AnalysisError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AnalysisError) Error() string {
	return e.Code + ": " + e.Message
}

// AnalysisResult is the full outcome of analyzing one document.
type AnalysisResult struct {
	UserID          uuid.UUID          `json:"user_id"`
	Source          SourceDocument     `json:"source"`
	Extraction      ExtractionResult   `json:"extraction"`
	Category        constants.Category `json:"category"`
	Fields          StructuredFields   `json:"fields"`
	Summary         string             `json:"ai_summary,omitempty"`
	Recommendations []string           `json:"ai_recommendations,omitempty"`
	SummarySource   string             `json:"summary_source,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	Err             *AnalysisError     `json:"error,omitempty"`
	Duration        time.Duration      `json:"-"`
}

// Failed reports whether the pipeline ended in a terminal error.
func (r *AnalysisResult) Failed() bool {
	return r.Err != nil
}

// Status maps the result onto the persisted row status.
func (r *AnalysisResult) Status() constants.AnalysisStatus {
	switch {
	case r.Err != nil:
		return constants.AnalysisFailed
	case len(r.Warnings) > 0:
		return constants.AnalysisDegraded
	default:
		return constants.AnalysisCompleted
	}
}
