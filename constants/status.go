package constants

// AnalysisStatus is the canonical status for rows in document_analyses.
type AnalysisStatus string

// Stable values (store these exact strings in DB).
const (
	AnalysisQueued    AnalysisStatus = "QUEUED"    // waiting in the worker queue
	AnalysisRunning   AnalysisStatus = "RUNNING"   // pipeline in progress
	AnalysisCompleted AnalysisStatus = "COMPLETED" // full result stored
	AnalysisDegraded  AnalysisStatus = "DEGRADED"  // completed with non-fatal warnings
	AnalysisFailed    AnalysisStatus = "FAILED"    // terminal failure
)

// AnalysisStatuses lists every status value for schema validation.
var AnalysisStatuses = []string{
	string(AnalysisQueued),
	string(AnalysisRunning),
	string(AnalysisCompleted),
	string(AnalysisDegraded),
	string(AnalysisFailed),
}
