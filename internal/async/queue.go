package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the smallest useful unit. Extend as needed later (retry, priority, etc).
type Job struct {
	AnalysisID  uuid.UUID
	Force       bool // enqueue even if deduplicated
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
