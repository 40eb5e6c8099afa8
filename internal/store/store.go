package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/articflow/agentlink/internal/model"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = eris.New("store: job not found")

// defaultListLimit caps ListJobs when the filter sets no limit.
const defaultListLimit = 100

// Store persists report jobs and their results.
type Store interface {
	CreateJob(ctx context.Context, kind model.JobKind, suburb string, request json.RawMessage) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	UpdateJobStatus(ctx context.Context, id string, status model.JobStatus) error
	CompleteJob(ctx context.Context, id string, result json.RawMessage) error
	FailJob(ctx context.Context, id string, reason string) error
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	// DeleteJobsBefore removes finished jobs last updated before cutoff.
	DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

func listLimit(f model.JobFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

func nullableJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
