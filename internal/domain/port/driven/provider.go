package driven

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

// ActionsProvider defines the driven port for reading workflow run data out of
// GitHub Actions. Implementations exist for the gh CLI and for the REST API;
// both return the same domain shapes so the collection pipeline never knows
// which one it is talking to.
type ActionsProvider interface {
	// ListRecentRuns returns up to limit scheduled runs of the watched
	// workflow, newest first.
	ListRecentRuns(ctx context.Context, limit int) ([]model.WorkflowRun, error)
	// ListJobs returns every job of the given run. A run the provider no
	// longer knows about yields an empty slice, not an error.
	ListJobs(ctx context.Context, runID int64) ([]model.Job, error)
	// FetchJobLog returns the raw log text of a single job. Jobs that
	// produced no output yield the empty string.
	FetchJobLog(ctx context.Context, runID, jobID int64) (string, error)
}

// QueryError wraps a provider failure with the operation that produced it, so
// callers can log which step of a collection pass broke without unpacking the
// underlying transport error.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("provider query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
