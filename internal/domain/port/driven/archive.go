package driven

import (
	"context"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

// LogArchive defines the driven port for write-once persistence of normalized
// job logs.
type LogArchive interface {
	// Store writes the normalized log body for one target job. The entry is
	// keyed by run date, commit, keyword and job ID; if it already exists the
	// call is a no-op and created is false. The returned path identifies the
	// entry either way.
	Store(ctx context.Context, run model.WorkflowRun, job model.Job, keyword, body string) (path string, created bool, err error)
}
