package driven

import (
	"context"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

// ResultLedger defines the driven port for the per-keyword history of run
// results.
type ResultLedger interface {
	// Append records one result under the given keyword. Results are
	// deduplicated by job ID; appending a job that is already recorded is a
	// no-op and added is false.
	Append(ctx context.Context, keyword string, res model.Result) (added bool, err error)
}
