package model

import "time"

// Result is one ledger entry: the outcome of a single target job in a single
// workflow run.
type Result struct {
	RunStartedAt time.Time
	Conclusion   Conclusion
	CommitSHA    string
	JobID        int64

	// Throughput is the output token throughput in tokens per second parsed
	// from the job log, or nil when the log carried no benchmark summary.
	Throughput *float64
}
