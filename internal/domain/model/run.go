package model

import "time"

// WorkflowRun is one execution of the watched workflow.
type WorkflowRun struct {
	ID         int64
	Number     int
	CreatedAt  time.Time
	HeadSHA    string
	Conclusion Conclusion
}

// Date returns the UTC calendar day the run started, which keys the archive
// directory layout.
func (r WorkflowRun) Date() string {
	return r.CreatedAt.UTC().Format("2006-01-02")
}

// ShortSHA returns the head commit abbreviated to seven characters, or the
// empty string when the provider reported no commit at all.
func (r WorkflowRun) ShortSHA() string {
	if r.HeadSHA == "" {
		return ""
	}
	if len(r.HeadSHA) > 7 {
		return r.HeadSHA[:7]
	}
	return r.HeadSHA
}

// Job is a single job within a workflow run.
type Job struct {
	ID         int64
	Name       string
	Conclusion Conclusion
}
