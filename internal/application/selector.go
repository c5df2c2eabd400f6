package application

import (
	"strings"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

// Match pairs a workflow job with the keyword that selected it.
type Match struct {
	Job     model.Job
	Keyword string
}

// SelectTargetJobs filters jobs down to the ones worth collecting. A job
// matches when its name contains a keyword as a substring; keywords are tried
// in configured order and the first hit wins, so every job maps to at most one
// keyword. Output preserves the input job order.
func SelectTargetJobs(jobs []model.Job, keywords []string) []Match {
	var matches []Match
	for _, job := range jobs {
		for _, kw := range keywords {
			if strings.Contains(job.Name, kw) {
				matches = append(matches, Match{Job: job, Keyword: kw})
				break
			}
		}
	}
	return matches
}
