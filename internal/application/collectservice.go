// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
	"github.com/ericfisherdev/nightwatch/internal/domain/port/driven"
	"github.com/ericfisherdev/nightwatch/internal/telemetry"
)

// CollectService orchestrates one collection pass: discover recent runs,
// select target jobs, fetch and normalize their logs, extract the throughput
// metric, and persist everything through the archive and ledger ports.
type CollectService struct {
	provider  driven.ActionsProvider
	archive   driven.LogArchive
	ledger    driven.ResultLedger
	publisher driven.ResultPublisher // nil when publishing is disabled
	repo      string
	workflow  string
	keywords  []string
	runLimit  int
}

// NewCollectService creates a new CollectService with all required
// dependencies. publisher may be nil, in which case collected artifacts stay
// local.
func NewCollectService(
	provider driven.ActionsProvider,
	archive driven.LogArchive,
	ledger driven.ResultLedger,
	publisher driven.ResultPublisher,
	repo string,
	workflow string,
	keywords []string,
	runLimit int,
) *CollectService {
	return &CollectService{
		provider:  provider,
		archive:   archive,
		ledger:    ledger,
		publisher: publisher,
		repo:      repo,
		workflow:  workflow,
		keywords:  keywords,
		runLimit:  runLimit,
	}
}

// passStats accumulates counters for one collection pass.
type passStats struct {
	matched      int
	archived     int
	archiveSkips int
	recorded     int
	duplicates   int
	errors       int
}

// Collect runs a single pass over the most recent runs. Provider failures are
// isolated per step: a run or job that cannot be read is logged and skipped,
// never aborting the rest of the pass. The only error Collect itself returns
// is context cancellation.
func (s *CollectService) Collect(ctx context.Context) error {
	start := time.Now()
	slog.Info("collection pass starting",
		"repo", s.repo,
		"workflow", s.workflow,
		"keywords", s.keywords,
		"runs", s.runLimit,
	)

	runs, err := s.provider.ListRecentRuns(ctx, s.runLimit)
	if err != nil {
		telemetry.ProviderFailures.Inc()
		slog.Error("list runs failed", "repo", s.repo, "workflow", s.workflow, "error", err)
		runs = nil
	}
	if len(runs) == 0 {
		slog.Info("no scheduled runs found", "repo", s.repo, "workflow", s.workflow)
	}

	var stats passStats
	for _, run := range runs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.collectRun(ctx, run, &stats)
	}

	telemetry.PassesCompleted.Inc()
	telemetry.LastPassUnix.SetToCurrentTime()
	slog.Info("collection pass complete",
		"runs", len(runs),
		"jobs_matched", stats.matched,
		"logs_archived", stats.archived,
		"archive_skips", stats.archiveSkips,
		"results_added", stats.recorded,
		"duplicates", stats.duplicates,
		"errors", stats.errors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	s.publish(ctx)
	return nil
}

// Watch runs an immediate collection pass, then one per interval tick. It
// blocks until the context is canceled.
func (s *CollectService) Watch(ctx context.Context, interval time.Duration) {
	if err := s.Collect(ctx); err != nil {
		slog.Error("initial collection pass failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return
		case <-ticker.C:
			if err := s.Collect(ctx); err != nil {
				slog.Error("collection pass failed", "error", err)
			}
		}
	}
}

// collectRun processes the target jobs of a single run.
func (s *CollectService) collectRun(ctx context.Context, run model.WorkflowRun, stats *passStats) {
	telemetry.RunsScanned.Inc()
	slog.Info("inspecting run",
		"run_id", run.ID,
		"number", run.Number,
		"date", run.Date(),
		"conclusion", run.Conclusion.String(),
	)

	jobs, err := s.provider.ListJobs(ctx, run.ID)
	if err != nil {
		telemetry.ProviderFailures.Inc()
		stats.errors++
		slog.Error("list jobs failed", "run_id", run.ID, "error", err)
		return
	}

	matches := SelectTargetJobs(jobs, s.keywords)
	if len(matches) == 0 {
		slog.Info("no target jobs in run", "run_id", run.ID, "jobs", len(jobs))
		return
	}

	for _, m := range matches {
		s.collectJob(ctx, run, m, stats)
	}
}

// collectJob fetches, normalizes, archives, and records one matched job. A
// failed log fetch degrades to an empty body so the archive entry and ledger
// row still record that the job ran.
func (s *CollectService) collectJob(ctx context.Context, run model.WorkflowRun, m Match, stats *passStats) {
	telemetry.JobsMatched.Inc()
	stats.matched++
	slog.Info("target job found",
		"run_id", run.ID,
		"job_id", m.Job.ID,
		"job", m.Job.Name,
		"keyword", m.Keyword,
		"conclusion", m.Job.Conclusion.String(),
	)

	raw, err := s.provider.FetchJobLog(ctx, run.ID, m.Job.ID)
	if err != nil {
		telemetry.ProviderFailures.Inc()
		stats.errors++
		slog.Error("fetch job log failed", "run_id", run.ID, "job_id", m.Job.ID, "error", err)
		raw = ""
	}

	body := NormalizeLog(raw)
	throughput := ExtractThroughput(body)
	if throughput != nil {
		slog.Info("throughput extracted",
			"job_id", m.Job.ID,
			"keyword", m.Keyword,
			"token_per_s", *throughput,
		)
	}

	path, created, err := s.archive.Store(ctx, run, m.Job, m.Keyword, body)
	switch {
	case err != nil:
		stats.errors++
		slog.Error("archive write failed", "run_id", run.ID, "job_id", m.Job.ID, "error", err)
	case created:
		telemetry.LogsArchived.Inc()
		stats.archived++
		slog.Info("log archived", "path", path)
	default:
		telemetry.ArchiveSkips.Inc()
		stats.archiveSkips++
		slog.Info("log already archived", "path", path)
	}

	added, err := s.ledger.Append(ctx, m.Keyword, model.Result{
		RunStartedAt: run.CreatedAt,
		Conclusion:   m.Job.Conclusion,
		CommitSHA:    run.HeadSHA,
		JobID:        m.Job.ID,
		Throughput:   throughput,
	})
	switch {
	case err != nil:
		stats.errors++
		slog.Error("ledger append failed", "keyword", m.Keyword, "job_id", m.Job.ID, "error", err)
	case added:
		telemetry.ResultsRecorded.Inc()
		stats.recorded++
		slog.Info("result recorded", "keyword", m.Keyword, "job_id", m.Job.ID)
	default:
		telemetry.DuplicateResults.Inc()
		stats.duplicates++
		slog.Info("result already recorded, skipping", "keyword", m.Keyword, "job_id", m.Job.ID)
	}
}

// publish hands the accumulated changes to the publisher, if one is wired. A
// clean tree is normal on passes that found nothing new.
func (s *CollectService) publish(ctx context.Context) {
	if s.publisher == nil {
		return
	}

	message := "track ci data " + time.Now().UTC().Format("2006-01-02 15:04:05")
	committed, err := s.publisher.Publish(ctx, message)
	switch {
	case err != nil:
		slog.Error("publish failed", "error", err)
	case committed:
		slog.Info("results published")
	default:
		slog.Info("no changes to publish")
	}
}
