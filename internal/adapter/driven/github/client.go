// Package github implements the ActionsProvider port using the go-github
// library.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
	"github.com/ericfisherdev/nightwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ActionsProvider = (*Client)(nil)

// Client implements the driven.ActionsProvider port using the go-github
// library, bound to one repository and workflow.
type Client struct {
	gh       *gh.Client
	download *http.Client // plain client for fetching pre-signed log URLs
	owner    string
	repo     string
	workflow string
	branch   string
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// Job log downloads bypass this stack: GitHub answers the logs endpoint with a
// redirect to a pre-signed blob URL that must be fetched without the API
// Authorization header.
func NewClient(token, repoFullName, workflow, branch string) (*Client, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:       client,
		download: &http.Client{},
		owner:    owner,
		repo:     repo,
		workflow: workflow,
		branch:   branch,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, repoFullName, workflow, branch string) (*Client, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:       client,
		download: httpClient,
		owner:    owner,
		repo:     repo,
		workflow: workflow,
		branch:   branch,
	}, nil
}

// ListRecentRuns retrieves up to limit scheduled runs of the configured
// workflow on the configured branch, newest first. It handles pagination
// automatically and maps go-github types to domain model types.
func (c *Client) ListRecentRuns(ctx context.Context, limit int) ([]model.WorkflowRun, error) {
	opts := &gh.ListWorkflowRunsOptions{
		Branch: c.branch,
		Event:  "schedule",
		ListOptions: gh.ListOptions{
			PerPage: min(limit, 100),
		},
	}

	var runs []model.WorkflowRun

	for {
		page, resp, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, c.workflow, opts)
		if err != nil {
			return nil, &driven.QueryError{Op: "list workflow runs", Err: err}
		}

		logRateLimit(resp, c.workflow+"/runs", opts.Page, len(page.WorkflowRuns))

		for _, run := range page.WorkflowRuns {
			runs = append(runs, mapRun(run))
			if len(runs) == limit {
				return runs, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return runs, nil
}

// ListJobs retrieves all jobs belonging to a run. It handles pagination
// automatically and maps go-github types to domain model types.
func (c *Client) ListJobs(ctx context.Context, runID int64) ([]model.Job, error) {
	opts := &gh.ListWorkflowJobsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var jobs []model.Job

	for {
		page, resp, err := c.gh.Actions.ListWorkflowJobs(ctx, c.owner, c.repo, runID, opts)
		if err != nil {
			return nil, &driven.QueryError{Op: "list workflow jobs", Err: err}
		}

		logRateLimit(resp, c.workflow+"/jobs", opts.Page, len(page.Jobs))

		for _, job := range page.Jobs {
			jobs = append(jobs, mapJob(job))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return jobs, nil
}

// FetchJobLog retrieves the raw log of one job. The Actions API addresses logs
// by job ID alone, so the run ID goes unused here; it answers with a redirect
// to a short-lived pre-signed URL that is downloaded with the plain client.
func (c *Client) FetchJobLog(ctx context.Context, _, jobID int64) (string, error) {
	logURL, resp, err := c.gh.Actions.GetWorkflowJobLogs(ctx, c.owner, c.repo, jobID, 1)
	if err != nil {
		return "", &driven.QueryError{Op: "get job log url", Err: err}
	}

	logRateLimit(resp, c.workflow+"/job-logs", 0, 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return "", &driven.QueryError{Op: "download job log", Err: err}
	}

	dl, err := c.download.Do(req)
	if err != nil {
		return "", &driven.QueryError{Op: "download job log", Err: err}
	}
	defer dl.Body.Close()

	if dl.StatusCode != http.StatusOK {
		return "", &driven.QueryError{Op: "download job log", Err: fmt.Errorf("unexpected status %s", dl.Status)}
	}

	body, err := io.ReadAll(dl.Body)
	if err != nil {
		return "", &driven.QueryError{Op: "download job log", Err: err}
	}
	return string(body), nil
}

// mapRun converts a go-github WorkflowRun to a domain model WorkflowRun.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRun(run *gh.WorkflowRun) model.WorkflowRun {
	return model.WorkflowRun{
		ID:         run.GetID(),
		Number:     run.GetRunNumber(),
		CreatedAt:  run.GetCreatedAt().Time,
		HeadSHA:    run.GetHeadSHA(),
		Conclusion: model.ParseConclusion(run.GetConclusion()),
	}
}

// mapJob converts a go-github WorkflowJob to a domain model Job.
func mapJob(job *gh.WorkflowJob) model.Job {
	return model.Job{
		ID:         job.GetID(),
		Name:       job.GetName(),
		Conclusion: model.ParseConclusion(job.GetConclusion()),
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
