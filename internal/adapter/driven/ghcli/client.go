// Package ghcli implements the ActionsProvider port by shelling out to the
// GitHub CLI. gh carries its own authentication and pagination, which keeps
// this adapter to argument building and JSON decoding.
package ghcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
	"github.com/ericfisherdev/nightwatch/internal/domain/port/driven"
)

// runListFields selects the run attributes decoded by this adapter.
const runListFields = "number,databaseId,name,status,conclusion,createdAt,headBranch,headSha"

// commandRunner abstracts process execution so tests can substitute canned
// output for the gh binary.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Client queries workflow runs through the gh binary.
type Client struct {
	runner   commandRunner
	ghPath   string
	repo     string
	workflow string
	branch   string
}

// NewClient creates a Client that executes ghPath for every query. repo is the
// owner/name form gh expects for its -R flag.
func NewClient(ghPath, repo, workflow, branch string) *Client {
	return &Client{
		runner:   execRunner{},
		ghPath:   ghPath,
		repo:     repo,
		workflow: workflow,
		branch:   branch,
	}
}

// NewClientWithRunner creates a Client with a custom command runner. Used by
// tests to avoid spawning real processes.
func NewClientWithRunner(runner commandRunner, repo, workflow, branch string) *Client {
	return &Client{
		runner:   runner,
		ghPath:   "gh",
		repo:     repo,
		workflow: workflow,
		branch:   branch,
	}
}

type runRecord struct {
	Number     int       `json:"number"`
	DatabaseID int64     `json:"databaseId"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"createdAt"`
	HeadBranch string    `json:"headBranch"`
	HeadSHA    string    `json:"headSha"`
}

type runDetail struct {
	Jobs []jobRecord `json:"jobs"`
}

type jobRecord struct {
	DatabaseID int64  `json:"databaseId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// ListRecentRuns lists up to limit scheduled runs of the configured workflow
// on the configured branch, newest first.
func (c *Client) ListRecentRuns(ctx context.Context, limit int) ([]model.WorkflowRun, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.ghPath,
		"run", "list",
		"-R", c.repo,
		"-w", c.workflow,
		"-b", c.branch,
		"-e", "schedule",
		"-L", strconv.Itoa(limit),
		"--json", runListFields,
	)
	if err != nil {
		return nil, queryError("run list", err, stderr)
	}

	var records []runRecord
	if err := json.Unmarshal(stdout, &records); err != nil {
		return nil, &driven.QueryError{Op: "run list", Err: fmt.Errorf("decode output: %w", err)}
	}

	runs := make([]model.WorkflowRun, 0, len(records))
	for _, rec := range records {
		runs = append(runs, model.WorkflowRun{
			ID:         rec.DatabaseID,
			Number:     rec.Number,
			CreatedAt:  rec.CreatedAt,
			HeadSHA:    rec.HeadSHA,
			Conclusion: model.ParseConclusion(rec.Conclusion),
		})
	}
	return runs, nil
}

// ListJobs lists every job of the given run.
func (c *Client) ListJobs(ctx context.Context, runID int64) ([]model.Job, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.ghPath,
		"run", "view",
		"-R", c.repo,
		strconv.FormatInt(runID, 10),
		"--json", "jobs",
	)
	if err != nil {
		return nil, queryError("run view", err, stderr)
	}

	var detail runDetail
	if err := json.Unmarshal(stdout, &detail); err != nil {
		return nil, &driven.QueryError{Op: "run view", Err: fmt.Errorf("decode output: %w", err)}
	}

	jobs := make([]model.Job, 0, len(detail.Jobs))
	for _, rec := range detail.Jobs {
		jobs = append(jobs, model.Job{
			ID:         rec.DatabaseID,
			Name:       rec.Name,
			Conclusion: model.ParseConclusion(rec.Conclusion),
		})
	}
	return jobs, nil
}

// FetchJobLog returns the raw log of one job, with gh's job/step prefix
// columns intact.
func (c *Client) FetchJobLog(ctx context.Context, runID, jobID int64) (string, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.ghPath,
		"run", "view",
		"-R", c.repo,
		"--log",
		"--job", strconv.FormatInt(jobID, 10),
		strconv.FormatInt(runID, 10),
	)
	if err != nil {
		return "", queryError("run view --log", err, stderr)
	}
	return string(stdout), nil
}

// queryError wraps a failed gh invocation, folding in whatever the CLI printed
// to stderr since that is usually the only useful diagnostic.
func queryError(op string, err error, stderr []byte) *driven.QueryError {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return &driven.QueryError{Op: op, Err: err}
}
