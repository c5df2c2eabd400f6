// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider selects how the watcher talks to GitHub Actions.
const (
	ProviderGHCLI = "gh"  // shell out to the gh CLI
	ProviderAPI   = "api" // call the REST API directly
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Repo          string
	Workflow      string
	Branch        string
	TargetJobs    []string
	LogsDir       string
	Provider      string
	GitHubToken   string
	GHPath        string
	GitPath       string
	GitDir        string
	MetricsAddr   string
	WatchInterval time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. Every variable has a default except NIGHTWATCH_GITHUB_TOKEN, which
// is required only when NIGHTWATCH_PROVIDER=api. Optional variables with
// defaults: NIGHTWATCH_REPO (vllm-project/vllm-ascend),
// NIGHTWATCH_WORKFLOW (schedule_nightly_test_a3.yaml), NIGHTWATCH_BRANCH
// (main), NIGHTWATCH_TARGET_JOBS (comma-separated keyword list),
// NIGHTWATCH_LOGS_DIR (logs), NIGHTWATCH_PROVIDER (gh),
// NIGHTWATCH_GH_PATH (gh), NIGHTWATCH_GIT_PATH (git), NIGHTWATCH_GIT_DIR (.),
// NIGHTWATCH_METRICS_ADDR (empty, metrics disabled),
// NIGHTWATCH_WATCH_INTERVAL (1h).
func Load() (*Config, error) {
	repo := "vllm-project/vllm-ascend"
	if v, ok := os.LookupEnv("NIGHTWATCH_REPO"); ok && v != "" {
		repo = v
	}
	if !strings.Contains(repo, "/") {
		return nil, fmt.Errorf("NIGHTWATCH_REPO %q is not in owner/name form", repo)
	}

	workflow := "schedule_nightly_test_a3.yaml"
	if v, ok := os.LookupEnv("NIGHTWATCH_WORKFLOW"); ok && v != "" {
		workflow = v
	}

	branch := "main"
	if v, ok := os.LookupEnv("NIGHTWATCH_BRANCH"); ok && v != "" {
		branch = v
	}

	targetJobs := []string{"multi-node-dpsk3.2-2node", "test_deepseek_v3_2_w8a8"}
	if v, ok := os.LookupEnv("NIGHTWATCH_TARGET_JOBS"); ok {
		targetJobs = nil
		for _, kw := range strings.Split(v, ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				targetJobs = append(targetJobs, kw)
			}
		}
		if len(targetJobs) == 0 {
			return nil, fmt.Errorf("NIGHTWATCH_TARGET_JOBS %q contains no keywords", v)
		}
	}

	logsDir := "logs"
	if v, ok := os.LookupEnv("NIGHTWATCH_LOGS_DIR"); ok && v != "" {
		logsDir = v
	}

	provider := ProviderGHCLI
	if v, ok := os.LookupEnv("NIGHTWATCH_PROVIDER"); ok && v != "" {
		provider = v
	}
	if provider != ProviderGHCLI && provider != ProviderAPI {
		return nil, fmt.Errorf("NIGHTWATCH_PROVIDER %q is not one of %q, %q", provider, ProviderGHCLI, ProviderAPI)
	}

	token := os.Getenv("NIGHTWATCH_GITHUB_TOKEN")
	if token == "" {
		// gh and git read GITHUB_TOKEN themselves, so honor it here too.
		token = os.Getenv("GITHUB_TOKEN")
	}
	if provider == ProviderAPI && token == "" {
		return nil, fmt.Errorf("NIGHTWATCH_GITHUB_TOKEN is required when NIGHTWATCH_PROVIDER=api")
	}

	ghPath := "gh"
	if v, ok := os.LookupEnv("NIGHTWATCH_GH_PATH"); ok && v != "" {
		ghPath = v
	}

	gitPath := "git"
	if v, ok := os.LookupEnv("NIGHTWATCH_GIT_PATH"); ok && v != "" {
		gitPath = v
	}

	gitDir := "."
	if v, ok := os.LookupEnv("NIGHTWATCH_GIT_DIR"); ok && v != "" {
		gitDir = v
	}

	metricsAddr := os.Getenv("NIGHTWATCH_METRICS_ADDR")

	watchInterval := time.Hour
	if v, ok := os.LookupEnv("NIGHTWATCH_WATCH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("NIGHTWATCH_WATCH_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("NIGHTWATCH_WATCH_INTERVAL must be positive, got %q", v)
		}
		watchInterval = parsed
	}

	return &Config{
		Repo:          repo,
		Workflow:      workflow,
		Branch:        branch,
		TargetJobs:    targetJobs,
		LogsDir:       logsDir,
		Provider:      provider,
		GitHubToken:   token,
		GHPath:        ghPath,
		GitPath:       gitPath,
		GitDir:        gitDir,
		MetricsAddr:   metricsAddr,
		WatchInterval: watchInterval,
	}, nil
}
