// Package cmd defines the nightwatch command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/nightwatch/internal/adapter/driven/csvledger"
	"github.com/ericfisherdev/nightwatch/internal/adapter/driven/fsarchive"
	"github.com/ericfisherdev/nightwatch/internal/adapter/driven/ghcli"
	githubadapter "github.com/ericfisherdev/nightwatch/internal/adapter/driven/github"
	"github.com/ericfisherdev/nightwatch/internal/adapter/driven/gitcli"
	"github.com/ericfisherdev/nightwatch/internal/application"
	"github.com/ericfisherdev/nightwatch/internal/config"
	"github.com/ericfisherdev/nightwatch/internal/domain/port/driven"
)

var (
	runLimit int
	push     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nightwatch",
	Short: "Archive nightly CI job logs and track benchmark results",
	Long: `Nightwatch inspects the recent scheduled runs of a GitHub Actions
workflow, picks out a configured set of target jobs, archives their logs
under a date-partitioned directory tree, and records each job's outcome
and benchmark throughput in per-keyword CSV ledgers.

Configuration comes from NIGHTWATCH_* environment variables; a .env file
in the working directory is honored. Runs are queried through the gh CLI
by default, or directly against the REST API with NIGHTWATCH_PROVIDER=api.

Example:
  nightwatch collect
  nightwatch collect --runs 10 --push
  nightwatch watch --interval 30m`,
	// Errors reach the user once, through the fatal log in main.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&runLimit, "runs", "n", 4, "number of recent scheduled runs to inspect")
	rootCmd.PersistentFlags().BoolVar(&push, "push", false, "commit and push the collection root after each pass")
}

// buildService wires a CollectService from the loaded configuration and the
// shared flags. Creating the collection root is the only hard prerequisite;
// everything past it degrades per job at collection time.
func buildService(cfg *config.Config) (*application.CollectService, error) {
	if runLimit < 1 {
		return nil, fmt.Errorf("--runs must be at least 1, got %d", runLimit)
	}

	if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection root %s: %w", cfg.LogsDir, err)
	}

	var provider driven.ActionsProvider
	switch cfg.Provider {
	case config.ProviderAPI:
		client, err := githubadapter.NewClient(cfg.GitHubToken, cfg.Repo, cfg.Workflow, cfg.Branch)
		if err != nil {
			return nil, err
		}
		provider = client
	default:
		provider = ghcli.NewClient(cfg.GHPath, cfg.Repo, cfg.Workflow, cfg.Branch)
	}

	var publisher driven.ResultPublisher
	if push {
		publisher = gitcli.NewPublisher(cfg.GitPath, cfg.GitDir, cfg.LogsDir)
	}

	return application.NewCollectService(
		provider,
		fsarchive.New(cfg.LogsDir),
		csvledger.New(cfg.LogsDir),
		publisher,
		cfg.Repo,
		cfg.Workflow,
		cfg.TargetJobs,
		runLimit,
	), nil
}
