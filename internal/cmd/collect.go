package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/nightwatch/internal/config"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a single collection pass and exit",
	Long: `Collect inspects the most recent scheduled runs once, archives the logs
of any target jobs it finds, updates the CSV ledgers, and exits. Failures
on individual runs or jobs are logged and skipped so one bad log never
blocks the rest of the pass.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	return svc.Collect(ctx)
}
