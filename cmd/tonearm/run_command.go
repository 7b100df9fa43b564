package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tonearm/internal/daemon"
	"tonearm/internal/preflight"
	"tonearm/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process queued tracks through probe, analyze, and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), cfg)
				if !preflight.AllPassed(results) {
					var failures []string
					for _, result := range results {
						if !result.Passed {
							failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
						}
					}
					return fmt.Errorf("preflight failed:\n  %s", strings.Join(failures, "\n  "))
				}
			}

			manager := workflow.NewManager(cfg, store, logger)

			if watch {
				d, err := daemon.New(cfg, store, logger, manager)
				if err != nil {
					return err
				}
				return d.Run(cmd.Context())
			}

			if _, err := store.ResetStuckProcessing(cmd.Context()); err != nil {
				return err
			}
			summary, err := manager.RunUntilIdle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %d stage passes, %d failures\n",
				summary.Processed, summary.Failed)
			if summary.Failed > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Run 'tonearm queue list --status failed' for details")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the queue for new work")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before processing")
	return cmd
}
