package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts, dependencies, and environment checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			health, err := store.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Queue")
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Pending", "Processing", "Completed", "Failed"},
				[][]string{{
					fmt.Sprint(health.Total),
					fmt.Sprint(health.Pending),
					fmt.Sprint(health.Processing),
					fmt.Sprint(health.Completed),
					fmt.Sprint(health.Failed),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			fmt.Fprintln(out, "\nDependencies")
			depRows := [][]string{}
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				detail := status.Detail
				if status.Available {
					detail = status.Command
				}
				depRows = append(depRows, []string{status.Name, yesNo(status.Available), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Available", "Detail"},
				depRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			fmt.Fprintln(out, "\nEnvironment")
			checkRows := [][]string{}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				checkRows = append(checkRows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Passed", "Detail"},
				checkRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
