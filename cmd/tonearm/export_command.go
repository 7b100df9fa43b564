package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Build Serato crates and M3U playlists from playlist tags",
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
			summary, err := export.New(cfg, logger).Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d playlists: %d crates, %d M3U files\n",
				summary.Groups, summary.Crates, summary.M3Us)
			return nil
		},
	}
}
