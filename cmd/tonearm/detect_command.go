package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tonearm/internal/analyzer"
	"tonearm/internal/keydetect"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var profileFlag string

	cmd := &cobra.Command{
		Use:   "detect <audio-file>",
		Short: "Detect the musical key of a single audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if profile := strings.TrimSpace(profileFlag); profile != "" {
				cfg.Analysis.Profile = profile
			}

			detector, err := analyzer.BuildDetector(cfg)
			if err != nil {
				return err
			}

			result, err := detector.Detect(cmd.Context(), args[0])
			if err != nil {
				// Detection failures are part of the output contract: a
				// single Error line on stdout, not a failed exit.
				fmt.Fprintln(cmd.OutOrStdout(), keydetect.FormatError(err))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "", "Key profile override (edma, krumhansl, shaath)")
	return cmd
}
