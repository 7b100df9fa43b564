package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/results"
	"tonearm/internal/tags"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Write ID3 tags over the whole cache",
	}
	tagsCmd.AddCommand(newTagsKeysCommand(ctx))
	tagsCmd.AddCommand(newTagsPlaylistsCommand(ctx))
	return tagsCmd
}

func newTagsKeysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Write detected keys into TIT1/TPUB frames",
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
			records, err := results.NewStore(cfg.ResultsFile()).Load()
			if err != nil {
				return err
			}
			summary, err := tags.WriteKeyTags(cmd.Context(), logger, cfg.Paths.CacheDir, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged %d files, skipped %d, %d failures\n",
				summary.Tagged, summary.Skipped, summary.Failed)
			return nil
		},
	}
}

func newTagsPlaylistsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "Write playlist membership into TALB frames",
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
			membership, err := tags.LoadMembership(cfg.Paths.PlaylistsDir)
			if err != nil {
				return err
			}
			summary, err := tags.WritePlaylistTags(cmd.Context(), logger, cfg.Paths.CacheDir, membership)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged %d files, skipped %d, %d failures\n",
				summary.Tagged, summary.Skipped, summary.Failed)
			return nil
		},
	}
}
