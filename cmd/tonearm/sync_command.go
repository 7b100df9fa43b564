package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror configured SoundCloud playlists into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(cfg.SoundCloud.PlaylistURLs) == 0 {
				return fmt.Errorf("no playlist URLs configured; add soundcloud.playlist_urls to the config file")
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

			summary, err := syncer.New(cfg, store, logger).Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d playlists (%d tracks), enqueued %d new files\n",
				summary.Playlists, summary.Tracks, summary.Enqueued)
			return nil
		},
	}
}
