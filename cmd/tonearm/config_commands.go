package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tonearm/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache dir:        %s\n", cfg.Paths.CacheDir)
			fmt.Fprintf(out, "Playlists dir:    %s\n", cfg.Paths.PlaylistsDir)
			fmt.Fprintf(out, "Log dir:          %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Serato dir:       %s\n", cfg.Paths.SeratoDir)
			fmt.Fprintf(out, "M3U dir:          %s\n", cfg.Paths.M3UDir)
			fmt.Fprintf(out, "Playlist URLs:    %d configured\n", len(cfg.SoundCloud.PlaylistURLs))
			for _, url := range cfg.SoundCloud.PlaylistURLs {
				fmt.Fprintf(out, "  - %s\n", url)
			}
			fmt.Fprintf(out, "Audio format:     %s\n", cfg.SoundCloud.AudioFormat)
			fmt.Fprintf(out, "Key profile:      %s\n", cfg.Analysis.Profile)
			fmt.Fprintf(out, "Window/hop:       %d/%d\n", cfg.Analysis.WindowSize, cfg.Analysis.HopSize)
			fmt.Fprintf(out, "Write key tags:   %s\n", yesNo(cfg.Tags.WriteKey))
			fmt.Fprintf(out, "Write playlists:  %s\n", yesNo(cfg.Tags.WritePlaylist))
			fmt.Fprintf(out, "Parent crate:     %s\n", cfg.Export.ParentCrate)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to add your SoundCloud playlist URLs before running tonearm sync.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
