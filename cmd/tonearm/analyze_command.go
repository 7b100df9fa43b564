package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tonearm/internal/analyzer"
	"tonearm/internal/fileutil"
	"tonearm/internal/keydetect"
	"tonearm/internal/results"
)

// newAnalyzeCommand runs key detection directly over the cache, outside the
// queue. Useful for re-analysis after a profile change or for libraries that
// predate the queue.
func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect keys for every cached track and record the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			detector, err := analyzer.BuildDetector(cfg)
			if err != nil {
				return err
			}
			store := results.NewStore(cfg.ResultsFile())

			analyzed := map[string]bool{}
			if !force {
				analyzed, err = store.Analyzed()
				if err != nil {
					return err
				}
			}

			var pending []string
			err = filepath.WalkDir(cfg.Paths.CacheDir, func(path string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if entry.IsDir() {
					if path != cfg.Paths.CacheDir && filepath.Base(path) == "playlists" {
						return filepath.SkipDir
					}
					return nil
				}
				if !fileutil.IsAudioFile(entry.Name()) {
					return nil
				}
				relPath, relErr := filepath.Rel(cfg.Paths.CacheDir, path)
				if relErr != nil {
					return relErr
				}
				if analyzed[relPath] {
					return nil
				}
				pending = append(pending, relPath)
				return nil
			})
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to analyze")
				return nil
			}

			var bar *progressbar.ProgressBar
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(len(pending),
					progressbar.OptionSetDescription("analyzing"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			detected, failed := 0, 0
			for _, relPath := range pending {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				path := filepath.Join(cfg.Paths.CacheDir, relPath)
				result, detectErr := detector.Detect(cmd.Context(), path)
				if detectErr != nil {
					failed++
					if appendErr := store.AppendError(relPath); appendErr != nil {
						return appendErr
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", relPath, keydetect.FormatError(detectErr))
				} else {
					detected++
					if appendErr := store.Append(relPath, result.Key, result.Camelot); appendErr != nil {
						return appendErr
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", relPath, result.String())
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}

			if err := store.Dedupe(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d tracks, %d failures\n", detected, failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-analyze tracks that already have a result")
	return cmd
}
