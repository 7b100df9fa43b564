package tags

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"tonearm/internal/logging"
	"tonearm/internal/results"
)

// Summary reports the outcome of a batch tagging pass.
type Summary struct {
	Tagged  int
	Skipped int
	Failed  int
}

// WriteKeyTags applies key results to every MP3 under cacheDir that has a
// record in the results map. Files without a record are skipped. Individual
// write failures are logged and counted, not fatal.
func WriteKeyTags(ctx context.Context, logger *slog.Logger, cacheDir string, records map[string]results.Record) (Summary, error) {
	var summary Summary
	err := walkMP3s(ctx, cacheDir, func(path, relPath string) {
		record, ok := records[relPath]
		if !ok {
			summary.Skipped++
			return
		}
		if err := ApplyKeyTags(path, record.Key, record.Camelot); err != nil {
			summary.Failed++
			logger.Warn("key tag write failed", logging.String("file", relPath), logging.Error(err))
			return
		}
		summary.Tagged++
	})
	return summary, err
}

// WritePlaylistTags applies playlist membership to every MP3 under cacheDir.
// Tracks whose id appears in no playlist get an empty TALB so stale names do
// not linger after playlist edits.
func WritePlaylistTags(ctx context.Context, logger *slog.Logger, cacheDir string, membership map[string][]string) (Summary, error) {
	var summary Summary
	err := walkMP3s(ctx, cacheDir, func(path, relPath string) {
		trackID, ok := TrackIDFromName(filepath.Base(relPath))
		if !ok {
			summary.Skipped++
			return
		}
		album := AlbumValue(membership[trackID])
		if err := ApplyAlbum(path, album); err != nil {
			summary.Failed++
			logger.Warn("playlist tag write failed", logging.String("file", relPath), logging.Error(err))
			return
		}
		summary.Tagged++
	})
	return summary, err
}

func walkMP3s(ctx context.Context, cacheDir string, visit func(path, relPath string)) error {
	return filepath.WalkDir(cacheDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			// Playlist JSON lives under the cache; never descend into it.
			if path != cacheDir && filepath.Base(path) == "playlists" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".mp3") {
			return nil
		}
		relPath, relErr := filepath.Rel(cacheDir, path)
		if relErr != nil {
			return fmt.Errorf("tags: relativize %s: %w", path, relErr)
		}
		visit(path, relPath)
		return nil
	})
}
