// Package syncer mirrors configured SoundCloud playlists into the local
// cache and enqueues new tracks for analysis.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"log/slog"

	"tonearm/internal/config"
	"tonearm/internal/fileutil"
	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/services"
	"tonearm/internal/soundcloud"
	"tonearm/internal/tags"
)

// Summary reports the outcome of one sync pass.
type Summary struct {
	Playlists int
	Tracks    int
	Enqueued  int
}

// Syncer drives playlist mirroring and cache cataloguing.
type Syncer struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client soundcloud.Downloader
}

// New constructs a syncer with the real yt-dlp client.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Syncer {
	client, err := soundcloud.New(
		cfg.DownloaderBinary(),
		cfg.SoundCloud.AudioFormat,
		cfg.ArchiveFile(),
		cfg.SoundCloud.DownloadTimeout,
	)
	if err != nil {
		logger.Warn("downloader client unavailable", logging.Error(err))
	}
	return NewWithClient(cfg, store, logger, client)
}

// NewWithClient allows injecting the downloader (used in tests).
func NewWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client soundcloud.Downloader) *Syncer {
	if logger != nil {
		logger = logger.With(logging.String("component", "syncer"))
	}
	return &Syncer{cfg: cfg, store: store, logger: logger, client: client}
}

// Sync mirrors every configured playlist and then catalogues the cache.
func (s *Syncer) Sync(ctx context.Context) (Summary, error) {
	var summary Summary
	if s.client == nil {
		return summary, services.Wrap(
			services.ErrConfiguration,
			"sync",
			"downloader",
			"Downloader client unavailable; check that yt-dlp is installed",
			nil,
		)
	}

	for _, url := range s.cfg.SoundCloud.PlaylistURLs {
		playlist, err := s.client.PlaylistInfo(ctx, url)
		if err != nil {
			return summary, services.Wrap(
				services.ErrExternalTool,
				"sync",
				"playlist info",
				fmt.Sprintf("Failed to read playlist %s", url),
				err,
			)
		}
		s.logger.Info("playlist resolved",
			logging.String("playlist", playlist.Title),
			logging.Int("tracks", len(playlist.Entries)),
		)

		if err := s.writeSnapshot(playlist); err != nil {
			return summary, services.Wrap(
				services.ErrTransient,
				"sync",
				"write playlist snapshot",
				fmt.Sprintf("Failed to record playlist %s", playlist.Title),
				err,
			)
		}

		progress := func(update soundcloud.ProgressUpdate) {
			s.logger.Debug("download progress",
				logging.String("playlist", playlist.Title),
				logging.Float64("percent", update.Percent),
			)
		}
		if err := s.client.Download(ctx, url, s.cfg.Paths.CacheDir, progress); err != nil {
			return summary, services.Wrap(
				services.ErrExternalTool,
				"sync",
				"download",
				fmt.Sprintf("Download failed for playlist %s", playlist.Title),
				err,
			)
		}

		summary.Playlists++
		summary.Tracks += len(playlist.Entries)
	}

	enqueued, err := s.ScanCache(ctx)
	if err != nil {
		return summary, err
	}
	summary.Enqueued = enqueued
	return summary, nil
}

// writeSnapshot records the playlist's entries so tagging and export can
// resolve membership without hitting the network again.
func (s *Syncer) writeSnapshot(playlist *soundcloud.Playlist) error {
	name := fileutil.SanitizeFileName(playlist.Title)
	if name == "" {
		name = "playlist"
	}
	type entry struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	snapshot := struct {
		Entries []entry `json:"entries"`
	}{Entries: make([]entry, 0, len(playlist.Entries))}
	for _, e := range playlist.Entries {
		snapshot.Entries = append(snapshot.Entries, entry{ID: e.ID, Title: e.Title})
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(s.cfg.Paths.PlaylistsDir, name+".json")
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// ScanCache walks the cache and enqueues any audio file the catalog does not
// know yet. Returns the number of newly enqueued tracks.
func (s *Syncer) ScanCache(ctx context.Context) (int, error) {
	enqueued := 0
	cacheDir := s.cfg.Paths.CacheDir
	err := filepath.WalkDir(cacheDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != cacheDir && filepath.Base(path) == "playlists" {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileutil.IsAudioFile(entry.Name()) {
			return nil
		}
		relPath, relErr := filepath.Rel(cacheDir, path)
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}
		existing, lookupErr := s.store.FindByRelPath(ctx, relPath)
		if lookupErr != nil {
			return lookupErr
		}
		if existing != nil {
			return nil
		}
		trackID, _ := tags.TrackIDFromName(entry.Name())
		item, createErr := s.store.NewTrack(ctx, path, relPath, trackID, titleFromName(entry.Name()))
		if createErr != nil {
			return createErr
		}
		s.logger.Info("track enqueued",
			logging.Int64("item_id", item.ID),
			logging.String("file", relPath),
		)
		enqueued++
		return nil
	})
	if err != nil {
		return enqueued, services.Wrap(
			services.ErrTransient,
			"sync",
			"scan cache",
			"Failed to scan the download cache",
			err,
		)
	}
	return enqueued, nil
}

// titleFromName strips the id token and extension from a cached file name.
func titleFromName(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if idx := strings.Index(name, "]"); strings.HasPrefix(name, "[id=") && idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSpace(name)
}
