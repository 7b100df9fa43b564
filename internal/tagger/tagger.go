// Package tagger writes detected keys and playlist membership into the ID3
// tags of analyzed tracks.
package tagger

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"

	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/services"
	"tonearm/internal/stage"
	"tonearm/internal/tags"
)

// Tagger applies per-track metadata after analysis.
type Tagger struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	mu         sync.Mutex
	membership map[string][]string
}

// New constructs the tagging handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Tagger {
	if logger != nil {
		logger = logger.With(logging.String("component", "tagger"))
	}
	return &Tagger{cfg: cfg, store: store, logger: logger}
}

func (t *Tagger) Prepare(ctx context.Context, item *queue.Item) error {
	item.ProgressStage = "Tagging"
	item.ProgressMessage = "Writing metadata"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (t *Tagger) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	path := t.sourcePath(item)

	// Only MP3s carry ID3 frames; other formats complete without tagging.
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		item.SetProgress("Completed", "Tagging skipped for non-MP3 file", 100)
		return nil
	}

	if t.cfg.Tags.WriteKey && item.KeyLabel != "" {
		if err := tags.ApplyKeyTags(path, item.KeyLabel, item.CamelotLabel); err != nil {
			return services.Wrap(
				services.ErrTransient,
				"tagging",
				"write key tags",
				"Failed to write key tags for "+item.RelPath,
				err,
			)
		}
	}

	if t.cfg.Tags.WritePlaylist {
		membership, err := t.loadMembership()
		if err != nil {
			return services.Wrap(
				services.ErrTransient,
				"tagging",
				"load playlists",
				"Failed to read playlist snapshots",
				err,
			)
		}
		if item.TrackID != "" {
			album := tags.AlbumValue(membership[item.TrackID])
			if err := tags.ApplyAlbum(path, album); err != nil {
				return services.Wrap(
					services.ErrTransient,
					"tagging",
					"write playlist tag",
					"Failed to write playlist tag for "+item.RelPath,
					err,
				)
			}
		}
	}

	item.SetProgress("Completed", "Metadata written", 100)
	logger.Info("tags written",
		logging.String("file", item.RelPath),
		logging.String("key", item.KeyLabel),
	)
	return nil
}

// HealthCheck verifies the tagging targets are reachable.
func (t *Tagger) HealthCheck(ctx context.Context) stage.Health {
	const name = "tagger"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(t.cfg.Paths.CacheDir) == "" {
		return stage.Unhealthy(name, "cache directory not configured")
	}
	if t.cfg.Tags.WritePlaylist && strings.TrimSpace(t.cfg.Paths.PlaylistsDir) == "" {
		return stage.Unhealthy(name, "playlists directory not configured")
	}
	return stage.Healthy(name)
}

// loadMembership caches the playlist snapshots for the lifetime of the
// handler. A new run of the workflow builds a fresh Tagger, so edits made by
// a later sync are picked up then.
func (t *Tagger) loadMembership() (map[string][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.membership != nil {
		return t.membership, nil
	}
	membership, err := tags.LoadMembership(t.cfg.Paths.PlaylistsDir)
	if err != nil {
		return nil, err
	}
	t.membership = membership
	return membership, nil
}

func (t *Tagger) sourcePath(item *queue.Item) string {
	if strings.TrimSpace(item.SourcePath) != "" {
		return item.SourcePath
	}
	return filepath.Join(t.cfg.Paths.CacheDir, item.RelPath)
}
