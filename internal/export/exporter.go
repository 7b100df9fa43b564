// Package export turns playlist membership tags into Serato subcrates and
// M3U playlists for DJ software.
package export

import (
	"context"
	"strings"

	"log/slog"

	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/services"
)

// Summary reports what one export pass produced.
type Summary struct {
	Groups int
	Crates int
	M3Us   int
}

// defaultColumns are the crate columns shown for tonearm-generated crates.
var defaultColumns = []string{"song", "artist", "key"}

// Exporter builds DJ library artifacts from the cache.
type Exporter struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an exporter.
func New(cfg *config.Config, logger *slog.Logger) *Exporter {
	if logger != nil {
		logger = logger.With(logging.String("component", "exporter"))
	}
	return &Exporter{cfg: cfg, logger: logger}
}

// Export groups cached tracks by playlist membership and writes one Serato
// subcrate and one M3U playlist per group. Either target can be disabled by
// leaving its directory unset.
func (e *Exporter) Export(ctx context.Context) (Summary, error) {
	var summary Summary
	groups, err := CollectGroups(ctx, e.cfg.Paths.CacheDir, e.cfg.Export.PlaylistBlacklist)
	if err != nil {
		return summary, services.Wrap(
			services.ErrTransient,
			"export",
			"collect groups",
			"Failed to read playlist membership from the cache",
			err,
		)
	}
	summary.Groups = len(groups)

	seratoDir := strings.TrimSpace(e.cfg.Paths.SeratoDir)
	m3uDir := strings.TrimSpace(e.cfg.Paths.M3UDir)

	for _, name := range groups.SortedNames() {
		trackPaths := groups[name]

		if seratoDir != "" {
			crate := &Crate{
				SortColumn: "key",
				Columns:    defaultColumns,
				TrackPaths: make([]string, 0, len(trackPaths)),
			}
			for _, track := range trackPaths {
				crate.TrackPaths = append(crate.TrackPaths, SeratoTrackPath(track))
			}
			path, err := WriteCrate(seratoDir, e.cfg.Export.ParentCrate, name, crate)
			if err != nil {
				return summary, services.Wrap(
					services.ErrTransient,
					"export",
					"write crate",
					"Failed to write Serato crate "+name,
					err,
				)
			}
			e.logger.Info("crate written",
				logging.String("playlist", name),
				logging.String("path", path),
				logging.Int("tracks", len(trackPaths)),
			)
			summary.Crates++
		}

		if m3uDir != "" {
			path, err := WriteM3U(m3uDir, name, trackPaths)
			if err != nil {
				return summary, services.Wrap(
					services.ErrTransient,
					"export",
					"write m3u",
					"Failed to write M3U playlist "+name,
					err,
				)
			}
			e.logger.Info("playlist written",
				logging.String("playlist", name),
				logging.String("path", path),
				logging.Int("tracks", len(trackPaths)),
			)
			summary.M3Us++
		}
	}

	return summary, nil
}
