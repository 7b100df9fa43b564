package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// playlistFile mirrors the flat playlist JSON written by the syncer: the
// downloader's -J output reduced to entry ids and titles.
type playlistFile struct {
	Entries []playlistEntry `json:"entries"`
}

type playlistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LoadMembership reads every *.json file in playlistsDir and returns a map
// from track id to the sorted names of the playlists containing it. The
// playlist name is the file name without extension.
func LoadMembership(playlistsDir string) (map[string][]string, error) {
	paths, err := filepath.Glob(filepath.Join(playlistsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("tags: glob playlists: %w", err)
	}

	membership := make(map[string][]string)
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("tags: read playlist %s: %w", path, err)
		}
		var playlist playlistFile
		if err := json.Unmarshal(raw, &playlist); err != nil {
			return nil, fmt.Errorf("tags: parse playlist %s: %w", path, err)
		}
		for _, entry := range playlist.Entries {
			if entry.ID == "" {
				continue
			}
			membership[entry.ID] = append(membership[entry.ID], name)
		}
	}

	for id, names := range membership {
		sort.Strings(names)
		membership[id] = dedupeSorted(names)
	}
	return membership, nil
}

// AlbumValue joins playlist names into the TALB value.
func AlbumValue(names []string) string {
	return strings.Join(names, ", ")
}

func dedupeSorted(names []string) []string {
	out := names[:0]
	for i, name := range names {
		if i > 0 && name == names[i-1] {
			continue
		}
		out = append(out, name)
	}
	return out
}
