package export

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tonearm/internal/fileutil"
	"tonearm/internal/tags"
)

// Groups maps a playlist name to the absolute paths of its member tracks.
type Groups map[string][]string

// CollectGroups walks the cache and groups tracks by the playlist names in
// their album tag. Names on the blacklist are dropped. Files whose names
// contain characters outside the Basic Multilingual Plane are skipped since
// Serato crates cannot represent them.
func CollectGroups(ctx context.Context, cacheDir string, blacklist []string) (Groups, error) {
	blocked := make(map[string]bool, len(blacklist))
	for _, name := range blacklist {
		blocked[strings.ToLower(strings.TrimSpace(name))] = true
	}

	groups := make(Groups)
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
		if hasNonBMPRunes(entry.Name()) {
			return nil
		}
		album, readErr := tags.ReadAlbum(path)
		if readErr != nil || album == "" {
			return nil
		}
		for _, name := range strings.Split(album, ",") {
			name = strings.TrimSpace(name)
			if name == "" || blocked[strings.ToLower(name)] {
				continue
			}
			groups[name] = append(groups[name], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: collect groups: %w", err)
	}

	collator := collate.New(language.Und, collate.IgnoreCase)
	for _, paths := range groups {
		collator.SortStrings(paths)
	}
	return groups, nil
}

// SortedNames returns the group names in collation order.
func (g Groups) SortedNames() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	collate.New(language.Und, collate.IgnoreCase).SortStrings(names)
	return names
}

func hasNonBMPRunes(name string) bool {
	for _, r := range name {
		if r > 0xFFFF {
			return true
		}
	}
	return false
}
