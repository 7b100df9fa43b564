package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"tonearm/internal/fileutil"
)

// WriteM3U writes an extended M3U playlist of absolute track paths and
// returns the written path. UTF-8 names are fine, so the .m3u8 extension is
// used.
func WriteM3U(m3uDir, name string, trackPaths []string) (string, error) {
	cleaned := fileutil.SanitizeFileName(name)
	if cleaned == "" {
		return "", fmt.Errorf("export: empty playlist name")
	}

	var body strings.Builder
	body.WriteString("#EXTM3U\n")
	for _, track := range trackPaths {
		body.WriteString(track)
		body.WriteByte('\n')
	}

	path := filepath.Join(m3uDir, cleaned+".m3u8")
	if err := fileutil.WriteFileAtomic(path, []byte(body.String()), 0o644); err != nil {
		return "", fmt.Errorf("export: write playlist %s: %w", name, err)
	}
	return path, nil
}
