package tags

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ReadAlbum returns the album field of any tagged audio file. Unlike
// ReadFrame it understands more than ID3v2, so WAV, FLAC, and M4A files in
// the cache are covered too. Untagged files return "".
func ReadAlbum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("tags: open %s: %w", path, err)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return "", nil
		}
		return "", fmt.Errorf("tags: read %s: %w", path, err)
	}
	return metadata.Album(), nil
}
