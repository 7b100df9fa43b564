// Package tags reads and writes ID3v2 metadata on cached tracks.
//
// Key results land in TIT1 (content group) and TPUB (publisher, Camelot code
// lowercased for Serato column sorting). Playlist membership lands in TALB as
// a comma-joined list of playlist names.
package tags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// ID3v2 frame IDs used by tonearm.
const (
	FrameContentGroup = "TIT1"
	FramePublisher    = "TPUB"
	FrameAlbum        = "TALB"
)

var trackIDPattern = regexp.MustCompile(`\[id=([^\]]+)\]`)

// TrackIDFromName extracts the downloader id token from a cached file name.
// Names follow the "[id=12345] Title.mp3" template.
func TrackIDFromName(name string) (string, bool) {
	match := trackIDPattern.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ApplyKeyTags writes the musical key into TIT1 and the lowercased Camelot
// code into TPUB, replacing any existing values.
func ApplyKeyTags(path, key, camelot string) error {
	return writeFrames(path, map[string]string{
		FrameContentGroup: key,
		FramePublisher:    strings.ToLower(camelot),
	})
}

// ApplyAlbum writes the playlist membership string into TALB, replacing any
// existing value.
func ApplyAlbum(path, album string) error {
	return writeFrames(path, map[string]string{
		FrameAlbum: album,
	})
}

func writeFrames(path string, frames map[string]string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("tags: open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	for id, value := range frames {
		tag.DeleteFrames(id)
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
	if err := tag.Save(); err != nil {
		return fmt.Errorf("tags: save %s: %w", path, err)
	}
	return nil
}

// ReadFrame returns the current value of a text frame, or "" when absent.
func ReadFrame(path, frameID string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{frameID}})
	if err != nil {
		return "", fmt.Errorf("tags: open %s: %w", path, err)
	}
	defer tag.Close()
	return tag.GetTextFrame(frameID).Text, nil
}
