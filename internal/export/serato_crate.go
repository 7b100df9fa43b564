package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"tonearm/internal/fileutil"
)

// Serato crate files are a flat sequence of tag/length/value records. Tags
// are four ASCII bytes, lengths are 32-bit big-endian, and string payloads
// are UTF-16BE without a BOM. Container records (osrt, ovct, otrk) nest
// further records inside their payload.
const (
	crateVersion = "1.0/Serato ScratchLive Crate"

	tagVersion   = "vrsn"
	tagSort      = "osrt"
	tagColumn    = "ovct"
	tagColumnN   = "tvcn"
	tagColumnW   = "tvcw"
	tagTrack     = "otrk"
	tagTrackPath = "ptrk"
	tagReverse   = "brev"
)

// Crate models the subset of a Serato crate that tonearm reads and writes.
type Crate struct {
	SortColumn string
	Columns    []string
	TrackPaths []string
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func encodeUTF16(s string) ([]byte, error) {
	return utf16be.NewEncoder().Bytes([]byte(s))
}

func decodeUTF16(b []byte) (string, error) {
	out, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func appendRecord(buf *bytes.Buffer, tag string, payload []byte) {
	buf.WriteString(tag)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])
	buf.Write(payload)
}

func appendStringRecord(buf *bytes.Buffer, tag, value string) error {
	payload, err := encodeUTF16(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", tag, err)
	}
	appendRecord(buf, tag, payload)
	return nil
}

// Encode serializes the crate in Serato's binary layout.
func (c *Crate) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendStringRecord(&buf, tagVersion, crateVersion); err != nil {
		return nil, err
	}

	if c.SortColumn != "" {
		var sort bytes.Buffer
		if err := appendStringRecord(&sort, tagColumnN, c.SortColumn); err != nil {
			return nil, err
		}
		appendRecord(&sort, tagReverse, []byte{0})
		appendRecord(&buf, tagSort, sort.Bytes())
	}

	for _, column := range c.Columns {
		var col bytes.Buffer
		if err := appendStringRecord(&col, tagColumnN, column); err != nil {
			return nil, err
		}
		if err := appendStringRecord(&col, tagColumnW, "0"); err != nil {
			return nil, err
		}
		appendRecord(&buf, tagColumn, col.Bytes())
	}

	for _, path := range c.TrackPaths {
		var track bytes.Buffer
		if err := appendStringRecord(&track, tagTrackPath, path); err != nil {
			return nil, err
		}
		appendRecord(&buf, tagTrack, track.Bytes())
	}

	return buf.Bytes(), nil
}

// ParseCrate decodes a crate file, tolerating records it does not know.
func ParseCrate(data []byte) (*Crate, error) {
	crate := &Crate{}
	err := walkRecords(data, func(tag string, payload []byte) error {
		switch tag {
		case tagVersion:
			version, err := decodeUTF16(payload)
			if err != nil {
				return fmt.Errorf("decode version: %w", err)
			}
			if !strings.Contains(version, "Serato") {
				return fmt.Errorf("unexpected crate version %q", version)
			}
		case tagSort:
			return walkRecords(payload, func(inner string, innerPayload []byte) error {
				if inner != tagColumnN {
					return nil
				}
				name, err := decodeUTF16(innerPayload)
				if err != nil {
					return fmt.Errorf("decode sort column: %w", err)
				}
				crate.SortColumn = name
				return nil
			})
		case tagColumn:
			return walkRecords(payload, func(inner string, innerPayload []byte) error {
				if inner != tagColumnN {
					return nil
				}
				name, err := decodeUTF16(innerPayload)
				if err != nil {
					return fmt.Errorf("decode column: %w", err)
				}
				crate.Columns = append(crate.Columns, name)
				return nil
			})
		case tagTrack:
			return walkRecords(payload, func(inner string, innerPayload []byte) error {
				if inner != tagTrackPath {
					return nil
				}
				path, err := decodeUTF16(innerPayload)
				if err != nil {
					return fmt.Errorf("decode track path: %w", err)
				}
				crate.TrackPaths = append(crate.TrackPaths, path)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return crate, nil
}

func walkRecords(data []byte, visit func(tag string, payload []byte) error) error {
	offset := 0
	for offset < len(data) {
		if offset+8 > len(data) {
			return errors.New("truncated record header")
		}
		tag := string(data[offset : offset+4])
		size := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if offset+size > len(data) {
			return fmt.Errorf("truncated %s record", tag)
		}
		if err := visit(tag, data[offset:offset+size]); err != nil {
			return err
		}
		offset += size
	}
	return nil
}

// CrateFileName builds the Subcrates file name for a crate nested under a
// parent crate. Serato encodes nesting with %% separators.
func CrateFileName(parent, name string) string {
	cleaned := fileutil.SanitizeFileName(name)
	if parent = fileutil.SanitizeFileName(parent); parent != "" {
		return parent + "%%" + cleaned + ".crate"
	}
	return cleaned + ".crate"
}

// WriteCrate writes a crate into the Serato library's Subcrates directory
// and returns the written path.
func WriteCrate(seratoDir, parent, name string, crate *Crate) (string, error) {
	data, err := crate.Encode()
	if err != nil {
		return "", fmt.Errorf("export: encode crate %s: %w", name, err)
	}
	path := filepath.Join(seratoDir, "Subcrates", CrateFileName(parent, name))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write crate %s: %w", name, err)
	}
	return path, nil
}

// ReadCrate loads and decodes a crate file.
func ReadCrate(path string) (*Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: read crate: %w", err)
	}
	crate, err := ParseCrate(data)
	if err != nil {
		return nil, fmt.Errorf("export: parse crate %s: %w", path, err)
	}
	return crate, nil
}

// SeratoTrackPath converts an absolute file path to the volume-relative form
// Serato stores inside crates.
func SeratoTrackPath(abs string) string {
	return strings.TrimPrefix(filepath.ToSlash(abs), "/")
}
