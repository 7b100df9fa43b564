package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/fileutil"
)

func TestIsAudioFile(t *testing.T) {
	cases := map[string]bool{
		"[id=1] track.mp3": true,
		"track.FLAC":       true,
		"loop.aiff":        true,
		"cover.jpg":        false,
		"notes.txt":        false,
		"noext":            false,
	}
	for name, want := range cases {
		if got := fileutil.IsAudioFile(name); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"deep/techno: vol.2": "deep-techno- vol.2",
		"  plain  ":          "plain",
		"a*b?c\"d":           "a-bcd",
		"":                   "",
	}
	for in, want := range cases {
		if got := fileutil.SanitizeFileName(in); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("content = %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
