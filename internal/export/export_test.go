package export_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/export"
	"tonearm/internal/logging"
	"tonearm/internal/tags"
	"tonearm/internal/testsupport"
)

func newTaggedTrack(t *testing.T, dir, name, album string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, 256)
	if album != "" {
		if err := tags.ApplyAlbum(path, album); err != nil {
			t.Fatalf("ApplyAlbum: %v", err)
		}
	}
	return path
}

func TestCrateRoundTrip(t *testing.T) {
	crate := &export.Crate{
		SortColumn: "key",
		Columns:    []string{"song", "artist", "key"},
		TrackPaths: []string{
			"Users/dj/Music/soundcloud/CACHE/[id=1] a.mp3",
			"Users/dj/Music/soundcloud/CACHE/[id=2] b.mp3",
		},
	}

	data, err := crate.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := export.ParseCrate(data)
	if err != nil {
		t.Fatalf("ParseCrate: %v", err)
	}

	if parsed.SortColumn != crate.SortColumn {
		t.Fatalf("sort column = %q", parsed.SortColumn)
	}
	if len(parsed.Columns) != 3 || parsed.Columns[2] != "key" {
		t.Fatalf("columns = %v", parsed.Columns)
	}
	if len(parsed.TrackPaths) != 2 || parsed.TrackPaths[1] != crate.TrackPaths[1] {
		t.Fatalf("tracks = %v", parsed.TrackPaths)
	}
}

func TestParseCrateTruncated(t *testing.T) {
	crate := &export.Crate{TrackPaths: []string{"a.mp3"}}
	data, err := crate.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := export.ParseCrate(data[:len(data)-3]); err == nil {
		t.Fatal("expected error for truncated crate")
	}
}

func TestCrateFileName(t *testing.T) {
	if got := export.CrateFileName("sync", "deep techno"); got != "sync%%deep techno.crate" {
		t.Fatalf("CrateFileName = %q", got)
	}
	if got := export.CrateFileName("", "solo"); got != "solo.crate" {
		t.Fatalf("CrateFileName = %q", got)
	}
}

func TestSeratoTrackPath(t *testing.T) {
	if got := export.SeratoTrackPath("/Users/dj/Music/a.mp3"); got != "Users/dj/Music/a.mp3" {
		t.Fatalf("SeratoTrackPath = %q", got)
	}
}

func TestCollectGroups(t *testing.T) {
	cacheDir := t.TempDir()
	newTaggedTrack(t, cacheDir, "[id=1] a.mp3", "techno, deep")
	newTaggedTrack(t, cacheDir, "[id=2] b.mp3", "techno")
	newTaggedTrack(t, cacheDir, "[id=3] c.mp3", "likes")
	newTaggedTrack(t, cacheDir, "[id=4] untagged.mp3", "")
	newTaggedTrack(t, cacheDir, "[id=5] emoji \U0001F3B5.mp3", "techno")

	groups, err := export.CollectGroups(context.Background(), cacheDir, []string{"likes"})
	if err != nil {
		t.Fatalf("CollectGroups: %v", err)
	}

	names := groups.SortedNames()
	if len(names) != 2 || names[0] != "deep" || names[1] != "techno" {
		t.Fatalf("names = %v", names)
	}
	if len(groups["techno"]) != 2 {
		t.Fatalf("techno members = %v, want emoji name skipped", groups["techno"])
	}
	if len(groups["deep"]) != 1 {
		t.Fatalf("deep members = %v", groups["deep"])
	}
}

func TestWriteM3U(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WriteM3U(dir, "techno", []string{"/music/a.mp3", "/music/b.mp3"})
	if err != nil {
		t.Fatalf("WriteM3U: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "#EXTM3U" || len(lines) != 3 || lines[2] != "/music/b.mp3" {
		t.Fatalf("lines = %v", lines)
	}
	if filepath.Ext(path) != ".m3u8" {
		t.Fatalf("path = %q", path)
	}
}

func TestExportWritesCratesAndPlaylists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	newTaggedTrack(t, cfg.Paths.CacheDir, "[id=1] a.mp3", "techno")
	newTaggedTrack(t, cfg.Paths.CacheDir, "[id=2] b.mp3", "techno, deep")

	exporter := export.New(cfg, logging.NewNop())
	summary, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if summary.Groups != 2 || summary.Crates != 2 || summary.M3Us != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	cratePath := filepath.Join(cfg.Paths.SeratoDir, "Subcrates", "sync%%techno.crate")
	crate, err := export.ReadCrate(cratePath)
	if err != nil {
		t.Fatalf("ReadCrate: %v", err)
	}
	if len(crate.TrackPaths) != 2 {
		t.Fatalf("crate tracks = %v", crate.TrackPaths)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.M3UDir, "deep.m3u8")); err != nil {
		t.Fatalf("m3u missing: %v", err)
	}
}
