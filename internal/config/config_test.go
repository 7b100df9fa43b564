package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, "Music", "soundcloud", "CACHE")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.Paths.PlaylistsDir != filepath.Join(wantCache, "playlists") {
		t.Fatalf("unexpected playlists dir: %q", cfg.Paths.PlaylistsDir)
	}
	if cfg.Analysis.Profile != "edma" {
		t.Fatalf("unexpected analysis profile: %q", cfg.Analysis.Profile)
	}
	if !cfg.Tags.WriteKey || !cfg.Tags.WritePlaylist {
		t.Fatal("expected tag writing enabled by default")
	}
	if cfg.Export.ParentCrate != "sync" {
		t.Fatalf("unexpected parent crate: %q", cfg.Export.ParentCrate)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`cache_dir = "~/cache"`,
		"[soundcloud]",
		`playlist_urls = ["https://soundcloud.com/dj/sets/house", "", "https://soundcloud.com/dj/sets/house"]`,
		"[analysis]",
		`profile = "Shaath"`,
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, "cache") {
		t.Fatalf("cache dir not expanded: %q", cfg.Paths.CacheDir)
	}
	if len(cfg.SoundCloud.PlaylistURLs) != 1 {
		t.Fatalf("playlist urls not deduped: %v", cfg.SoundCloud.PlaylistURLs)
	}
	if cfg.Analysis.Profile != "shaath" {
		t.Fatalf("profile not lowercased: %q", cfg.Analysis.Profile)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format not normalized: %q", cfg.Logging.Format)
	}
	if cfg.ResultsFile() != filepath.Join(cfg.Paths.CacheDir, "key_analysis_results.txt") {
		t.Fatalf("unexpected results file: %q", cfg.ResultsFile())
	}
	if cfg.ArchiveFile() != filepath.Join(cfg.Paths.CacheDir, "downloaded.txt") {
		t.Fatalf("unexpected archive file: %q", cfg.ArchiveFile())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cases := []struct {
		name    string
		content string
	}{
		{"bad profile", "[analysis]\nprofile = \"temperley\"\n"},
		{"hop exceeds window", "[analysis]\nwindow_size = 1024\nhop_size = 4096\n"},
		{"bad playlist url", "[soundcloud]\nplaylist_urls = [\"ftp://nope\"]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[analysis]") {
		t.Fatal("sample config missing [analysis] section")
	}
}
