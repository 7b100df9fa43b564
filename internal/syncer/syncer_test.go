package syncer_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/soundcloud"
	"tonearm/internal/syncer"
	"tonearm/internal/testsupport"
)

type fakeDownloader struct {
	playlists map[string]*soundcloud.Playlist
	files     map[string][]string
	infoCalls []string
	downloads []string
}

func (f *fakeDownloader) PlaylistInfo(ctx context.Context, url string) (*soundcloud.Playlist, error) {
	f.infoCalls = append(f.infoCalls, url)
	return f.playlists[url], nil
}

func (f *fakeDownloader) Download(ctx context.Context, url, destDir string, progress func(soundcloud.ProgressUpdate)) error {
	f.downloads = append(f.downloads, url)
	if progress != nil {
		progress(soundcloud.ProgressUpdate{Percent: 100, Message: "done"})
	}
	for _, name := range f.files[url] {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(destDir, name), []byte("audio"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestSyncMirrorsAndEnqueues(t *testing.T) {
	const url = "https://soundcloud.com/x/sets/techno"
	cfg := testsupport.NewConfig(t, testsupport.WithPlaylistURLs(url))
	store := testsupport.MustOpenStore(t, cfg)

	fake := &fakeDownloader{
		playlists: map[string]*soundcloud.Playlist{
			url: {
				Title: "techno",
				Entries: []soundcloud.Entry{
					{ID: "1", Title: "a"},
					{ID: "2", Title: "b"},
				},
			},
		},
		files: map[string][]string{
			url: {"[id=1] a.mp3", "[id=2] b.mp3"},
		},
	}
	s := syncer.NewWithClient(cfg, store, logging.NewNop(), fake)

	summary, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if summary.Playlists != 1 || summary.Tracks != 2 || summary.Enqueued != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	snapshot := filepath.Join(cfg.Paths.PlaylistsDir, "techno.json")
	raw, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var parsed struct {
		Entries []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if len(parsed.Entries) != 2 || parsed.Entries[0].ID != "1" {
		t.Fatalf("snapshot = %+v", parsed)
	}

	item, err := store.FindByRelPath(context.Background(), "[id=1] a.mp3")
	if err != nil {
		t.Fatalf("FindByRelPath: %v", err)
	}
	if item == nil || item.Status != queue.StatusPending {
		t.Fatalf("item = %+v", item)
	}
	if item.TrackID != "1" || item.Title != "a" {
		t.Fatalf("item metadata = %+v", item)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	const url = "https://soundcloud.com/x/sets/techno"
	cfg := testsupport.NewConfig(t, testsupport.WithPlaylistURLs(url))
	store := testsupport.MustOpenStore(t, cfg)

	fake := &fakeDownloader{
		playlists: map[string]*soundcloud.Playlist{
			url: {Title: "techno", Entries: []soundcloud.Entry{{ID: "1", Title: "a"}}},
		},
		files: map[string][]string{url: {"[id=1] a.mp3"}},
	}
	s := syncer.NewWithClient(cfg, store, logging.NewNop(), fake)

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	summary, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if summary.Enqueued != 0 {
		t.Fatalf("second pass enqueued = %d, want 0", summary.Enqueued)
	}
}

func TestScanCacheSkipsPlaylistsDirAndNonAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.CacheDir, "[id=1] a.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.CacheDir, "cover.jpg"), 16)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.PlaylistsDir, "techno.json"), 16)

	s := syncer.NewWithClient(cfg, store, logging.NewNop(), &fakeDownloader{})
	enqueued, err := s.ScanCache(context.Background())
	if err != nil {
		t.Fatalf("ScanCache: %v", err)
	}
	if enqueued != 1 {
		t.Fatalf("enqueued = %d, want 1", enqueued)
	}
}
