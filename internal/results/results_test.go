package results_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/results"
)

func newStore(t *testing.T) *results.Store {
	t.Helper()
	return results.NewStore(filepath.Join(t.TempDir(), "key_analysis_results.txt"))
}

func TestAppendAndLoad(t *testing.T) {
	store := newStore(t)

	if err := store.Append("[id=1] a.mp3", "Am", "8A"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.AppendError("[id=2] b.mp3"); err != nil {
		t.Fatalf("AppendError: %v", err)
	}
	if err := store.Append("[id=3] c.mp3", "F#m", "11A"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %v, want 2 entries", records)
	}
	if got := records["[id=1] a.mp3"]; got.Key != "Am" || got.Camelot != "8A" {
		t.Fatalf("record = %+v", got)
	}
	if got := records["[id=3] c.mp3"]; got.Key != "F#m" || got.Camelot != "11A" {
		t.Fatalf("record = %+v", got)
	}
	if _, ok := records["[id=2] b.mp3"]; ok {
		t.Fatal("error record leaked into Load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newStore(t)

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %v, want empty", records)
	}
}

func TestLoadLastRecordWins(t *testing.T) {
	store := newStore(t)

	if err := store.Append("[id=1] a.mp3", "C", "8B"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append("[id=1] a.mp3", "G", "9B"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := records["[id=1] a.mp3"]; got.Key != "G" || got.Camelot != "9B" {
		t.Fatalf("record = %+v, want last appended", got)
	}
}

func TestAnalyzedIncludesErrors(t *testing.T) {
	store := newStore(t)

	if err := store.Append("[id=1] a.mp3", "C", "8B"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.AppendError("[id=2] b.mp3"); err != nil {
		t.Fatalf("AppendError: %v", err)
	}

	seen, err := store.Analyzed()
	if err != nil {
		t.Fatalf("Analyzed: %v", err)
	}
	if !seen["[id=1] a.mp3"] || !seen["[id=2] b.mp3"] {
		t.Fatalf("seen = %v", seen)
	}
}

func TestDedupeKeepsLastPreservesOrder(t *testing.T) {
	store := newStore(t)

	if err := store.Append("[id=1] a.mp3", "C", "8B"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.AppendError("[id=2] b.mp3"); err != nil {
		t.Fatalf("AppendError: %v", err)
	}
	if err := store.Append("[id=1] a.mp3", "G", "9B"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := store.Dedupe(); err != nil {
		t.Fatalf("Dedupe: %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read results file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	want := []string{
		"[id=1] a.mp3|G (9B)",
		"[id=2] b.mp3|ERROR",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDedupeMissingFile(t *testing.T) {
	store := newStore(t)

	if err := store.Dedupe(); err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	raw := "garbage line without separator\n" +
		"\n" +
		"[id=1] a.mp3|Am (8A)\n" +
		"[id=2] b.mp3|NotAKeyFormat\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := results.NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v, want only well-formed entry", records)
	}
}
