// Package results maintains the flat key analysis results file.
//
// Each line records one track: "relative_path|Key (Camelot)" on success or
// "relative_path|ERROR" when analysis failed. The file is append-only during
// a run; Dedupe rewrites it keeping the last record per path.
package results

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrorSentinel marks a failed analysis in the results file.
const ErrorSentinel = "ERROR"

// Record is one successful analysis result.
type Record struct {
	Key     string
	Camelot string
}

// Store appends and reads records in a single results file.
type Store struct {
	path string
}

// NewStore returns a store over the given results file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the underlying file path.
func (s *Store) Path() string {
	return s.path
}

// Append records a successful analysis for a cache-relative path.
func (s *Store) Append(relPath, key, camelot string) error {
	return s.appendLine(fmt.Sprintf("%s|%s (%s)", relPath, key, camelot))
}

// AppendError records a failed analysis for a cache-relative path.
func (s *Store) AppendError(relPath string) error {
	return s.appendLine(relPath + "|" + ErrorSentinel)
}

func (s *Store) appendLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return errors.New("results: empty line")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("results: ensure dir: %w", err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("results: open: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("results: append: %w", err)
	}
	return nil
}

// Load reads all successful records, keyed by relative path. Blank lines,
// malformed lines, and ERROR records are skipped. When a path appears more
// than once the last record wins.
func (s *Store) Load() (map[string]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("results: open: %w", err)
	}
	defer file.Close()

	records := make(map[string]Record)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		relPath, record, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		records[relPath] = record
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("results: read: %w", err)
	}
	return records, nil
}

// Analyzed reports every path with any record, including ERROR ones. Used to
// skip re-analysis of tracks that already have an outcome.
func (s *Store) Analyzed() (map[string]bool, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("results: open: %w", err)
	}
	defer file.Close()

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, "|")
		if idx <= 0 {
			continue
		}
		seen[line[:idx]] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("results: read: %w", err)
	}
	return seen, nil
}

// Dedupe rewrites the file keeping only the last record per path, preserving
// first-seen order. ERROR records survive dedup so failed tracks are not
// re-analyzed. The rewrite is atomic.
func (s *Store) Dedupe() error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("results: open: %w", err)
	}

	var order []string
	last := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, "|")
		if idx <= 0 {
			continue
		}
		relPath := line[:idx]
		if _, seen := last[relPath]; !seen {
			order = append(order, relPath)
		}
		last[relPath] = line
	}
	scanErr := scanner.Err()
	file.Close()
	if scanErr != nil {
		return fmt.Errorf("results: read: %w", scanErr)
	}

	var out strings.Builder
	for _, relPath := range order {
		out.WriteString(last[relPath])
		out.WriteByte('\n')
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("results: write temp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("results: replace: %w", err)
	}
	return nil
}

// parseLine splits "rel|Key (Camelot)" into its parts. ERROR records and
// malformed lines return ok=false.
func parseLine(raw string) (string, Record, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", Record{}, false
	}
	idx := strings.LastIndex(line, "|")
	if idx <= 0 {
		return "", Record{}, false
	}
	relPath := line[:idx]
	value := strings.TrimSpace(line[idx+1:])
	if value == "" || value == ErrorSentinel {
		return "", Record{}, false
	}
	open := strings.LastIndex(value, " (")
	if open <= 0 || !strings.HasSuffix(value, ")") {
		return "", Record{}, false
	}
	key := value[:open]
	camelot := value[open+2 : len(value)-1]
	if key == "" || camelot == "" {
		return "", Record{}, false
	}
	return relPath, Record{Key: key, Camelot: camelot}, true
}
