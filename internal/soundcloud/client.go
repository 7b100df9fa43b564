package soundcloud

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// OutputTemplate is the yt-dlp output template for cached tracks. The id
// token ties a file back to its playlist entries.
const OutputTemplate = "[id=%(id)s] %(title)s.%(ext)s"

// ProgressUpdate captures yt-dlp download progress output.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Playlist is the flattened view of a remote playlist.
type Playlist struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Entry is one track reference inside a playlist.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Downloader defines the behaviour required by the syncer.
type Downloader interface {
	PlaylistInfo(ctx context.Context, url string) (*Playlist, error)
	Download(ctx context.Context, url, destDir string, progress func(ProgressUpdate)) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary      string
	audioFormat string
	archiveFile string
	timeout     time.Duration
	exec        Executor
}

// New constructs a yt-dlp client.
func New(binary, audioFormat, archiveFile string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("downloader binary required")
	}
	client := &Client{
		binary:      binary,
		audioFormat: strings.TrimSpace(audioFormat),
		archiveFile: strings.TrimSpace(archiveFile),
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		exec:        commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PlaylistInfo fetches the flat playlist JSON for a URL without downloading
// any media.
func (c *Client) PlaylistInfo(ctx context.Context, url string) (*Playlist, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("playlist url required")
	}
	runCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	args := []string{"-J", "--flat-playlist", url}
	var payload string
	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		// yt-dlp emits the playlist as a single JSON line on stdout;
		// warnings arrive on other lines and are ignored.
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			payload = trimmed
		}
	})
	if err != nil {
		return nil, fmt.Errorf("playlist info: %w", err)
	}
	if payload == "" {
		return nil, errors.New("playlist info: no JSON output")
	}

	var playlist Playlist
	if err := json.Unmarshal([]byte(payload), &playlist); err != nil {
		return nil, fmt.Errorf("playlist info: parse: %w", err)
	}
	if playlist.Title == "" {
		playlist.Title = playlist.ID
	}
	return &playlist, nil
}

// Download fetches a playlist or single track into destDir, extracting audio
// in the configured format. Already-archived tracks are skipped by yt-dlp.
func (c *Client) Download(ctx context.Context, url, destDir string, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("download url required")
	}
	if strings.TrimSpace(destDir) == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	runCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	args := []string{
		"--newline",
		"--no-warnings",
		"--extract-audio",
		"--audio-format", c.audioFormat,
		"--paths", destDir,
		"--output", OutputTemplate,
	}
	if c.archiveFile != "" {
		args = append(args, "--download-archive", c.archiveFile)
	}
	args = append(args, url)

	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseProgress(line); ok {
			progress(update)
		}
	})
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// parseProgress reads yt-dlp --newline progress lines of the form
// "[download]  42.3% of 5.21MiB at 1.10MiB/s ETA 00:03".
func parseProgress(line string) (ProgressUpdate, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[download]") {
		return ProgressUpdate{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "[download]"))
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], "%") {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Percent: percent, Message: rest}, true
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onLine != nil {
			onLine(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
