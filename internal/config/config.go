package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir     string `toml:"cache_dir"`
	PlaylistsDir string `toml:"playlists_dir"`
	LogDir       string `toml:"log_dir"`
	SeratoDir    string `toml:"serato_dir"`
	M3UDir       string `toml:"m3u_dir"`
}

// SoundCloud contains configuration for the library downloader.
type SoundCloud struct {
	PlaylistURLs    []string `toml:"playlist_urls"`
	AudioFormat     string   `toml:"audio_format"`
	DownloadTimeout int      `toml:"download_timeout"`
}

// Analysis contains configuration for key detection.
type Analysis struct {
	Profile    string  `toml:"profile"`
	WindowSize int     `toml:"window_size"`
	HopSize    int     `toml:"hop_size"`
	MaxSeconds float64 `toml:"max_seconds"`
}

// Tags contains configuration for ID3 tag writing.
type Tags struct {
	WriteKey      bool `toml:"write_key"`
	WritePlaylist bool `toml:"write_playlist"`
}

// Export contains configuration for crate and playlist export.
type Export struct {
	ParentCrate       string   `toml:"parent_crate"`
	PlaylistBlacklist []string `toml:"playlist_blacklist"`
}

// Workflow contains configuration for queue processing timing.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tonearm.
//
// Configuration sections by subsystem:
//   - Paths: cache, playlist metadata, log, and export directories
//   - SoundCloud: playlist URLs and downloader behavior
//   - Analysis: key detection profile and STFT parameters
//   - Tags: which ID3 frames batch tagging writes
//   - Export: Serato parent crate name and playlist blacklist
//   - Workflow: queue polling intervals
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	SoundCloud SoundCloud `toml:"soundcloud"`
	Analysis   Analysis   `toml:"analysis"`
	Tags       Tags       `toml:"tags"`
	Export     Export     `toml:"export"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tonearm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tonearm.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for operation. The Serato
// and M3U directories are created on a best-effort basis so runs still work
// when an export target lives on detached storage.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.PlaylistsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, dir := range []string{c.Paths.SeratoDir, c.Paths.M3UDir} {
		if strings.TrimSpace(dir) != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return nil
}

// DownloaderBinary returns the yt-dlp executable name.
func (c *Config) DownloaderBinary() string {
	return "yt-dlp"
}

// FFmpegBinary returns the ffmpeg executable name used for decoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// ResultsFile returns the path of the flat key analysis results file.
func (c *Config) ResultsFile() string {
	return filepath.Join(c.Paths.CacheDir, "key_analysis_results.txt")
}

// ArchiveFile returns the path of the downloader's skip-list archive.
func (c *Config) ArchiveFile() string {
	return filepath.Join(c.Paths.CacheDir, "downloaded.txt")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
