package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSoundCloud()
	c.normalizeAnalysis()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PlaylistsDir) == "" {
		c.Paths.PlaylistsDir = filepath.Join(c.Paths.CacheDir, "playlists")
	}
	if c.Paths.PlaylistsDir, err = expandPath(c.Paths.PlaylistsDir); err != nil {
		return fmt.Errorf("paths.playlists_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SeratoDir) == "" {
		c.Paths.SeratoDir = defaultSeratoDir
	}
	if c.Paths.SeratoDir, err = expandPath(c.Paths.SeratoDir); err != nil {
		return fmt.Errorf("paths.serato_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.M3UDir) == "" {
		c.Paths.M3UDir = defaultM3UDir
	}
	if c.Paths.M3UDir, err = expandPath(c.Paths.M3UDir); err != nil {
		return fmt.Errorf("paths.m3u_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSoundCloud() {
	urls := make([]string, 0, len(c.SoundCloud.PlaylistURLs))
	seen := make(map[string]struct{}, len(c.SoundCloud.PlaylistURLs))
	for _, raw := range c.SoundCloud.PlaylistURLs {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		if _, exists := seen[url]; exists {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	c.SoundCloud.PlaylistURLs = urls

	c.SoundCloud.AudioFormat = strings.ToLower(strings.TrimSpace(c.SoundCloud.AudioFormat))
	if c.SoundCloud.AudioFormat == "" {
		c.SoundCloud.AudioFormat = defaultAudioFormat
	}
	if c.SoundCloud.DownloadTimeout <= 0 {
		c.SoundCloud.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.Profile = strings.ToLower(strings.TrimSpace(c.Analysis.Profile))
	if c.Analysis.Profile == "" {
		c.Analysis.Profile = defaultAnalysisProfile
	}
	if c.Analysis.WindowSize <= 0 {
		c.Analysis.WindowSize = defaultAnalysisWindow
	}
	if c.Analysis.HopSize <= 0 {
		c.Analysis.HopSize = defaultAnalysisHop
	}
	if c.Analysis.MaxSeconds < 0 {
		c.Analysis.MaxSeconds = 0
	}
}

func (c *Config) normalizeExport() {
	c.Export.ParentCrate = strings.TrimSpace(c.Export.ParentCrate)
	if c.Export.ParentCrate == "" {
		c.Export.ParentCrate = defaultParentCrate
	}
	names := make([]string, 0, len(c.Export.PlaylistBlacklist))
	seen := make(map[string]struct{}, len(c.Export.PlaylistBlacklist))
	for _, raw := range c.Export.PlaylistBlacklist {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	c.Export.PlaylistBlacklist = names
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
