package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSoundCloud(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSoundCloud() error {
	for _, url := range c.SoundCloud.PlaylistURLs {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("soundcloud.playlist_urls entry %q must be an http(s) URL", url)
		}
	}
	if c.SoundCloud.DownloadTimeout <= 0 {
		return errors.New("soundcloud.download_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	switch c.Analysis.Profile {
	case "edma", "krumhansl", "shaath":
	default:
		return fmt.Errorf("analysis.profile %q is not supported (edma, krumhansl, shaath)", c.Analysis.Profile)
	}
	if c.Analysis.WindowSize <= 0 {
		return errors.New("analysis.window_size must be positive")
	}
	if c.Analysis.HopSize <= 0 {
		return errors.New("analysis.hop_size must be positive")
	}
	if c.Analysis.HopSize > c.Analysis.WindowSize {
		return errors.New("analysis.hop_size must not exceed analysis.window_size")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
