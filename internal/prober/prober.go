// Package prober validates queued tracks with ffprobe before analysis.
package prober

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/media/ffprobe"
	"tonearm/internal/queue"
	"tonearm/internal/services"
	"tonearm/internal/stage"
)

// InspectFunc matches ffprobe.Inspect so tests can stub the probe.
type InspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Prober records container facts on queue items and rejects files that
// cannot be analyzed.
type Prober struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	inspect InspectFunc
}

// New constructs the probing handler with the real ffprobe inspector.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Prober {
	return NewWithInspector(cfg, store, logger, ffprobe.Inspect)
}

// NewWithInspector allows injecting the inspector (used in tests).
func NewWithInspector(cfg *config.Config, store *queue.Store, logger *slog.Logger, inspect InspectFunc) *Prober {
	if logger != nil {
		logger = logger.With(logging.String("component", "prober"))
	}
	return &Prober{cfg: cfg, store: store, logger: logger, inspect: inspect}
}

func (p *Prober) Prepare(ctx context.Context, item *queue.Item) error {
	item.ProgressStage = "Probing"
	item.ProgressMessage = "Inspecting audio"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (p *Prober) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	path := p.sourcePath(item)

	result, err := p.inspect(ctx, p.cfg.FFprobeBinary(), path)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"probing",
			"ffprobe inspect",
			"ffprobe failed; check that the file is readable",
			err,
		)
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(
			services.ErrValidation,
			"probing",
			"stream check",
			"File contains no audio stream",
			nil,
		)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return services.Wrap(
			services.ErrValidation,
			"probing",
			"duration check",
			"File reports no playable duration",
			nil,
		)
	}

	item.SampleRate = result.SampleRateHz()
	item.Channels = result.ChannelCount()
	item.DurationSeconds = duration
	item.SetProgress("Probed", "Audio verified", 100)
	logger.Info("probe completed",
		logging.String("file", item.RelPath),
		logging.Int("sample_rate", item.SampleRate),
		logging.Int("channels", item.Channels),
		logging.Float64("duration_seconds", duration),
	)
	return nil
}

// HealthCheck verifies the ffprobe dependency.
func (p *Prober) HealthCheck(ctx context.Context) stage.Health {
	const name = "prober"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := strings.TrimSpace(p.cfg.FFprobeBinary())
	if binary == "" {
		return stage.Unhealthy(name, "ffprobe binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffprobe binary %q not found", binary))
	}
	return stage.Healthy(name)
}

func (p *Prober) sourcePath(item *queue.Item) string {
	if strings.TrimSpace(item.SourcePath) != "" {
		return item.SourcePath
	}
	return filepath.Join(p.cfg.Paths.CacheDir, item.RelPath)
}
