// Package analyzer runs key detection over probed tracks and records the
// outcome in both the queue and the flat results file.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"tonearm/internal/config"
	"tonearm/internal/keydetect"
	"tonearm/internal/logging"
	"tonearm/internal/media/pcm"
	"tonearm/internal/queue"
	"tonearm/internal/results"
	"tonearm/internal/services"
	"tonearm/internal/stage"
)

// Detector matches keydetect.Detector so tests can stub detection.
type Detector interface {
	Detect(ctx context.Context, path string) (keydetect.Result, error)
}

// Analyzer estimates the musical key of queued tracks.
type Analyzer struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	detector Detector
	results  *results.Store
}

// New constructs the analysis handler with the ffmpeg-backed detector.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Analyzer {
	detector, err := BuildDetector(cfg)
	if err != nil {
		logger.Warn("key detector unavailable", logging.Error(err))
	}
	return NewWithDetector(cfg, store, logger, detector)
}

// NewWithDetector allows injecting the detector (used in tests).
func NewWithDetector(cfg *config.Config, store *queue.Store, logger *slog.Logger, detector Detector) *Analyzer {
	if logger != nil {
		logger = logger.With(logging.String("component", "analyzer"))
	}
	return &Analyzer{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		detector: detector,
		results:  results.NewStore(cfg.ResultsFile()),
	}
}

// BuildDetector assembles the production decode and estimation pipeline from
// configuration.
func BuildDetector(cfg *config.Config) (*keydetect.Detector, error) {
	profile, err := keydetect.ParseProfile(cfg.Analysis.Profile)
	if err != nil {
		return nil, err
	}
	decoder := &pcm.Decoder{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
		MaxSeconds:    cfg.Analysis.MaxSeconds,
	}
	estimator := keydetect.NewChromaEstimator(keydetect.ChromaParams{
		WindowSize: cfg.Analysis.WindowSize,
		HopSize:    cfg.Analysis.HopSize,
		Profile:    profile,
	})
	return keydetect.NewDetector(decoder, estimator), nil
}

func (a *Analyzer) Prepare(ctx context.Context, item *queue.Item) error {
	item.ProgressStage = "Analyzing"
	item.ProgressMessage = "Estimating musical key"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	if a.detector == nil {
		return services.Wrap(
			services.ErrConfiguration,
			"analysis",
			"detector",
			"Key detector unavailable; check the analysis profile setting",
			nil,
		)
	}

	path := a.sourcePath(item)
	result, err := a.detector.Detect(ctx, path)
	if err != nil {
		if recordErr := a.results.AppendError(item.RelPath); recordErr != nil {
			logger.Warn("failed to record analysis error", logging.Error(recordErr))
		}
		marker := services.ErrExternalTool
		if errors.Is(err, keydetect.ErrEstimation) {
			marker = services.ErrTransient
		}
		return services.Wrap(
			marker,
			"analysis",
			"key detection",
			"Key detection failed for "+item.RelPath,
			err,
		)
	}

	if err := a.results.Append(item.RelPath, result.Key, result.Camelot); err != nil {
		return services.Wrap(
			services.ErrTransient,
			"analysis",
			"record result",
			"Failed to append to the results file",
			err,
		)
	}

	item.KeyLabel = result.Key
	item.CamelotLabel = result.Camelot
	item.SetProgress("Analyzed", result.String(), 100)
	logger.Info("key detected",
		logging.String("file", item.RelPath),
		logging.String("key", result.Key),
		logging.String("camelot", result.Camelot),
	)
	return nil
}

// HealthCheck verifies the decode dependencies and detector wiring.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if a.detector == nil {
		return stage.Unhealthy(name, "key detector unavailable")
	}
	binary := strings.TrimSpace(a.cfg.FFmpegBinary())
	if binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg binary %q not found", binary))
	}
	return stage.Healthy(name)
}

func (a *Analyzer) sourcePath(item *queue.Item) string {
	if strings.TrimSpace(item.SourcePath) != "" {
		return item.SourcePath
	}
	return filepath.Join(a.cfg.Paths.CacheDir, item.RelPath)
}
