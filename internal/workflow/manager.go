package workflow

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"tonearm/internal/analyzer"
	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/prober"
	"tonearm/internal/queue"
	"tonearm/internal/stage"
	"tonearm/internal/tagger"
)

// pipelineStage couples a handler with the statuses it moves items between.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Summary reports what one processing pass accomplished.
type Summary struct {
	Processed int
	Failed    int
}

// Manager coordinates queue processing using the registered stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	stages     map[queue.Status]pipelineStage
	stageOrder []queue.Status

	mu      sync.Mutex
	lastErr error
}

// NewManager constructs a workflow manager with the production stage
// handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithHandlers(cfg, store, logger,
		prober.New(cfg, store, logger),
		analyzer.New(cfg, store, logger),
		tagger.New(cfg, store, logger),
	)
}

// NewManagerWithHandlers allows injecting stage handlers (used in tests).
func NewManagerWithHandlers(cfg *config.Config, store *queue.Store, logger *slog.Logger, probe, analyze, tag stage.Handler) *Manager {
	if logger != nil {
		logger = logger.With(logging.String("component", "workflow-manager"))
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		stages:       make(map[queue.Status]pipelineStage),
	}
	m.register(queue.StatusPending, pipelineStage{
		name:             "probe",
		handler:          probe,
		processingStatus: queue.StatusProbing,
		doneStatus:       queue.StatusProbed,
	})
	m.register(queue.StatusProbed, pipelineStage{
		name:             "analyze",
		handler:          analyze,
		processingStatus: queue.StatusAnalyzing,
		doneStatus:       queue.StatusAnalyzed,
	})
	m.register(queue.StatusAnalyzed, pipelineStage{
		name:             "tag",
		handler:          tag,
		processingStatus: queue.StatusTagging,
		doneStatus:       queue.StatusCompleted,
	})
	return m
}

func (m *Manager) register(ready queue.Status, ps pipelineStage) {
	m.stages[ready] = ps
	m.stageOrder = append(m.stageOrder, ready)
}

// Health reports the readiness of every registered stage in pipeline order.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stageOrder))
	for _, ready := range m.stageOrder {
		ps := m.stages[ready]
		if ps.handler == nil {
			checks = append(checks, stage.Unhealthy(ps.name, "handler unavailable"))
			continue
		}
		checks = append(checks, ps.handler.HealthCheck(ctx))
	}
	return checks
}

// LastError returns the most recent stage failure, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}
