package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/services"
)

// readyStatuses returns the statuses the manager picks work from. The store
// serves the oldest ready item, so a track naturally runs probe, analyze,
// and tag back to back before newer tracks start.
func (m *Manager) readyStatuses() []queue.Status {
	statuses := make([]queue.Status, len(m.stageOrder))
	copy(statuses, m.stageOrder)
	return statuses
}

// RunUntilIdle processes queue items until none are ready or the context is
// cancelled. Failed items are recorded and skipped, not retried.
func (m *Manager) RunUntilIdle(ctx context.Context) (Summary, error) {
	var summary Summary
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item, err := m.store.NextForStatuses(ctx, m.readyStatuses()...)
		if err != nil {
			return summary, fmt.Errorf("next queue item: %w", err)
		}
		if item == nil {
			return summary, nil
		}
		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return summary, err
			}
			summary.Failed++
			continue
		}
		summary.Processed++
	}
}

// Watch runs processing passes on the configured poll interval until the
// context is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	interval := m.pollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunUntilIdle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("processing pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	ps, ok := m.stages[item.Status]
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		return fmt.Errorf("no stage for status %s", item.Status)
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(ctx, requestID)
	stageCtx = services.WithItemID(stageCtx, item.ID)
	stageCtx = services.WithStage(stageCtx, ps.name)
	logger := logging.WithContext(stageCtx, m.logger)

	if ps.handler == nil {
		item.SetFailed(fmt.Sprintf("stage %s missing handler", ps.name))
		if err := m.store.Update(stageCtx, item); err != nil {
			logger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	item.Status = ps.processingStatus
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist processing transition: %w", err)
		m.setLastError(wrapped)
		return wrapped
	}

	stageStart := time.Now()
	logger.Info("stage started",
		logging.String("file", item.RelPath),
		logging.String("processing_status", string(ps.processingStatus)),
	)

	if err := ps.handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, ps, item, err)
		return err
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if err := ps.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, ps, item, err)
		return err
	}

	if item.Status == ps.processingStatus || item.Status == "" {
		item.Status = ps.doneStatus
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	logger.Info("stage completed",
		logging.String("file", item.RelPath),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, ps pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", ps.name)
	}
	item.SetFailed(message)

	logger.Error("stage failed",
		logging.String("file", item.RelPath),
		logging.String("stage", ps.name),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown during failure persistence")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastError(stageErr)
}
