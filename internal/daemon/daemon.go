// Package daemon runs the workflow manager as a long-lived watcher with
// flock-based locking so only one tonearm instance processes the queue.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/workflow"
)

// Daemon coordinates background queue processing and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "tonearm.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String("component", "daemon")),
		store:    store,
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockFilePath returns the lock file guarding single-instance execution.
func (d *Daemon) LockFilePath() string {
	return d.lockPath
}

// Running reports whether the daemon loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Run acquires the instance lock, resets items stuck in processing statuses
// from a previous crash, and watches the queue until the context ends.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tonearm instance is already running")
	}
	defer func() {
		_ = d.lock.Unlock()
	}()

	d.running.Store(true)
	defer d.running.Store(false)

	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		return fmt.Errorf("recover queue: %w", err)
	}
	if reset > 0 {
		d.logger.Info("reset stuck processing items", logging.Int64("count", reset))
	}

	d.logger.Info("daemon started", logging.String("lock_file", d.lockPath))
	err = d.workflow.Watch(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		d.logger.Info("daemon stopped")
		return nil
	}
	return err
}
