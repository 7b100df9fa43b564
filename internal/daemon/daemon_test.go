package daemon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tonearm/internal/daemon"
	"tonearm/internal/logging"
	"tonearm/internal/queue"
	"tonearm/internal/stage"
	"tonearm/internal/testsupport"
	"tonearm/internal/workflow"
)

type idleStage struct{ name string }

func (s idleStage) Prepare(ctx context.Context, item *queue.Item) error { return nil }
func (s idleStage) Execute(ctx context.Context, item *queue.Item) error { return nil }
func (s idleStage) HealthCheck(ctx context.Context) stage.Health        { return stage.Healthy(s.name) }

func newDaemon(t *testing.T) (*daemon.Daemon, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManagerWithHandlers(cfg, store, logging.NewNop(),
		idleStage{"probe"}, idleStage{"analyze"}, idleStage{"tag"})
	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, store
}

func TestRunStopsOnCancel(t *testing.T) {
	d, store := newDaemon(t)

	stuck := testsupport.NewTrack(t, store, "[id=1] a.mp3")
	stuck.Status = queue.StatusAnalyzing
	if err := store.Update(context.Background(), stuck); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Running() {
		t.Fatal("daemon still marked running after shutdown")
	}

	recovered, err := store.GetByID(context.Background(), stuck.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if recovered.Status == queue.StatusAnalyzing {
		t.Fatalf("stuck item not reset: %+v", recovered)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestRunRejectsSecondInstance(t *testing.T) {
	d, _ := newDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	waitFor(t, func() bool { return d.Running() })

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("expected error for second Run on the same daemon")
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
