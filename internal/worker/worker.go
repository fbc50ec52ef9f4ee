// Package worker runs periodic maintenance tasks in the background.
//
// The worker holds a set of named tasks and runs all of them on a fixed
// interval. Tasks are independent; one task failing does not stop the
// others or the worker itself.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/metrics"
)

// Task is a single unit of maintenance work.
type Task interface {
	// Name identifies the task in logs and metrics.
	Name() string

	// Run performs the task. The returned count is task-specific
	// (items cleaned, sessions evicted) and is only used for logging.
	Run(ctx context.Context) (int64, error)
}

// Worker schedules maintenance tasks on a fixed interval.
type Worker struct {
	tasks    []Task
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a Worker that runs its tasks every interval.
// Tasks are registered with Register before Start is called.
func New(interval time.Duration, logger *slog.Logger) (*Worker, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("maintenance interval must be at least 1 second, got %v", interval)
	}

	return &Worker{
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Register adds a task to the worker. Call this before Start().
func (w *Worker) Register(task Task) {
	w.tasks = append(w.tasks, task)
	w.logger.Debug("Registered maintenance task", "task", task.Name())
}

// Start begins the maintenance loop in a background goroutine.
// The first run happens after one full interval, not immediately.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	w.logger.Info("Maintenance worker started", "interval", w.interval, "tasks", len(w.tasks))
}

// Stop signals the worker to stop and waits for the current run to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info("Maintenance worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runAll(ctx)
		}
	}
}

// runAll executes every registered task once.
func (w *Worker) runAll(ctx context.Context) {
	for _, task := range w.tasks {
		start := time.Now()
		count, err := task.Run(ctx)
		if err != nil {
			metrics.MaintenanceRunsTotal.WithLabelValues(task.Name(), "error").Inc()
			w.logger.Error("Maintenance task failed",
				"task", task.Name(),
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			continue
		}

		metrics.MaintenanceRunsTotal.WithLabelValues(task.Name(), "ok").Inc()
		w.logger.Info("Maintenance task completed",
			"task", task.Name(),
			"count", count,
			"duration_ms", time.Since(start).Milliseconds())
	}
}
