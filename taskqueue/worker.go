package taskqueue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker drains a Queue with a pool of goroutines, transitioning each task
// through running and into completed or failed.
type Worker struct {
	queue   *Queue
	workers int
	logger  *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// NewWorker creates a worker pool over queue. A nil logger disables logging.
func NewWorker(queue *Queue, cfg Config, logger *zap.Logger) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:   queue,
		workers: cfg.Workers,
		logger:  logger,
	}, nil
}

// Start launches the pool. It returns immediately; tasks execute until the
// given context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		ctx, w.cancel = context.WithCancel(ctx)
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.loop(ctx, i)
		}
		w.logger.Info("task workers started", zap.Int("workers", w.workers))
	})
}

// Stop cancels the pool and waits for in-flight tasks to settle.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.logger.Info("task workers stopped")
}

func (w *Worker) loop(ctx context.Context, id int) {
	defer w.wg.Done()

	// The wake channel covers enqueues while idle; the ticker covers wakeups
	// lost to a sibling worker that drained the queue first.
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		for {
			task, ok := w.queue.Next()
			if !ok {
				break
			}
			w.execute(ctx, task)
		}

		select {
		case <-ctx.Done():
			return
		case <-w.queue.wakeCh():
		case <-ticker.C:
		}
	}
}

func (w *Worker) execute(ctx context.Context, task Task) {
	if task.run == nil {
		w.queue.UpdateStatus(task.ID, StatusFailed, nil, "task has no run function")
		return
	}

	w.queue.UpdateStatus(task.ID, StatusRunning, nil, "")
	w.logger.Debug("task started", zap.String("id", task.ID), zap.String("name", task.Name))

	result, err := task.run(ctx)
	if err != nil {
		w.queue.UpdateStatus(task.ID, StatusFailed, nil, err.Error())
		w.logger.Error("task failed",
			zap.String("id", task.ID),
			zap.String("name", task.Name),
			zap.Error(err),
		)
		return
	}

	w.queue.UpdateStatus(task.ID, StatusCompleted, result, "")
	w.logger.Debug("task completed", zap.String("id", task.ID), zap.String("name", task.Name))
}
