// Package taskqueue provides an in-memory background task queue with status
// tracking and a worker pool that drains it.
package taskqueue

import (
	"context"
	"sort"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Status enumerates the lifecycle states of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RunFn is the unit of work a task executes.
type RunFn func(ctx context.Context) (any, error)

// Task is a snapshot of a queued unit of work. The queue owns the canonical
// record; accessors return copies so callers never mutate queue internals.
type Task struct {
	ID          string
	Name        string
	Status      Status
	Result      any
	Err         string
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time

	run RunFn
}

// Config holds queue and worker pool settings.
type Config struct {
	// Workers is the number of goroutines draining the queue.
	Workers int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{Workers: 2}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
	)
}

// Queue is an in-memory FIFO task queue. Safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	tasks   map[string]*Task
	pending []string
	wake    chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		tasks: make(map[string]*Task),
		wake:  make(chan struct{}, 1),
	}
}

// Enqueue registers a new pending task and returns its snapshot.
func (q *Queue) Enqueue(name string, run RunFn) Task {
	task := &Task{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
		run:       run,
	}

	q.mu.Lock()
	q.tasks[task.ID] = task
	q.pending = append(q.pending, task.ID)
	q.mu.Unlock()

	q.signal()
	return *task
}

// Next pops the next pending task. Stale queue slots (tasks whose status
// changed while queued) are skipped.
func (q *Queue) Next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) > 0 {
		id := q.pending[0]
		q.pending = q.pending[1:]

		task, ok := q.tasks[id]
		if ok && task.Status == StatusPending {
			return *task, true
		}
	}
	return Task{}, false
}

// UpdateStatus transitions a task and records timestamps, result, and error.
// Unknown IDs report false.
func (q *Queue) UpdateStatus(id string, status Status, result any, errMsg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[id]
	if !ok {
		return false
	}

	task.Status = status
	now := time.Now().UTC()

	if status == StatusRunning && task.StartedAt.IsZero() {
		task.StartedAt = now
	}
	if (status == StatusCompleted || status == StatusFailed) && task.CompletedAt.IsZero() {
		task.CompletedAt = now
	}
	if result != nil {
		task.Result = result
	}
	if errMsg != "" {
		task.Err = errMsg
	}
	return true
}

// Get returns a snapshot of the task with the given ID.
func (q *Queue) Get(id string) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// List returns snapshots of all known tasks, oldest first.
func (q *Queue) List() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := make([]Task, 0, len(q.tasks))
	for _, task := range q.tasks {
		tasks = append(tasks, *task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks
}

// signal wakes one idle worker without blocking the producer.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// wakeCh exposes the wake channel to the worker pool.
func (q *Queue) wakeCh() <-chan struct{} {
	return q.wake
}
