// Package di wires the toolkit's components together with an explicit
// lifecycle: construct at bootstrap, Start, Shutdown at exit. There are no
// module-level singletons.
package di

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/funccache"
	"github.com/goliatone/go-function-cache/internal/memstore"
	"github.com/goliatone/go-function-cache/manage"
	"github.com/goliatone/go-function-cache/pkg/config"
	"github.com/goliatone/go-function-cache/taskqueue"
)

// Container provides dependency injection for the caching components. It owns
// singleton instances of the store, key serializer, registry, and task queue.
type Container struct {
	cfg        config.File
	store      *memstore.Store
	serializer cache.KeySerializer
	registry   *manage.Registry
	queue      *taskqueue.Queue
	worker     *taskqueue.Worker
	logger     *zap.Logger
}

// NewContainer creates a container from the provided configuration. A nil
// logger disables logging.
func NewContainer(cfg config.File, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := memstore.New(cfg.CacheConfig(), logger.Named("cache"))
	if err != nil {
		return nil, err
	}

	queue := taskqueue.NewQueue()
	worker, err := taskqueue.NewWorker(queue, cfg.TaskConfig(), logger.Named("tasks"))
	if err != nil {
		return nil, err
	}

	return &Container{
		cfg:        cfg,
		store:      store,
		serializer: cache.NewDefaultKeySerializer(),
		registry:   manage.NewRegistry(),
		queue:      queue,
		worker:     worker,
		logger:     logger,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration.
// This is a convenience constructor for typical use cases where custom
// configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(config.Default(), nil)
}

// Start launches background components (the task worker pool).
func (c *Container) Start(ctx context.Context) {
	c.worker.Start(ctx)
}

// Shutdown stops the worker pool and the store's background sweep.
func (c *Container) Shutdown(ctx context.Context) error {
	c.worker.Stop()
	return c.store.Close()
}

// Store returns the singleton cache store instance.
func (c *Container) Store() cache.Store {
	return c.store
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.serializer
}

// Registry returns the management registry of cached functions.
func (c *Container) Registry() *manage.Registry {
	return c.registry
}

// TaskQueue returns the singleton task queue instance.
func (c *Container) TaskQueue() *taskqueue.Queue {
	return c.queue
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.File {
	return c.cfg
}

// CachedFunc wraps fn with the container's store, serializer, and registry.
// Options already set by the caller win over the container's components.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example: CachedFunc(container, loadUser, opts)
func CachedFunc[F any](c *Container, fn F, opts funccache.Options) (F, error) {
	if opts.Store == nil {
		opts.Store = c.store
	}
	if opts.Serializer == nil {
		opts.Serializer = c.serializer
	}
	if opts.Registry == nil {
		opts.Registry = c.registry
	}
	return funccache.Wrap(fn, opts)
}
