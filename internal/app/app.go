// Package app is the composition root shared by the CLI and the embeddable client.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/config"
	"github.com/kailas-cloud/docindex/internal/db"
	dbBleve "github.com/kailas-cloud/docindex/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/docindex/internal/db/redis"
	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	"github.com/kailas-cloud/docindex/internal/domain"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	"github.com/kailas-cloud/docindex/internal/metrics"
	documentrepo "github.com/kailas-cloud/docindex/internal/repository/document"
	indexrepo "github.com/kailas-cloud/docindex/internal/repository/index"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/docindex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docindex/internal/usecase/health"
	"github.com/kailas-cloud/docindex/internal/usecase/indexsync"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Store      *sqlite.Store
	Backend    db.Backend // nil when the index driver is "none"
	Index      *indexrepo.Adapter
	Registry   *domain.Registry
	Dispatcher *indexsync.Dispatcher
	Documents  *documentuc.Service
	Batch      *batchuc.Service
	Search     *searchuc.Service[*domdoc.Document]
	Health     *healthuc.Service
}

// New opens the relational store and the index backend named by cfg and
// wires the services. The caller must Close the App.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterIndexMetrics()

	store, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Database.Path})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backend, err := OpenBackend(ctx, cfg.Index)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a, err := Wire(ctx, store, backend, cfg.Index, logger)
	if err != nil {
		if backend != nil {
			backend.Close()
		}
		_ = store.Close()
		return nil, err
	}

	// A memory-only index starts empty; refill it from a store that outlives
	// the process.
	if cfg.Index.MemoryOnly() && !cfg.Database.InMemory() {
		n, err := a.Documents.Reindex(ctx)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("rebuild in-memory index: %w", err)
		}
		logger.Info("Rebuilt in-memory index", zap.Int("documents", n))
	}
	return a, nil
}

// OpenBackend creates the index backend for the configured driver and waits
// until it answers. Driver "none" yields a nil backend.
func OpenBackend(ctx context.Context, cfg config.IndexConfig) (db.Backend, error) {
	var (
		backend db.Backend
		err     error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		backend, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverBleve:
		backend, err = dbBleve.NewStore(dbBleve.Config{DataDir: cfg.DataDir})
	case config.DriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s index backend: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := backend.WaitForReady(ctx, timeout); err != nil {
		backend.Close()
		return nil, fmt.Errorf("%s index backend not ready: %w", cfg.Driver, err)
	}
	return backend, nil
}

// Wire builds the services over an open store and an optional backend.
func Wire(ctx context.Context, store *sqlite.Store, backend db.Backend, cfg config.IndexConfig, logger *zap.Logger) (*App, error) {
	var adapter *indexrepo.Adapter
	if backend != nil {
		adapter = indexrepo.New(backend, indexrepo.WithSearchTimeout(cfg.SearchTimeout()))
	} else {
		// Pass an untyped nil: a typed nil pointer would look configured.
		adapter = indexrepo.New(nil)
	}

	registry, err := domain.NewRegistry(domdoc.SearchKind())
	if err != nil {
		return nil, fmt.Errorf("register searchable kinds: %w", err)
	}

	dispatcher := indexsync.NewDispatcher(registry, adapter).
		WithReindex(cfg.ReindexBatchSize, cfg.ReindexWorkers)
	store.RegisterHook(indexsync.NewTracker(registry, dispatcher))

	if adapter.Configured() {
		for _, kind := range registry.Kinds() {
			if err := adapter.EnsureIndex(ctx, kind); err != nil {
				// Index writes create the index on demand, so startup goes on.
				logger.Warn("Failed to ensure search index",
					zap.String("kind", kind.Name), zap.Error(err))
			}
		}
	}

	repo := documentrepo.New(store)

	return &App{
		Store:      store,
		Backend:    backend,
		Index:      adapter,
		Registry:   registry,
		Dispatcher: dispatcher,
		Documents:  documentuc.New(repo, store, dispatcher),
		Batch:      batchuc.New(repo, store).WithMaxBatchSize(cfg.MaxBatchSize),
		Search: searchuc.New[*domdoc.Document](domdoc.SearchKind(), adapter, repo).
			WithMaxPageSize(cfg.MaxPageSize),
		Health: healthuc.New(store, adapter),
	}, nil
}

// Close releases the backend and the store.
func (a *App) Close() error {
	if a.Backend != nil {
		a.Backend.Close()
	}
	return a.Store.Close()
}
