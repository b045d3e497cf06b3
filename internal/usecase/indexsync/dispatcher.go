package indexsync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docindex/internal/domain"
	"github.com/kailas-cloud/docindex/internal/logger"
	"github.com/kailas-cloud/docindex/internal/metrics"
)

const (
	defaultBatchSize = 200
	defaultWorkers   = 4
)

// Dispatcher pushes committed changes to the search index.
type Dispatcher struct {
	registry  *domain.Registry
	index     Indexer
	batchSize int
	workers   int
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(registry *domain.Registry, index Indexer) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		index:     index,
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
	}
}

// WithReindex configures the reindex page size and parallelism.
func (d *Dispatcher) WithReindex(batchSize, workers int) *Dispatcher {
	if batchSize > 0 {
		d.batchSize = batchSize
	}
	if workers > 0 {
		d.workers = workers
	}
	return d
}

// Dispatch indexes added and modified entities, then removes deleted ones.
// It stops at the first failure; entities handled before it stay indexed.
func (d *Dispatcher) Dispatch(ctx context.Context, cs domain.ChangeSet) error {
	if cs.IsEmpty() || !d.index.Configured() {
		return nil
	}

	err := d.dispatch(ctx, cs)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SyncDispatchTotal.WithLabelValues(status).Inc()

	logger.FromContext(ctx).Debug("Index sync dispatched",
		zap.Int("added", len(cs.Added)),
		zap.Int("modified", len(cs.Modified)),
		zap.Int("deleted", len(cs.Deleted)),
		zap.Bool("ok", err == nil),
	)
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, cs domain.ChangeSet) error {
	for _, group := range [][]domain.Searchable{cs.Added, cs.Modified} {
		for _, e := range group {
			kind, err := d.kind(e.Kind())
			if err != nil {
				return err
			}
			if err := d.index.IndexDocument(ctx, kind, e); err != nil {
				return fmt.Errorf("index %s %d: %w", e.Kind(), e.ID(), err)
			}
		}
	}
	for _, e := range cs.Deleted {
		kind, err := d.kind(e.Kind())
		if err != nil {
			return err
		}
		if err := d.index.RemoveDocument(ctx, kind, e.ID()); err != nil {
			return fmt.Errorf("remove %s %d: %w", e.Kind(), e.ID(), err)
		}
	}
	return nil
}

// RemoveDocument deletes one entity from the index without touching the store.
func (d *Dispatcher) RemoveDocument(ctx context.Context, kindName string, id int64) error {
	kind, err := d.kind(kindName)
	if err != nil {
		return err
	}
	if err := d.index.RemoveDocument(ctx, kind, id); err != nil {
		return fmt.Errorf("remove %s %d: %w", kindName, id, err)
	}
	return nil
}

// ReindexAll writes every persisted entity of the kind to the index and
// returns how many were written. The index is never cleared first, so
// running it twice leaves the same contents.
func (d *Dispatcher) ReindexAll(ctx context.Context, kindName string, src Source) (int, error) {
	kind, err := d.kind(kindName)
	if err != nil {
		return 0, err
	}
	if !d.index.Configured() {
		return 0, nil
	}
	if err := d.index.EnsureIndex(ctx, kind); err != nil {
		return 0, fmt.Errorf("ensure index %s: %w", kind.Index, err)
	}

	ctx, log := logger.With(ctx, zap.String("kind", kind.Name))
	start := time.Now()
	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	var listErr error
	var after int64
	for gctx.Err() == nil {
		batch, err := src.ListSearchable(gctx, after, d.batchSize)
		if err != nil {
			listErr = fmt.Errorf("list %s after %d: %w", kind.Name, after, err)
			break
		}
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			g.Go(func() error {
				if err := d.index.IndexDocument(gctx, kind, e); err != nil {
					return fmt.Errorf("index %s %d: %w", kind.Name, e.ID(), err)
				}
				written.Add(1)
				return nil
			})
		}
		after = batch[len(batch)-1].ID()
	}

	err = g.Wait()
	if err == nil {
		err = listErr
	}
	if err == nil {
		// Cancellation ends the loop without an error of its own.
		err = ctx.Err()
	}
	n := int(written.Load())
	metrics.ReindexDocumentsTotal.WithLabelValues(kind.Name).Add(float64(n))

	log.Info("Reindex finished",
		zap.Int("documents", n),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return n, err
}

func (d *Dispatcher) kind(name string) (domain.SearchKind, error) {
	k, ok := d.registry.Lookup(name)
	if !ok {
		return domain.SearchKind{}, fmt.Errorf("kind %q: %w", name, domain.ErrUnknownKind)
	}
	return k, nil
}
