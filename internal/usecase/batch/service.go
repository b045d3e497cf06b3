package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	"github.com/kailas-cloud/docindex/internal/domain"
	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	"github.com/kailas-cloud/docindex/internal/logger"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Item is one document to create.
type Item struct {
	Text    string
	Rubrics string
}

// Service handles batch document operations with per-item error reporting.
// All accepted items of one call share a single transaction, so the index
// receives one change set per batch.
type Service struct {
	docs         DocumentWriter
	tx           TxRunner
	now          func() time.Time
	maxBatchSize int
}

// New creates a batch service.
func New(docs DocumentWriter, tx TxRunner) *Service {
	return &Service{docs: docs, tx: tx, now: time.Now, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create stores documents in batch. A rejected item (invalid or duplicate
// text) does not affect the others.
func (s *Service) Create(ctx context.Context, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))
	if len(items) > s.maxBatchSize {
		return failAll(results, fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument))
	}

	created := s.now()
	docs := make([]domdoc.Document, len(items))
	valid := make([]int, 0, len(items))
	for i, item := range items {
		doc, err := domdoc.New(item.Text, item.Rubrics, created)
		if err != nil {
			results[i] = dombatch.NewError(i, err)
			continue
		}
		docs[i] = doc
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return results
	}

	err := s.tx.WithTx(ctx, func(tx *sqlite.Tx) error {
		for _, i := range valid {
			// A constraint failure aborts only its own statement.
			if err := s.docs.Insert(ctx, tx, &docs[i]); err != nil {
				results[i] = dombatch.NewError(i, err)
				continue
			}
			results[i] = dombatch.NewOK(i, docs[i].ID())
		}
		return nil
	})
	return s.settle(ctx, "batch create", results, valid, err)
}

// Delete removes documents by id in batch.
func (s *Service) Delete(ctx context.Context, ids []int64) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))
	if len(ids) > s.maxBatchSize {
		return failAll(results, fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidDocument))
	}
	if len(ids) == 0 {
		return results
	}

	all := make([]int, len(ids))
	err := s.tx.WithTx(ctx, func(tx *sqlite.Tx) error {
		for i, id := range ids {
			all[i] = i
			doc, err := s.docs.Get(ctx, tx, id)
			if err != nil {
				results[i] = dombatch.NewError(i, err)
				continue
			}
			if err := s.docs.Delete(ctx, tx, &doc); err != nil {
				results[i] = dombatch.NewError(i, err)
				continue
			}
			results[i] = dombatch.NewOK(i, id)
		}
		return nil
	})
	return s.settle(ctx, "batch delete", results, all, err)
}

// settle applies the transaction outcome to the per-item results.
// Items that succeeded in a transaction that did not commit fail with it.
func (s *Service) settle(ctx context.Context, op string, results []dombatch.Result, idx []int, err error) []dombatch.Result {
	if err == nil {
		return results
	}
	if errors.Is(err, sqlite.ErrAfterCommit) {
		logger.FromContext(ctx).Warn("search index out of sync",
			zap.String("op", op),
			zap.Int("items", len(idx)),
			zap.Error(err),
		)
		return results
	}
	for _, i := range idx {
		if results[i].Status() == dombatch.StatusOK {
			results[i] = dombatch.NewError(i, fmt.Errorf("commit: %w", err))
		}
	}
	return results
}

func failAll(results []dombatch.Result, err error) []dombatch.Result {
	for i := range results {
		results[i] = dombatch.NewError(i, err)
	}
	return results
}
