package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	"github.com/kailas-cloud/docindex/internal/logger"
)

// Service handles document CRUD. Index updates follow each commit.
type Service struct {
	repo Repository
	tx   TxRunner
	sync IndexSync
	now  func() time.Time
}

// New creates a document service.
func New(repo Repository, tx TxRunner, sync IndexSync) *Service {
	return &Service{repo: repo, tx: tx, sync: sync, now: time.Now}
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create stores a new document and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, text, rubrics string) (domdoc.Document, error) {
	doc, err := domdoc.New(text, rubrics, s.now())
	if err != nil {
		return domdoc.Document{}, err
	}
	err = s.tx.WithTx(ctx, func(tx *sqlite.Tx) error {
		return s.repo.Insert(ctx, tx, &doc)
	})
	if err := s.settle(ctx, "create", doc.ID(), err); err != nil {
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id int64) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, nil, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update replaces text and rubrics of an existing document.
func (s *Service) Update(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error) {
	var doc domdoc.Document
	err := s.tx.WithTx(ctx, func(tx *sqlite.Tx) error {
		var err error
		doc, err = s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := doc.Update(text, rubrics); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, &doc)
	})
	if err := s.settle(ctx, "update", id, err); err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

// Delete removes a document from the store and, after commit, from the index.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *sqlite.Tx) error {
		doc, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, &doc)
	})
	if err := s.settle(ctx, "delete", id, err); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Unindex removes a document from the search index only. The stored row stays.
func (s *Service) Unindex(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, nil, id); err != nil {
		return fmt.Errorf("unindex document: %w", err)
	}
	if err := s.sync.RemoveDocument(ctx, domdoc.KindName, id); err != nil {
		return fmt.Errorf("unindex document %d: %w", id, err)
	}
	return nil
}

// Reindex pushes every stored document to the search index.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	n, err := s.sync.ReindexAll(ctx, domdoc.KindName, s.repo)
	if err != nil {
		return n, fmt.Errorf("reindex documents: %w", err)
	}
	return n, nil
}

// Count returns the number of stored documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// settle turns a post-commit index failure into a warning: the row is
// committed and a later reindex repairs the index.
func (s *Service) settle(ctx context.Context, op string, id int64, err error) error {
	if err == nil || !errors.Is(err, sqlite.ErrAfterCommit) {
		return err
	}
	logger.FromContext(ctx).Warn("search index out of sync",
		zap.String("op", op),
		zap.Int64("document_id", id),
		zap.Error(err),
	)
	return nil
}
