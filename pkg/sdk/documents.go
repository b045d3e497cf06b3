package docindex

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
)

// DocumentService manages stored documents.
type DocumentService struct {
	docSvc   documentUseCase
	batchSvc batchUseCase
	obs      *observer
}

// Create stores a document and indexes it.
func (s *DocumentService) Create(ctx context.Context, text, rubrics string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.create", start, err) }()

	d, err := s.docSvc.Create(ctx, text, rubrics)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Update replaces the text and rubrics of a document.
func (s *DocumentService) Update(ctx context.Context, id int64, text, rubrics string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.update", start, err) }()

	d, err := s.docSvc.Update(ctx, id, text, rubrics)
	if err != nil {
		return Document{}, fmt.Errorf("update document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Delete removes a document from the store and the index.
func (s *DocumentService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.docSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Unindex removes a document from the search index only. It stays
// stored and comes back on the next Reindex.
func (s *DocumentService) Unindex(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.unindex", start, err) }()

	if err = s.docSvc.Unindex(ctx, id); err != nil {
		return fmt.Errorf("unindex document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	n, err := s.docSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BatchCreate stores documents in one transaction. Invalid or duplicate
// items fail on their own; the rest are committed.
func (s *DocumentService) BatchCreate(ctx context.Context, docs []NewDocument) []BatchResult {
	start := time.Now()
	items := make([]batchuc.Item, len(docs))
	for i, d := range docs {
		items[i] = batchuc.Item{Text: d.Text, Rubrics: d.Rubrics}
	}
	results := s.batchSvc.Create(ctx, items)
	s.obs.observe("document.batch_create", start, batchErr(results))
	return fromBatchResults(results)
}

// BatchDelete removes documents by IDs in one transaction.
func (s *DocumentService) BatchDelete(ctx context.Context, ids []int64) []BatchResult {
	start := time.Now()
	results := s.batchSvc.Delete(ctx, ids)
	s.obs.observe("document.batch_delete", start, batchErr(results))
	return fromBatchResults(results)
}

func batchErr(results []dombatch.Result) error {
	if n := dombatch.Failed(results); n > 0 {
		return fmt.Errorf("%d of %d items failed", n, len(results))
	}
	return nil
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Text:      d.Text(),
		Rubrics:   d.Rubrics(),
		CreatedAt: d.CreatedAt(),
	}
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			Index: r.Index(),
			ID:    r.ID(),
			OK:    r.Status() == dombatch.StatusOK,
			Err:   r.Err(),
		}
	}
	return out
}
