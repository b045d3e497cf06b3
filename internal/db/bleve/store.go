// Package bleve implements db.Backend on an embedded bleve index per kind.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/docindex/internal/db"
)

// Compile-time check: Store implements db.Backend.
var _ db.Backend = (*Store)(nil)

var errClosed = errors.New("bleve store is closed")

// Config holds options for the embedded backend.
type Config struct {
	// DataDir holds one "<index>.bleve" directory per index.
	// Empty keeps every index in memory.
	DataDir string
}

// Store implements db.Backend with one bleve.Index per index name.
type Store struct {
	mu      sync.RWMutex
	dataDir string
	indexes map[string]bleve.Index
	closed  bool
}

// NewStore creates the embedded backend. Existing on-disk indexes are opened lazily.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
		}
	}
	return &Store{dataDir: cfg.DataDir, indexes: make(map[string]bleve.Index)}, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

// WaitForReady returns immediately: the embedded backend has nothing to wait for.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes every open index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for name, idx := range s.indexes {
		_ = idx.Close()
		delete(s.indexes, name)
	}
}

// CreateIndex builds the mapping from def and creates the index.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if def == nil {
		return errors.New("index definition is required")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	existing, err := s.lookupLocked(def.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return db.ErrIndexExists
	}

	im := buildMapping(def)
	var idx bleve.Index
	if s.dataDir == "" {
		idx, err = bleve.NewMemOnly(im)
	} else {
		idx, err = bleve.New(s.path(def.Name), im)
	}
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	s.indexes[def.Name] = idx
	return nil
}

// DropIndex closes the index and removes its files.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	idx, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	if idx == nil {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	if err := idx.Close(); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	if s.dataDir != "" {
		if err := os.RemoveAll(s.path(name)); err != nil {
			return &db.Error{Op: db.OpDropIndex, Err: err}
		}
	}
	return nil
}

// IndexExists reports whether the index is open or present on disk.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, errClosed
	}
	idx, err := s.lookupLocked(name)
	if err != nil {
		return false, err
	}
	return idx != nil, nil
}

// PutDocument indexes doc under its id, replacing any previous version.
func (s *Store) PutDocument(_ context.Context, index string, doc *db.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.New("document id is required")
	}
	idx, err := s.get(index)
	if err != nil {
		return err
	}

	body := make(map[string]any, len(doc.Text)+len(doc.Numeric))
	for k, v := range doc.Text {
		body[k] = v
	}
	for k, v := range doc.Numeric {
		body[k] = v
	}
	if err := idx.Index(doc.ID, body); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// DeleteDocument removes the document. Unknown ids are ignored.
func (s *Store) DeleteDocument(_ context.Context, index, id string) error {
	idx, err := s.get(index)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// SearchText runs a disjunction of match queries, one per field,
// sorted by score then id.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Offset < 0 {
		return nil, errors.New("offset must not be negative")
	}
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	if len(q.Query) == 0 {
		return nil, errors.New("query is required")
	}
	idx, err := s.get(q.IndexName)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q.Query, q.Fields), q.Limit, q.Offset, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := &db.SearchResult{Total: int(res.Total), Entries: make([]db.SearchEntry, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		out.Entries = append(out.Entries, db.SearchEntry{ID: hit.ID, Score: hit.Score})
	}
	return out, nil
}

func buildQuery(text string, fields []string) query.Query {
	if len(fields) == 0 {
		return bleve.NewMatchQuery(text)
	}
	qs := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f)
		qs = append(qs, mq)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func buildMapping(def *db.IndexDefinition) *mapping.IndexMappingImpl {
	doc := bleve.NewDocumentMapping()
	for i := range def.Fields {
		f := &def.Fields[i]
		switch f.Type {
		case db.IndexFieldText:
			fm := bleve.NewTextFieldMapping()
			fm.Store = false
			doc.AddFieldMappingsAt(f.Name, fm)
		case db.IndexFieldNumeric:
			fm := bleve.NewNumericFieldMapping()
			fm.Store = false
			fm.DocValues = f.Sortable
			doc.AddFieldMappingsAt(f.Name, fm)
		}
	}
	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

func (s *Store) get(name string) (bleve.Index, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, errClosed
	}
	idx, ok := s.indexes[name]
	s.mu.RUnlock()
	if ok {
		return idx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	idx, err := s.lookupLocked(name)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, db.ErrIndexNotFound
	}
	return idx, nil
}

// lookupLocked returns the open index, opening it from disk when present.
// It returns nil, nil when the index does not exist. Caller holds s.mu.
func (s *Store) lookupLocked(name string) (bleve.Index, error) {
	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}
	if s.dataDir == "" {
		return nil, nil
	}
	idx, err := bleve.Open(s.path(name))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	s.indexes[name] = idx
	return idx, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name+".bleve")
}
