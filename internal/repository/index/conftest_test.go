package index

import (
	"context"
	"time"

	"github.com/kailas-cloud/docindex/internal/db"
	"github.com/kailas-cloud/docindex/internal/domain"
)

// mockBackend implements the consumer interface for tests.
type mockBackend struct {
	pingErr          error
	createIndexFn    func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn    func(ctx context.Context, name string) (bool, error)
	putDocumentFn    func(ctx context.Context, index string, doc *db.Document) error
	deleteDocumentFn func(ctx context.Context, index, id string) error
	searchTextFn     func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

func (m *mockBackend) Ping(context.Context) error { return m.pingErr }

func (m *mockBackend) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockBackend) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockBackend) PutDocument(ctx context.Context, index string, doc *db.Document) error {
	if m.putDocumentFn != nil {
		return m.putDocumentFn(ctx, index, doc)
	}
	return nil
}

func (m *mockBackend) DeleteDocument(ctx context.Context, index, id string) error {
	if m.deleteDocumentFn != nil {
		return m.deleteDocumentFn(ctx, index, id)
	}
	return nil
}

func (m *mockBackend) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

type entity struct {
	id      int64
	text    string
	created time.Time
}

func (e *entity) Kind() string         { return "note" }
func (e *entity) ID() int64            { return e.id }
func (e *entity) CreatedAt() time.Time { return e.created }
func (e *entity) FieldValue(name string) (string, bool) {
	if name == "body" {
		return e.text, true
	}
	return "", false
}

func noteKind() domain.SearchKind {
	return domain.SearchKind{Name: "note", Index: "notes", Fields: []string{"body", "title"}}
}
