package db

import (
	"context"
	"time"
)

// Backend is the search index facade combining all sub-interfaces.
type Backend interface {
	Pinger
	IndexManager
	DocumentWriter
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Document is one record as the index backend stores it.
type Document struct {
	ID      string
	Text    map[string]string
	Numeric map[string]float64
}

// DocumentWriter upserts and removes documents of an index.
type DocumentWriter interface {
	PutDocument(ctx context.Context, index string, doc *Document) error
	// DeleteDocument succeeds when the document is already absent.
	DeleteDocument(ctx context.Context, index, id string) error
}

// Searcher runs free-text queries.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
