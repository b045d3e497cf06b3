package indexsync

import (
	"context"

	"github.com/kailas-cloud/docindex/internal/domain"
)

// Indexer is the search index client contract.
type Indexer interface {
	Configured() bool
	EnsureIndex(ctx context.Context, kind domain.SearchKind) error
	IndexDocument(ctx context.Context, kind domain.SearchKind, e domain.Searchable) error
	RemoveDocument(ctx context.Context, kind domain.SearchKind, id int64) error
}

// Source pages through the persisted entities of one kind in ascending id order.
type Source interface {
	ListSearchable(ctx context.Context, afterID int64, limit int) ([]domain.Searchable, error)
}
