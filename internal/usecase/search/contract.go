package search

import (
	"context"

	"github.com/kailas-cloud/docindex/internal/domain"
)

// Index is the search index contract.
type Index interface {
	Search(ctx context.Context, kind domain.SearchKind, query string, page, pageSize int) (domain.Hits, error)
}

// Loader reads entities of one kind from the relational store, newest first.
type Loader[T domain.Searchable] interface {
	ListByIDs(ctx context.Context, ids []int64) ([]T, error)
}
