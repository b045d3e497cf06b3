package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/domain"
	"github.com/kailas-cloud/docindex/internal/logger"
)

// Page is one page of ranked search results.
type Page[T domain.Searchable] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	// Unavailable is set when the index could not answer. Items is empty.
	Unavailable bool
}

// Service answers free-text queries for one searchable kind.
type Service[T domain.Searchable] struct {
	kind        domain.SearchKind
	index       Index
	loader      Loader[T]
	maxPageSize int
}

// New creates a search service for kind.
func New[T domain.Searchable](kind domain.SearchKind, index Index, loader Loader[T]) *Service[T] {
	return &Service[T]{
		kind:        kind,
		index:       index,
		loader:      loader,
		maxPageSize: 100,
	}
}

// WithMaxPageSize configures the page size limit.
func (s *Service[T]) WithMaxPageSize(n int) *Service[T] {
	if n > 0 {
		s.maxPageSize = n
	}
	return s
}

// Search runs query against the index and loads the matching entities in
// relevance order.
func (s *Service[T]) Search(ctx context.Context, query string, page, pageSize int) (Page[T], error) {
	if strings.TrimSpace(query) == "" {
		return Page[T]{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if page < 1 {
		return Page[T]{}, fmt.Errorf("page must be >= 1: %w", domain.ErrInvalidQuery)
	}
	if pageSize < 1 || pageSize > s.maxPageSize {
		return Page[T]{}, fmt.Errorf("page size must be in [1, %d]: %w", s.maxPageSize, domain.ErrInvalidQuery)
	}

	out := Page[T]{Page: page, PageSize: pageSize}

	hits, err := s.index.Search(ctx, s.kind, query, page, pageSize)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			logger.FromContext(ctx).Warn("Search index unavailable",
				zap.String("kind", s.kind.Name),
				zap.Error(err),
			)
			out.Unavailable = true
			return out, nil
		}
		return Page[T]{}, fmt.Errorf("search %s: %w", s.kind.Name, err)
	}
	if hits.Unavailable {
		out.Unavailable = true
		return out, nil
	}

	out.Total = hits.Total
	if hits.Total == 0 || len(hits.IDs) == 0 {
		return out, nil
	}

	items, err := s.loader.ListByIDs(ctx, hits.IDs)
	if err != nil {
		return Page[T]{}, fmt.Errorf("load %s: %w", s.kind.Name, err)
	}

	if gone := missing(hits.IDs, items); len(gone) > 0 {
		logger.FromContext(ctx).Debug("Index returned ids missing from store",
			zap.String("kind", s.kind.Name),
			zap.Int64s("ids", gone),
		)
	}

	out.Items = orderByRank(items, hits.Ranks())
	return out, nil
}
