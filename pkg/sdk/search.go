package docindex

import (
	"context"
	"fmt"
	"time"
)

// DefaultPageSize is the page size used when Query gets a non-positive one.
const DefaultPageSize = 20

// SearchService runs full-text queries.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Query returns one page of documents matching any term of q, most
// relevant first. page starts at 1.
func (s *SearchService) Query(ctx context.Context, q string, page, pageSize int) (res SearchPage, err error) {
	start := time.Now()
	defer func() {
		observed := err
		if observed == nil && res.Unavailable {
			observed = ErrIndexUnavailable
		}
		s.obs.observe("search", start, observed)
	}()

	if page == 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	p, err := s.svc.Search(ctx, q, page, pageSize)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	docs := make([]Document, len(p.Items))
	for i, d := range p.Items {
		docs[i] = fromInternalDocument(d)
	}
	return SearchPage{
		Documents:   docs,
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Unavailable: p.Unavailable,
	}, nil
}
