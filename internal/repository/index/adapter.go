// Package index is the search index client adapter. Every operation is a
// no-op when no backend is configured.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/db"
	"github.com/kailas-cloud/docindex/internal/domain"
	"github.com/kailas-cloud/docindex/internal/logger"
	"github.com/kailas-cloud/docindex/internal/metrics"
)

// backend is the consumer interface for the index backend (ISP).
type backend interface {
	Ping(ctx context.Context) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	PutDocument(ctx context.Context, index string, doc *db.Document) error
	DeleteDocument(ctx context.Context, index, id string) error
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Adapter translates domain operations into backend calls.
type Adapter struct {
	backend       backend
	searchTimeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSearchTimeout bounds every Search call. Zero means no extra bound.
func WithSearchTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.searchTimeout = d }
}

// New creates an adapter. A nil backend yields an unconfigured adapter.
func New(b backend, opts ...Option) *Adapter {
	a := &Adapter{backend: b}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Configured reports whether a backend is present.
func (a *Adapter) Configured() bool {
	return a.backend != nil
}

// Ping checks backend connectivity. Unconfigured adapters report ErrIndexUnavailable.
func (a *Adapter) Ping(ctx context.Context) error {
	if !a.Configured() {
		return fmt.Errorf("no index backend: %w", domain.ErrIndexUnavailable)
	}
	if err := a.backend.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// EnsureIndex creates the kind's index if it does not exist yet.
func (a *Adapter) EnsureIndex(ctx context.Context, kind domain.SearchKind) (err error) {
	if !a.Configured() {
		return nil
	}
	start := time.Now()
	defer func() { metrics.ObserveIndexOp(kind.Name, "ensure", start, err) }()

	exists, err := a.backend.IndexExists(ctx, kind.Index)
	if err != nil {
		return unavailable("probe index "+kind.Index, err)
	}
	if exists {
		return nil
	}
	return a.create(ctx, kind)
}

func (a *Adapter) create(ctx context.Context, kind domain.SearchKind) error {
	def, err := buildIndex(kind)
	if err != nil {
		return err
	}
	if err := a.backend.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return unavailable("create index "+kind.Index, err)
	}
	logger.FromContext(ctx).Info("Search index created",
		zap.String("kind", kind.Name),
		zap.String("index", kind.Index),
	)
	return nil
}

// IndexDocument upserts the entity's declared fields under its id.
// A missing index is created on first write.
func (a *Adapter) IndexDocument(ctx context.Context, kind domain.SearchKind, e domain.Searchable) (err error) {
	if !a.Configured() {
		return nil
	}
	start := time.Now()
	defer func() { metrics.ObserveIndexOp(kind.Name, "put", start, err) }()

	d, err := domain.NewIndexDocument(kind, e)
	if err != nil {
		return err
	}
	doc := toBackendDocument(d)

	err = a.backend.PutDocument(ctx, kind.Index, doc)
	if errors.Is(err, db.ErrIndexNotFound) {
		if cerr := a.create(ctx, kind); cerr != nil {
			return cerr
		}
		err = a.backend.PutDocument(ctx, kind.Index, doc)
	}
	if err != nil {
		return unavailable(fmt.Sprintf("index %s %d", kind.Name, d.ID), err)
	}
	return nil
}

// RemoveDocument deletes the entity from the index. Absent ids are not an error.
func (a *Adapter) RemoveDocument(ctx context.Context, kind domain.SearchKind, id int64) (err error) {
	if !a.Configured() {
		return nil
	}
	start := time.Now()
	defer func() { metrics.ObserveIndexOp(kind.Name, "delete", start, err) }()

	err = a.backend.DeleteDocument(ctx, kind.Index, formatID(id))
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return unavailable(fmt.Sprintf("remove %s %d", kind.Name, id), err)
	}
	return nil
}

// Search matches query against every declared field of the kind and returns
// one page of ids in relevance order plus the total match count.
func (a *Adapter) Search(
	ctx context.Context, kind domain.SearchKind, query string, page, pageSize int,
) (hits domain.Hits, err error) {
	if !a.Configured() {
		return domain.Hits{Unavailable: true}, nil
	}
	if strings.TrimSpace(query) == "" {
		return domain.Hits{}, fmt.Errorf("empty query: %w", domain.ErrInvalidQuery)
	}
	if page < 1 || pageSize < 1 {
		return domain.Hits{}, fmt.Errorf("page %d size %d: %w", page, pageSize, domain.ErrInvalidQuery)
	}

	start := time.Now()
	defer func() { metrics.ObserveIndexOp(kind.Name, "search", start, err) }()

	if a.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.searchTimeout)
		defer cancel()
	}

	res, err := a.backend.SearchText(ctx, &db.TextQuery{
		IndexName: kind.Index,
		Fields:    kind.Fields,
		Query:     query,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		// nothing has been indexed for this kind yet
		return domain.Hits{}, nil
	}
	if err != nil {
		return domain.Hits{}, unavailable("search "+kind.Name, err)
	}

	ids := make([]int64, 0, len(res.Entries))
	for _, e := range res.Entries {
		id, perr := strconv.ParseInt(e.ID, 10, 64)
		if perr != nil {
			logger.FromContext(ctx).Debug("Skipping foreign index entry",
				zap.String("index", kind.Index),
				zap.String("id", e.ID),
			)
			continue
		}
		ids = append(ids, id)
	}
	return domain.Hits{IDs: ids, Total: res.Total}, nil
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, domain.ErrIndexUnavailable, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
