package docindex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/app"
	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

// Use case interfaces, replaced by mocks in tests.
type documentUseCase interface {
	Create(ctx context.Context, text, rubrics string) (domdoc.Document, error)
	Get(ctx context.Context, id int64) (domdoc.Document, error)
	Update(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error)
	Delete(ctx context.Context, id int64) error
	Unindex(ctx context.Context, id int64) error
	Reindex(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type batchUseCase interface {
	Create(ctx context.Context, items []batchuc.Item) []dombatch.Result
	Delete(ctx context.Context, ids []int64) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, query string, page, pageSize int) (searchuc.Page[*domdoc.Document], error)
}

// Client is the docindex SDK entry point.
type Client struct {
	app       *app.App
	docSvc    documentUseCase
	batchSvc  batchUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the document store and the search index.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	svcCfg := cfg.toConfig()
	if err := svcCfg.Index.Validate(); err != nil {
		return nil, fmt.Errorf("docindex: %w", err)
	}

	a, err := app.New(ctx, svcCfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("docindex: %w", err)
	}
	if cfg.logger != nil {
		cfg.logger.Info("docindex opened",
			"database", a.Store.Path(),
			"index", svcCfg.Index.Driver,
		)
	}

	return &Client{
		app:       a,
		docSvc:    a.Documents,
		batchSvc:  a.Batch,
		searchSvc: a.Search,
		healthSvc: a.Health,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{docSvc: c.docSvc, batchSvc: c.batchSvc, obs: c.obs}
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Reindex pushes every stored document to the search index and returns
// how many were written. Running it twice gives the same result.
func (c *Client) Reindex(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reindex", start, err) }()

	n, err = c.docSvc.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	return n, nil
}
