package docindex

import (
	"context"

	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/docindex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	createFn  func(ctx context.Context, text, rubrics string) (domdoc.Document, error)
	getFn     func(ctx context.Context, id int64) (domdoc.Document, error)
	updateFn  func(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error)
	deleteFn  func(ctx context.Context, id int64) error
	unindexFn func(ctx context.Context, id int64) error
	reindexFn func(ctx context.Context) (int, error)
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockDocumentUC) Create(ctx context.Context, text, rubrics string) (domdoc.Document, error) {
	return m.createFn(ctx, text, rubrics)
}

func (m *mockDocumentUC) Get(ctx context.Context, id int64) (domdoc.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) Update(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error) {
	return m.updateFn(ctx, id, text, rubrics)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) Unindex(ctx context.Context, id int64) error {
	return m.unindexFn(ctx, id)
}

func (m *mockDocumentUC) Reindex(ctx context.Context) (int, error) {
	return m.reindexFn(ctx)
}

func (m *mockDocumentUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	createFn func(ctx context.Context, items []batchuc.Item) []dombatch.Result
	deleteFn func(ctx context.Context, ids []int64) []dombatch.Result
}

func (m *mockBatchUC) Create(ctx context.Context, items []batchuc.Item) []dombatch.Result {
	return m.createFn(ctx, items)
}

func (m *mockBatchUC) Delete(ctx context.Context, ids []int64) []dombatch.Result {
	return m.deleteFn(ctx, ids)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, query string, page, pageSize int) (searchuc.Page[*domdoc.Document], error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, query string, page, pageSize int,
) (searchuc.Page[*domdoc.Document], error) {
	return m.searchFn(ctx, query, page, pageSize)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
