package chi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/domain"
	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/docindex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

var created = time.Date(2024, 2, 3, 4, 5, 0, 0, time.UTC)

type mockDocuments struct {
	docs       map[int64]domdoc.Document
	createErr  error
	deleteErr  error
	unindexErr error
	reindexN   int
	reindexErr error
	deleted    []int64
	unindexed  []int64
}

func newMockDocuments(docs ...domdoc.Document) *mockDocuments {
	m := &mockDocuments{docs: make(map[int64]domdoc.Document)}
	for _, d := range docs {
		m.docs[d.ID()] = d
	}
	return m
}

func (m *mockDocuments) Create(_ context.Context, text, rubrics string) (domdoc.Document, error) {
	if m.createErr != nil {
		return domdoc.Document{}, m.createErr
	}
	doc, err := domdoc.New(text, rubrics, created)
	if err != nil {
		return domdoc.Document{}, err
	}
	doc.SetID(int64(len(m.docs) + 1))
	m.docs[doc.ID()] = doc
	return doc, nil
}

func (m *mockDocuments) Get(_ context.Context, id int64) (domdoc.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document %d: %w", id, domain.ErrDocumentNotFound)
	}
	return d, nil
}

func (m *mockDocuments) Update(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error) {
	d, err := m.Get(ctx, id)
	if err != nil {
		return d, err
	}
	if err := d.Update(text, rubrics); err != nil {
		return domdoc.Document{}, err
	}
	m.docs[id] = d
	return d, nil
}

func (m *mockDocuments) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	delete(m.docs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocuments) Unindex(ctx context.Context, id int64) error {
	if m.unindexErr != nil {
		return m.unindexErr
	}
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.unindexed = append(m.unindexed, id)
	return nil
}

func (m *mockDocuments) Reindex(context.Context) (int, error) { return m.reindexN, m.reindexErr }

func (m *mockDocuments) Count(context.Context) (int, error) { return len(m.docs), nil }

type mockBatch struct {
	items []batchuc.Item
	ids   []int64
}

func (m *mockBatch) Create(_ context.Context, items []batchuc.Item) []dombatch.Result {
	m.items = items
	out := make([]dombatch.Result, len(items))
	for i, it := range items {
		if it.Text == "" {
			out[i] = dombatch.NewError(i, fmt.Errorf("text is required: %w", domain.ErrInvalidDocument))
			continue
		}
		out[i] = dombatch.NewOK(i, int64(i+10))
	}
	return out
}

func (m *mockBatch) Delete(_ context.Context, ids []int64) []dombatch.Result {
	m.ids = ids
	out := make([]dombatch.Result, len(ids))
	for i, id := range ids {
		out[i] = dombatch.NewOK(i, id)
	}
	return out
}

type searchCall struct {
	query          string
	page, pageSize int
}

type mockSearch struct {
	page  searchuc.Page[*domdoc.Document]
	err   error
	calls []searchCall
}

func (m *mockSearch) Search(_ context.Context, q string, page, size int) (searchuc.Page[*domdoc.Document], error) {
	m.calls = append(m.calls, searchCall{q, page, size})
	if m.err != nil {
		return searchuc.Page[*domdoc.Document]{}, m.err
	}
	if strings.TrimSpace(q) == "" {
		return searchuc.Page[*domdoc.Document]{}, domain.ErrInvalidQuery
	}
	p := m.page
	p.Page, p.PageSize = page, size
	return p, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testEnv struct {
	docs    *mockDocuments
	batch   *mockBatch
	search  *mockSearch
	health  *mockHealth
	handler http.Handler
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	doc := domdoc.Reconstruct(1, "alpha beta", "news", created)
	e := &testEnv{
		docs:   newMockDocuments(doc),
		batch:  &mockBatch{},
		search: &mockSearch{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	srv := NewServer(e.docs, e.batch, e.search, e.health, zap.NewNop()).WithMaxBatchSize(3)
	e.handler = NewRouter(srv, zap.NewNop(), apiKeys)
	return e
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func docPtrs(docs ...domdoc.Document) []*domdoc.Document {
	out := make([]*domdoc.Document, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out
}
