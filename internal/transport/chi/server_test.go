package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kailas-cloud/docindex/internal/domain"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	healthuc "github.com/kailas-cloud/docindex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestCreateDocument(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/api/documents", `{"text":"gamma","rubrics":"tech"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	doc := decode[DocumentResponse](t, rr.Body.Bytes())
	if doc.ID == 0 || doc.Text != "gamma" || doc.Rubrics != "tech" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if loc := rr.Header().Get("Location"); loc != fmt.Sprintf("/api/documents/%d", doc.ID) {
		t.Errorf("Location = %q", loc)
	}
}

func TestCreateDocument_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		createErr error
		status    int
		code      ErrorCode
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"empty text", `{"text":""}`, nil, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"duplicate", `{"text":"x"}`, fmt.Errorf("text: %w", domain.ErrAlreadyExists), http.StatusConflict, ErrorCodeAlreadyExists},
		{"store down", `{"text":"x"}`, fmt.Errorf("insert: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrorCodeStoreUnavailable},
		{"unexpected", `{"text":"x"}`, errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.docs.createErr = tc.createErr

			rr := e.do(http.MethodPost, "/api/documents", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tc.status, rr.Body)
			}
			resp := decode[ErrorResponse](t, rr.Body.Bytes())
			if resp.Code != tc.code {
				t.Errorf("code = %q, want %q", resp.Code, tc.code)
			}
			if tc.code == ErrorCodeInternalError && resp.Message != "internal error" {
				t.Errorf("internal details leaked: %q", resp.Message)
			}
		})
	}
}

func TestDocumentByID(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/api/documents/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	if doc := decode[DocumentResponse](t, rr.Body.Bytes()); doc.Text != "alpha beta" || !doc.CreatedAt.Equal(created) {
		t.Errorf("unexpected document: %+v", doc)
	}

	if rr := e.do(http.MethodGet, "/api/documents/99", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/api/documents/abc", ""); rr.Code != http.StatusNotFound {
		t.Errorf("non-numeric id: status = %d", rr.Code)
	}

	rr = e.do(http.MethodPut, "/api/documents/1", `{"text":"updated","rubrics":"r"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d (%s)", rr.Code, rr.Body)
	}
	if doc := decode[DocumentResponse](t, rr.Body.Bytes()); doc.Text != "updated" {
		t.Errorf("PUT text = %q", doc.Text)
	}

	if rr := e.do(http.MethodDelete, "/api/documents/1/index", ""); rr.Code != http.StatusNoContent {
		t.Errorf("unindex status = %d", rr.Code)
	}
	if len(e.docs.unindexed) != 1 {
		t.Errorf("unindexed = %v", e.docs.unindexed)
	}

	if rr := e.do(http.MethodDelete, "/api/documents/1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rr.Code)
	}
	if rr := e.do(http.MethodDelete, "/api/documents/1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d", rr.Code)
	}
}

func TestUnindex_IndexUnavailable(t *testing.T) {
	e := newTestEnv(t)
	e.docs.unindexErr = fmt.Errorf("remove: %w", domain.ErrIndexUnavailable)

	rr := e.do(http.MethodDelete, "/api/documents/1/index", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr.Body.Bytes()); resp.Code != ErrorCodeIndexUnavailable {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCountDocuments(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/api/documents/count", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[CountResponse](t, rr.Body.Bytes()); resp.Count != 1 {
		t.Errorf("count = %d", resp.Count)
	}
}

func TestBatchCreate(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/api/documents/batch", `{"documents":[{"text":"a"},{"text":""}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body)
	}
	resp := decode[BatchResponse](t, rr.Body.Bytes())
	if resp.Succeeded != 1 || resp.Failed != 1 || len(resp.Items) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Items[0].ID == nil || *resp.Items[0].ID != 10 {
		t.Errorf("item 0 id = %v", resp.Items[0].ID)
	}
	if resp.Items[1].ID != nil || resp.Items[1].Error == nil || resp.Items[1].Error.Code != ErrorCodeValidationFailed {
		t.Errorf("item 1 = %+v", resp.Items[1])
	}

	if rr := e.do(http.MethodPost, "/api/documents/batch", `{"documents":[]}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d", rr.Code)
	}
	big := `{"documents":[{"text":"1"},{"text":"2"},{"text":"3"},{"text":"4"}]}`
	if rr := e.do(http.MethodPost, "/api/documents/batch", big); rr.Code != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d", rr.Code)
	}
}

func TestBatchDelete(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodDelete, "/api/documents/batch", `{"ids":[4,5]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body)
	}
	if len(e.batch.ids) != 2 || e.batch.ids[0] != 4 {
		t.Errorf("ids = %v", e.batch.ids)
	}
	if resp := decode[BatchResponse](t, rr.Body.Bytes()); resp.Succeeded != 2 {
		t.Errorf("succeeded = %d", resp.Succeeded)
	}
}

func TestSearchDocuments(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{
		Items: docPtrs(
			domdoc.Reconstruct(3, "three", "", created),
			domdoc.Reconstruct(1, "one", "", created),
			domdoc.Reconstruct(2, "two", "", created),
		),
		Total: 3,
	}

	rr := e.do(http.MethodGet, "/api/search?q=alpha&page=2&page_size=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body)
	}
	resp := decode[SearchResponse](t, rr.Body.Bytes())
	if len(resp.Items) != 3 || resp.Items[0].ID != 3 || resp.Items[1].ID != 1 || resp.Items[2].ID != 2 {
		t.Errorf("rank order not preserved: %+v", resp.Items)
	}
	if resp.Total != 3 || resp.Page != 2 || resp.PageSize != 5 {
		t.Errorf("unexpected paging: %+v", resp)
	}
	if got := e.search.calls[0]; got.query != "alpha" || got.page != 2 || got.pageSize != 5 {
		t.Errorf("search call = %+v", got)
	}
}

func TestSearchDocuments_Defaults(t *testing.T) {
	e := newTestEnv(t)

	if rr := e.do(http.MethodGet, "/api/search?q=alpha", ""); rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := e.search.calls[0]; got.page != 1 || got.pageSize != 20 {
		t.Errorf("defaults = %+v", got)
	}
}

func TestSearchDocuments_BadParams(t *testing.T) {
	e := newTestEnv(t)

	if rr := e.do(http.MethodGet, "/api/search", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/api/search?q=a&page=x", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric page: status = %d", rr.Code)
	}
	rr := e.do(http.MethodGet, "/api/search?q=%20", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank q: status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr.Body.Bytes()); resp.Code != ErrorCodeInvalidQuery {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestSearchDocuments_Unavailable(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{Unavailable: true}

	rr := e.do(http.MethodGet, "/api/search?q=alpha", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[SearchResponse](t, rr.Body.Bytes())
	if !resp.Unavailable || len(resp.Items) != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReindex(t *testing.T) {
	e := newTestEnv(t)
	e.docs.reindexN = 7

	rr := e.do(http.MethodPost, "/api/reindex", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ReindexResponse](t, rr.Body.Bytes()); resp.Indexed != 7 {
		t.Errorf("indexed = %d", resp.Indexed)
	}

	e.docs.reindexErr = fmt.Errorf("reindex: %w", domain.ErrIndexUnavailable)
	if rr := e.do(http.MethodPost, "/api/reindex", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("unavailable: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		code   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			e := newTestEnv(t, "secret")
			e.health.report.Status = tc.status

			rr := e.do(http.MethodGet, "/health", "")
			if rr.Code != tc.code {
				t.Fatalf("status = %d, want %d", rr.Code, tc.code)
			}
			resp := decode[HealthResponse](t, rr.Body.Bytes())
			if resp.Status != string(tc.status) || resp.Checks["database"] != "ok" {
				t.Errorf("unexpected body: %+v", resp)
			}
		})
	}
}

func TestAPIKeysGuardAPIOnly(t *testing.T) {
	e := newTestEnv(t, "secret")

	if rr := e.do(http.MethodGet, "/api/documents/1", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("API without key: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/", ""); rr.Code != http.StatusOK {
		t.Errorf("home page: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/metrics", ""); rr.Code != http.StatusOK {
		t.Errorf("metrics: status = %d", rr.Code)
	}
}

func TestAPIOpenWithoutKeys(t *testing.T) {
	e := newTestEnv(t)

	if rr := e.do(http.MethodGet, "/api/documents/1", ""); rr.Code != http.StatusOK {
		t.Errorf("API without configured keys: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/api/documents", `{"text":"delta"}`); rr.Code != http.StatusCreated {
		t.Errorf("create without configured keys: status = %d", rr.Code)
	}
}
