package chi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kailas-cloud/docindex/internal/domain"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

func (e *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func TestHomePage_Form(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `name="q"`) {
		t.Error("search form missing")
	}
	if len(e.search.calls) != 0 {
		t.Error("home page without q must not search")
	}
}

func TestHomePage_WithQueryRendersResults(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{
		Items: docPtrs(domdoc.Reconstruct(1, "alpha beta", "news", created)),
		Total: 1,
	}

	rr := e.do(http.MethodGet, "/?q=alpha", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `href="/document/1"`) || !strings.Contains(body, "alpha beta") {
		t.Errorf("result missing from page:\n%s", body)
	}
	if got := e.search.calls[0]; got.page != 1 || got.pageSize != 20 {
		t.Errorf("search call = %+v, want page 1 size 20", got)
	}
}

func TestResultsPage_Pagination(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{
		Items: docPtrs(domdoc.Reconstruct(5, "five", "", created)),
		Total: 45,
	}

	rr := e.do(http.MethodGet, "/results?q=alpha&page=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `start="21"`) {
		t.Error("numbering must continue from the previous page")
	}
	if !strings.Contains(body, "page=1") || !strings.Contains(body, "page=3") {
		t.Errorf("pager links missing:\n%s", body)
	}
}

func TestResultsPage_EscapesText(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{
		Items: docPtrs(domdoc.Reconstruct(9, "<script>x</script>", "", created)),
		Total: 1,
	}

	body := e.do(http.MethodGet, "/results?q=script", "").Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Error("document text must be HTML-escaped")
	}
}

func TestResultsPage_Unavailable(t *testing.T) {
	e := newTestEnv(t)
	e.search.page = searchuc.Page[*domdoc.Document]{Unavailable: true}

	rr := e.do(http.MethodGet, "/results?q=alpha", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "temporarily unavailable") {
		t.Error("unavailable notice missing")
	}
}

func TestResultsPage_EmptyQuery(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/results", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Enter a search query") {
		t.Error("validation message missing")
	}
}

func TestDocumentPage(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/document/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "alpha beta") || !strings.Contains(body, `value="delete"`) {
		t.Errorf("document page incomplete:\n%s", body)
	}

	if rr := e.do(http.MethodGet, "/document/42", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing document: status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/document/x", ""); rr.Code != http.StatusNotFound {
		t.Errorf("bad id: status = %d", rr.Code)
	}
}

func TestDocumentAction_Unindex(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm("/document/1", url.Values{"action": {"unindex"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(e.docs.unindexed) != 1 || e.docs.unindexed[0] != 1 {
		t.Errorf("unindexed = %v", e.docs.unindexed)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Removed from the search index") || !strings.Contains(body, "alpha beta") {
		t.Errorf("unexpected page:\n%s", body)
	}
}

func TestDocumentAction_Delete(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm("/document/1", url.Values{"action": {"delete"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(e.docs.deleted) != 1 {
		t.Errorf("deleted = %v", e.docs.deleted)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Deleted.") || strings.Contains(body, "alpha beta") {
		t.Errorf("unexpected page:\n%s", body)
	}
}

func TestDocumentAction_Errors(t *testing.T) {
	e := newTestEnv(t)
	e.docs.unindexErr = fmt.Errorf("remove: %w", domain.ErrIndexUnavailable)

	rr := e.postForm("/document/1", url.Values{"action": {"unindex"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "search index is unavailable") {
		t.Error("index error message missing")
	}

	if rr := e.postForm("/document/77", url.Values{"action": {"delete"}}); rr.Code != http.StatusNotFound {
		t.Errorf("missing document: status = %d", rr.Code)
	}

	rr = e.postForm("/document/1", url.Values{"action": {"explode"}})
	if !strings.Contains(rr.Body.String(), "Unknown action") {
		t.Error("unknown action message missing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("привет мир", 6); got != "привет…" {
		t.Errorf("truncate = %q", got)
	}
}
