package chi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = map[string]*template.Template{
	"search":   parsePage("search.html"),
	"results":  parsePage("results.html"),
	"document": parsePage("document.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).
		Funcs(template.FuncMap{"truncate": truncate}).
		ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// pageView is the data passed to every page template.
type pageView struct {
	Query  string
	Notice string
	Error  string

	Items       []DocumentResponse
	Total       int
	First       int
	PrevPage    int
	NextPage    int
	Unavailable bool

	ID       int64
	Document *DocumentResponse
}

// MountPages registers the HTML pages on r.
func (s *Server) MountPages(r chi.Router) {
	r.Get("/", s.HomePage)
	r.Get("/results", s.ResultsPage)
	r.Get("/document/{id}", s.DocumentPage)
	r.Post("/document/{id}", s.DocumentAction)
}

// HomePage renders the search form, or the results when q is present.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("q") != "" {
		s.ResultsPage(w, r)
		return
	}
	s.render(w, http.StatusOK, "search", pageView{})
}

// ResultsPage renders one page of search results.
func (s *Server) ResultsPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view := pageView{Query: query.Get("q")}

	page := 1
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil || page < 1 {
		page = 1
	}

	res, err := s.search.Search(r.Context(), view.Query, page, s.defaultPageSize)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			view.Error = "Enter a search query."
			s.render(w, http.StatusBadRequest, "search", view)
			return
		}
		s.logger.Error("search page", zap.Error(err))
		view.Error = "Search failed."
		s.render(w, http.StatusInternalServerError, "search", view)
		return
	}

	view.Unavailable = res.Unavailable
	view.Total = res.Total
	view.First = (res.Page-1)*res.PageSize + 1
	view.Items = make([]DocumentResponse, len(res.Items))
	for i, d := range res.Items {
		view.Items[i] = documentToResponse(d)
	}
	if res.Page > 1 {
		view.PrevPage = res.Page - 1
	}
	if res.Page*res.PageSize < res.Total {
		view.NextPage = res.Page + 1
	}
	s.render(w, http.StatusOK, "results", view)
}

// DocumentPage renders a stored document.
func (s *Server) DocumentPage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	s.renderDocument(w, r, id, pageView{ID: id})
}

// DocumentAction handles the document page form: action=delete removes the
// document, action=unindex removes it from the search index only.
func (s *Server) DocumentAction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	view := pageView{ID: id}

	switch r.PostFormValue("action") {
	case "delete":
		if err := s.documents.Delete(r.Context(), id); err != nil {
			s.renderDocumentError(w, r, id, err)
			return
		}
		view.Notice = "Deleted."
		s.render(w, http.StatusOK, "document", view)
	case "unindex":
		if err := s.documents.Unindex(r.Context(), id); err != nil {
			s.renderDocumentError(w, r, id, err)
			return
		}
		view.Notice = "Removed from the search index."
		s.renderDocument(w, r, id, view)
	default:
		view.Error = "Unknown action."
		s.renderDocument(w, r, id, view)
	}
}

func (s *Server) pageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithLocation("simple", false, "id",
		runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
	if err != nil {
		s.render(w, http.StatusNotFound, "document", pageView{})
		return 0, false
	}
	return id, true
}

func (s *Server) renderDocument(w http.ResponseWriter, r *http.Request, id int64, view pageView) {
	doc, err := s.documents.Get(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		s.render(w, http.StatusNotFound, "document", view)
		return
	case err != nil:
		s.logger.Error("document page", zap.Int64("document_id", id), zap.Error(err))
		view.Error = "Could not load the document."
		s.render(w, http.StatusInternalServerError, "document", view)
		return
	}
	resp := documentToResponse(&doc)
	view.Document = &resp
	s.render(w, http.StatusOK, "document", view)
}

func (s *Server) renderDocumentError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	view := pageView{ID: id}
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		s.render(w, http.StatusNotFound, "document", view)
		return
	case errors.Is(err, domain.ErrIndexUnavailable):
		view.Error = "The search index is unavailable, try again later."
	default:
		s.logger.Error("document action", zap.Int64("document_id", id), zap.Error(err))
		view.Error = "The action failed."
	}
	s.renderDocument(w, r, id, view)
}

func (s *Server) render(w http.ResponseWriter, status int, page string, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplates[page].ExecuteTemplate(&buf, "layout", view); err != nil {
		s.logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
