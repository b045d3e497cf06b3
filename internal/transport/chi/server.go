package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/domain"
	dombatch "github.com/kailas-cloud/docindex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	batchuc "github.com/kailas-cloud/docindex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/docindex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docindex/internal/usecase/search"
)

// DocumentService is the document use case consumed by the handlers.
type DocumentService interface {
	Create(ctx context.Context, text, rubrics string) (domdoc.Document, error)
	Get(ctx context.Context, id int64) (domdoc.Document, error)
	Update(ctx context.Context, id int64, text, rubrics string) (domdoc.Document, error)
	Delete(ctx context.Context, id int64) error
	Unindex(ctx context.Context, id int64) error
	Reindex(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// BatchService is the batch use case consumed by the handlers.
type BatchService interface {
	Create(ctx context.Context, items []batchuc.Item) []dombatch.Result
	Delete(ctx context.Context, ids []int64) []dombatch.Result
}

// SearchService answers document queries.
type SearchService interface {
	Search(ctx context.Context, query string, page, pageSize int) (searchuc.Page[*domdoc.Document], error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the JSON API and the HTML pages.
type Server struct {
	documents       DocumentService
	batch           BatchService
	search          SearchService
	health          HealthChecker
	logger          *zap.Logger
	defaultPageSize int
	maxBatchSize    int
	errorHandlers   []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP server.
func NewServer(
	documents DocumentService,
	batch BatchService,
	search SearchService,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents:       documents,
		batch:           batch,
		search:          search,
		health:          health,
		logger:          logger,
		defaultPageSize: 20,
		maxBatchSize:    batchuc.MaxBatchSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorCodeIndexUnavailable),
	}
	return s
}

// WithDefaultPageSize sets the page size used when a request omits it.
func (s *Server) WithDefaultPageSize(n int) *Server {
	if n > 0 {
		s.defaultPageSize = n
	}
	return s
}

// WithMaxBatchSize sets the largest accepted batch.
func (s *Server) WithMaxBatchSize(n int) *Server {
	if n > 0 {
		s.maxBatchSize = n
	}
	return s
}

// CreateDocument handles POST /api/documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Create(r.Context(), req.Text, req.Rubrics)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/documents/%d", doc.ID()))
	writeJSON(w, http.StatusCreated, documentToResponse(&doc))
}

// GetDocument handles GET /api/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, id DocumentID) {
	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// UpdateDocument handles PUT /api/documents/{id}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request, id DocumentID) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Update(r.Context(), id, req.Text, req.Rubrics)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// DeleteDocument handles DELETE /api/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request, id DocumentID) {
	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnindexDocument handles DELETE /api/documents/{id}/index.
func (s *Server) UnindexDocument(w http.ResponseWriter, r *http.Request, id DocumentID) {
	if err := s.documents.Unindex(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CountDocuments handles GET /api/documents/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request) {
	n, err := s.documents.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// BatchCreate handles POST /api/documents/batch.
func (s *Server) BatchCreate(w http.ResponseWriter, r *http.Request) {
	var req BatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", s.maxBatchSize))
		return
	}

	items := make([]batchuc.Item, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = batchuc.Item{Text: d.Text, Rubrics: d.Rubrics}
	}

	writeJSON(w, http.StatusOK, batchToResponse(s.batch.Create(r.Context(), items)))
}

// BatchDelete handles DELETE /api/documents/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.IDs) == 0 || len(req.IDs) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("ids count must be between 1 and %d", s.maxBatchSize))
		return
	}

	writeJSON(w, http.StatusOK, batchToResponse(s.batch.Delete(r.Context(), req.IDs)))
}

// SearchDocuments handles GET /api/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request, params SearchParams) {
	page := 1
	if params.Page != nil {
		page = *params.Page
	}
	pageSize := s.defaultPageSize
	if params.PageSize != nil {
		pageSize = *params.PageSize
	}

	res, err := s.search.Search(r.Context(), params.Q, page, pageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]DocumentResponse, len(res.Items))
	for i, d := range res.Items {
		items[i] = documentToResponse(d)
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:       items,
		Total:       res.Total,
		Page:        res.Page,
		PageSize:    res.PageSize,
		Unavailable: res.Unavailable,
	})
}

// Reindex handles POST /api/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.documents.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Indexed: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// BadRequest is the ChiServerOptions error handler for unbindable parameters.
func (s *Server) BadRequest(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) && pe.ParamName == "id" {
		writeError(w, http.StatusNotFound, ErrorCodeDocumentNotFound, domain.ErrDocumentNotFound.Error())
		return
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidDocument,
		domain.ErrDocumentNotFound,
		domain.ErrAlreadyExists,
		domain.ErrStoreUnavailable,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func documentToResponse(doc *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID(),
		Text:      doc.Text(),
		Rubrics:   doc.Rubrics(),
		CreatedAt: doc.CreatedAt(),
	}
}

func batchToResponse(results []dombatch.Result) BatchResponse {
	resp := BatchResponse{Items: make([]BatchResultItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToResponse(res)
		if res.Status() == dombatch.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}

func batchResultToResponse(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		Index:  r.Index(),
		Status: string(r.Status()),
	}
	if r.Status() == dombatch.StatusOK {
		id := r.ID()
		item.ID = &id
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return ErrorCodeDocumentNotFound
	case errors.Is(err, domain.ErrInvalidDocument):
		return ErrorCodeValidationFailed
	case errors.Is(err, domain.ErrAlreadyExists):
		return ErrorCodeAlreadyExists
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ErrorCodeStoreUnavailable
	default:
		return ErrorCodeInternalError
	}
}
