package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeInvalidQuery     ErrorCode = "invalid_query"
	ErrorCodeDocumentNotFound ErrorCode = "document_not_found"
	ErrorCodeAlreadyExists    ErrorCode = "already_exists"
	ErrorCodeIndexUnavailable ErrorCode = "index_unavailable"
	ErrorCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DocumentRequest is the body of create and update requests.
type DocumentRequest struct {
	Text    string `json:"text"`
	Rubrics string `json:"rubrics,omitempty"`
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Rubrics   string    `json:"rubrics"`
	CreatedAt time.Time `json:"created_at"`
}

// CountResponse reports the number of stored documents.
type CountResponse struct {
	Count int `json:"count"`
}

// BatchCreateRequest is the body of POST /api/documents/batch.
type BatchCreateRequest struct {
	Documents []DocumentRequest `json:"documents"`
}

// BatchDeleteRequest is the body of DELETE /api/documents/batch.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchResultItem is the outcome of one batch item.
type BatchResultItem struct {
	Index  int            `json:"index"`
	ID     *int64         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is the reply to batch requests.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// SearchParams are the query parameters of GET /api/search.
type SearchParams struct {
	Q        string `form:"q" json:"q"`
	Page     *int   `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int   `form:"page_size,omitempty" json:"page_size,omitempty"`
}

// SearchResponse is one page of search results in rank order.
type SearchResponse struct {
	Items       []DocumentResponse `json:"items"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	Unavailable bool               `json:"unavailable"`
}

// ReindexResponse reports how many documents were pushed to the index.
type ReindexResponse struct {
	Indexed int `json:"indexed"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// DocumentID is the path parameter of document routes.
type DocumentID = int64

// ServerInterface is the JSON API surface.
type ServerInterface interface {
	// (POST /api/documents)
	CreateDocument(w http.ResponseWriter, r *http.Request)
	// (POST /api/documents/batch)
	BatchCreate(w http.ResponseWriter, r *http.Request)
	// (DELETE /api/documents/batch)
	BatchDelete(w http.ResponseWriter, r *http.Request)
	// (GET /api/documents/count)
	CountDocuments(w http.ResponseWriter, r *http.Request)
	// (GET /api/documents/{id})
	GetDocument(w http.ResponseWriter, r *http.Request, id DocumentID)
	// (PUT /api/documents/{id})
	UpdateDocument(w http.ResponseWriter, r *http.Request, id DocumentID)
	// (DELETE /api/documents/{id})
	DeleteDocument(w http.ResponseWriter, r *http.Request, id DocumentID)
	// (DELETE /api/documents/{id}/index)
	UnindexDocument(w http.ResponseWriter, r *http.Request, id DocumentID)
	// (GET /api/search)
	SearchDocuments(w http.ResponseWriter, r *http.Request, params SearchParams)
	// (POST /api/reindex)
	Reindex(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures Handler.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a chi router, binding path and query parameters.
func Handler(si ServerInterface, opts ChiServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &wrapper{handler: si, errorHandler: opts.ErrorHandlerFunc}

	r.Post("/api/documents", si.CreateDocument)
	r.Post("/api/documents/batch", si.BatchCreate)
	r.Delete("/api/documents/batch", si.BatchDelete)
	r.Get("/api/documents/count", si.CountDocuments)
	r.Get("/api/documents/{id}", w.withID(si.GetDocument))
	r.Put("/api/documents/{id}", w.withID(si.UpdateDocument))
	r.Delete("/api/documents/{id}", w.withID(si.DeleteDocument))
	r.Delete("/api/documents/{id}/index", w.withID(si.UnindexDocument))
	r.Get("/api/search", w.SearchDocuments)
	r.Post("/api/reindex", si.Reindex)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return "invalid format for parameter " + e.ParamName + ": " + e.Err.Error()
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type wrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *wrapper) withID(h func(http.ResponseWriter, *http.Request, DocumentID)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var id DocumentID
		err := runtime.BindStyledParameterWithLocation("simple", false, "id",
			runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
		if err != nil {
			w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "id", Err: err})
			return
		}
		h(rw, r, id)
	}
}

// SearchDocuments binds the search query parameters.
func (w *wrapper) SearchDocuments(rw http.ResponseWriter, r *http.Request) {
	var params SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", query, &params.PageSize); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "page_size", Err: err})
		return
	}
	w.handler.SearchDocuments(rw, r, params)
}
