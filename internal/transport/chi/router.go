package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/metrics"
)

// NewRouter assembles the middleware stack, the JSON API and the HTML pages.
// apiKeys guard the JSON API only.
func NewRouter(s *Server, logger *zap.Logger, apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.Group(func(api chi.Router) {
		api.Use(BearerAuthMiddleware(apiKeys))
		Handler(s, ChiServerOptions{
			BaseRouter:       api,
			ErrorHandlerFunc: s.BadRequest,
		})
	})
	s.MountPages(r)
	return r
}
