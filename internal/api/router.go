package api

import (
	"net/http"

	mw "credscan/internal/api/middleware"
	"credscan/internal/api/response"
	"credscan/internal/monitoring"

	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Production bool
	Sink       monitoring.Sink
	RateLimit  *mw.RateLimit

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	AnalyzeHandler http.HandlerFunc
	PollJobHandler http.HandlerFunc
	ResultHandler  http.HandlerFunc
	HistoryHandler http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger)
	r.Use(mw.Recovery(deps.Production, deps.Sink))

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Submission is rate limited per client; polling and history are not.
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))
	})

	r.Get("/api/v1/analyze/{jobID}", orNotImplemented(deps.PollJobHandler))
	r.Get("/api/v1/analyze/{jobID}/result", orNotImplemented(deps.ResultHandler))
	r.Get("/api/v1/history", orNotImplemented(deps.HistoryHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED",
			"Endpoint not yet implemented", "")
	}
}
