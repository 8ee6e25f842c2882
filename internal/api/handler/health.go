package handler

import (
	"context"
	"net/http"
	"time"

	"credscan/internal/api/response"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the health of the ML scoring dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler returns the handler for GET /api/v1/health. Degraded
// dependencies are reported per component; the endpoint itself answers 200
// as long as the process is serving.
func NewHealthHandler(db, cache Pinger, ml HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]string{
			"database":  componentStatus(db.Ping(ctx)),
			"cache":     componentStatus(cache.Ping(ctx)),
			"mlService": componentStatus(ml.Health(ctx)),
		}

		status := "ok"
		for _, s := range components {
			if s != "ok" {
				status = "degraded"
				break
			}
		}

		response.JSON(w, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}

func componentStatus(err error) string {
	if err != nil {
		return "unavailable"
	}
	return "ok"
}
