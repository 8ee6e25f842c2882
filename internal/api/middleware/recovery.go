package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"credscan/internal/api/response"
	"credscan/internal/monitoring"
	"credscan/pkg/apperr"
)

// Recovery converts panics into the same sanitized error body the error
// handler produces. The stack trace is logged and captured, never written
// to the response.
func Recovery(production bool, sink monitoring.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"error", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					err := fmt.Errorf("panic: %v", rec)
					sink.CaptureException(err, monitoring.ExtractRequestContext(r))

					message := "An unexpected error occurred"
					if !production {
						message = err.Error()
					}
					response.Error(w, http.StatusInternalServerError,
						apperr.CodeInternal, message, "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
