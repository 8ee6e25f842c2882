package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"credscan/internal/api/response"
	"credscan/internal/monitoring"
	"credscan/pkg/apperr"
)

// HandlerFunc is an http handler that reports failure by returning an
// error instead of writing its own error body. ErrorHandler.Wrap converts
// the returned error into the stable wire shape.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler turns handler errors into JSON error responses. In
// production mode unclassified errors are masked so internals never reach
// clients; classified errors keep their code and message in every mode.
type ErrorHandler struct {
	production bool
	sink       monitoring.Sink
}

func NewErrorHandler(production bool, sink monitoring.Sink) *ErrorHandler {
	return &ErrorHandler{production: production, sink: sink}
}

// Wrap adapts a HandlerFunc into a plain http.HandlerFunc.
func (h *ErrorHandler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

func (h *ErrorHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := statusFor(appErr.Kind)
		slog.Warn("request failed",
			"code", appErr.Code,
			"status", status,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.Error(w, status, appErr.Code, appErr.Message, appErr.SuggestedAction)
		return
	}

	// Unclassified. Full detail goes to the log and the monitoring sink;
	// the response body stays generic in production.
	reqCtx := monitoring.ExtractRequestContext(r)
	h.sink.CaptureException(err, reqCtx)

	message := "An unexpected error occurred"
	if !h.production {
		message = err.Error()
	}
	response.Error(w, http.StatusInternalServerError, apperr.CodeInternal, message, "")
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindFetch:
		return http.StatusBadGateway
	case apperr.KindMLService:
		return http.StatusServiceUnavailable
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
