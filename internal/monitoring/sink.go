package monitoring

import "log/slog"

// Sink receives failures raised during request handling, together with the
// request snapshot. Implementations may forward to an error-tracking
// service; the default logs through slog.
type Sink interface {
	CaptureException(err error, reqCtx RequestContext)
}

// LogSink writes captured exceptions to the default slog logger.
type LogSink struct{}

func (LogSink) CaptureException(err error, reqCtx RequestContext) {
	slog.Error("captured exception",
		"error", err,
		"url", reqCtx.URL,
		"method", reqCtx.Method,
		"user_agent", reqCtx.UserAgent,
		"request_id", reqCtx.RequestID,
	)
}
