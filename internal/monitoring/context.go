// Package monitoring provides the exception-capture contract: a bounded,
// privacy-safe request snapshot and a sink that receives failures together
// with that snapshot. The sink sees full error detail (including stack
// context); HTTP response bodies never do.
package monitoring

import "net/http"

const maxUserAgentLen = 200

// RequestContext is the sanitized snapshot attached to captured exceptions.
type RequestContext struct {
	URL       string `json:"url"`
	Method    string `json:"method"`
	UserAgent string `json:"userAgent"`
	RequestID string `json:"requestId,omitempty"`
}

// ExtractRequestContext derives a RequestContext from an inbound request.
// The URL is the path component only (no query string), the user agent is
// truncated to a 200-character prefix ("unknown" when absent), and the
// request id passes through only when the client sent one. Never panics
// and never mutates the request.
func ExtractRequestContext(r *http.Request) RequestContext {
	if r == nil {
		return RequestContext{UserAgent: "unknown"}
	}

	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	// Truncate on a rune boundary so multi-byte agents stay valid UTF-8.
	if runes := []rune(ua); len(runes) > maxUserAgentLen {
		ua = string(runes[:maxUserAgentLen])
	}

	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}

	return RequestContext{
		URL:       path,
		Method:    r.Method,
		UserAgent: ua,
		RequestID: r.Header.Get("X-Request-ID"),
	}
}
