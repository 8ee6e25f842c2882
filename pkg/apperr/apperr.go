// Package apperr defines the closed set of application error kinds that
// cross the API boundary. Each carries a stable machine-readable code and a
// message authored by the application, safe to return to clients verbatim.
package apperr

import "fmt"

// Kind tags an Error with its place in the taxonomy.
type Kind int

const (
	// KindValidation covers rejected client input. The code is chosen by
	// the caller (VALIDATION_ERROR, INVALID_URL, EMPTY_INPUT, ...).
	KindValidation Kind = iota
	// KindFetch covers upstream content fetch failures.
	KindFetch
	// KindMLService covers failures of the ML scoring dependency.
	KindMLService
	// KindTimeout covers operations that exceeded their deadline.
	KindTimeout
)

// Wire codes for the fixed kinds.
const (
	CodeFetchFailed   = "FETCH_FAILED"
	CodeMLUnavailable = "ML_SERVICE_UNAVAILABLE"
	CodeTimeout       = "TIMEOUT"
	CodeInternal      = "INTERNAL_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidURL    = "INVALID_URL"
	CodeEmptyInput    = "EMPTY_INPUT"
	CodeTextTooLong   = "TEXT_TOO_LONG"
)

// Error is an application error with a stable wire contract.
type Error struct {
	Kind            Kind
	Code            string
	Message         string
	SuggestedAction string
	// Err is the underlying cause, forwarded to monitoring but never to
	// the HTTP response body.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithSuggestedAction returns a copy of e carrying a remediation hint.
func (e *Error) WithSuggestedAction(action string) *Error {
	clone := *e
	clone.SuggestedAction = action
	return &clone
}

// Validation builds a KindValidation error with a caller-specified code.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Fetch builds a KindFetch error wrapping the upstream cause.
func Fetch(message string, cause error) *Error {
	return &Error{Kind: KindFetch, Code: CodeFetchFailed, Message: message, Err: cause}
}

// MLService builds a KindMLService error wrapping the upstream cause.
func MLService(message string, cause error) *Error {
	return &Error{Kind: KindMLService, Code: CodeMLUnavailable, Message: message, Err: cause}
}

// Timeout builds a KindTimeout error wrapping the upstream cause.
func Timeout(message string, cause error) *Error {
	return &Error{Kind: KindTimeout, Code: CodeTimeout, Message: message, Err: cause}
}
