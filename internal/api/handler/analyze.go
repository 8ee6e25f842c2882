package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	mw "credscan/internal/api/middleware"
	"credscan/internal/api/response"
	"credscan/internal/queue"
	"credscan/pkg/apperr"
	"credscan/pkg/models"
)

// Dispatcher starts background analysis for a queued job.
type Dispatcher interface {
	Dispatch(jobID string)
}

// NewAnalyzeHandler returns the handler for POST /api/v1/analyze. It
// validates the submission, enqueues a job, kicks off the pipeline and
// responds 202 with the job id for polling.
func NewAnalyzeHandler(q *queue.Queue, dispatcher Dispatcher, maxTextLength int) mw.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		// Cap the body before decoding so oversized submissions are
		// rejected without buffering them. Escaped JSON can roughly
		// double the payload for a value of maxTextLength characters.
		limit := int64(maxTextLength)*2 + 1024
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		var req struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return apperr.Validation(apperr.CodeTextTooLong,
					"The submitted text is too long").WithSuggestedAction("Shorten the text and try again")
			}
			return apperr.Validation(apperr.CodeValidation, "Request body must be valid JSON")
		}

		input, err := validateInput(req.Type, req.Value, maxTextLength)
		if err != nil {
			return err
		}

		jobID, status := q.AddJob(input)
		dispatcher.Dispatch(jobID)

		response.Accepted(w, map[string]string{
			"jobId":  jobID,
			"status": status,
		})
		return nil
	}
}

func validateInput(inputType, value string, maxTextLength int) (models.AnalysisInput, error) {
	value = strings.TrimSpace(value)

	switch inputType {
	case models.InputTypeURL:
		if value == "" {
			return models.AnalysisInput{}, apperr.Validation(apperr.CodeEmptyInput,
				"A URL is required").WithSuggestedAction("Provide the address of the page to analyze")
		}
		parsed, err := url.Parse(value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return models.AnalysisInput{}, apperr.Validation(apperr.CodeInvalidURL,
				"The provided URL is not valid").WithSuggestedAction("Check the URL format and try again")
		}
	case models.InputTypeText:
		if value == "" {
			return models.AnalysisInput{}, apperr.Validation(apperr.CodeEmptyInput,
				"Text to analyze is required").WithSuggestedAction("Paste the content you want checked")
		}
		if maxTextLength > 0 && len(value) > maxTextLength {
			return models.AnalysisInput{}, apperr.Validation(apperr.CodeTextTooLong,
				"The submitted text is too long").WithSuggestedAction("Shorten the text and try again")
		}
	default:
		return models.AnalysisInput{}, apperr.Validation(apperr.CodeValidation,
			`The "type" field must be "url" or "text"`)
	}

	return models.AnalysisInput{Type: inputType, Value: value}, nil
}
