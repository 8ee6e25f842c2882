package handler

import (
	"fmt"
	"net/http"
	"time"

	mw "credscan/internal/api/middleware"
	"credscan/internal/api/response"
	"credscan/internal/queue"
	"credscan/pkg/models"

	"github.com/go-chi/chi/v5"
)

// NewPollJobHandler returns the handler for GET /api/v1/analyze/{jobID}.
// An unknown job id is a normal polling outcome, not a server fault, so it
// writes 404 directly instead of raising an error.
func NewPollJobHandler(q *queue.Queue) mw.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		jobID := chi.URLParam(r, "jobID")

		status, ok := q.GetJobStatus(jobID)
		if !ok {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
				"No job exists with the given id",
				"The job may have been cleared; submit the analysis again")
			return nil
		}

		if !ValidJobStatusResponse(status) {
			return fmt.Errorf("queue returned malformed status for job %s: %+v", jobID, status)
		}

		response.JSON(w, status)
		return nil
	}
}

// ValidJobStatusResponse reports whether a status payload is structurally
// sound: a non-empty id, a known status, progress within [0,100] and
// parseable timestamps. It never panics, whatever the payload holds.
func ValidJobStatusResponse(resp models.JobStatusResponse) bool {
	if resp.JobID == "" {
		return false
	}
	if !models.ValidJobStatus(resp.Status) {
		return false
	}
	if resp.Progress < 0 || resp.Progress > 100 {
		return false
	}
	if _, err := time.Parse(time.RFC3339, resp.CreatedAt); err != nil {
		return false
	}
	if resp.CompletedAt != "" {
		if _, err := time.Parse(time.RFC3339, resp.CompletedAt); err != nil {
			return false
		}
	}
	return true
}
