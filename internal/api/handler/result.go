package handler

import (
	"errors"
	"fmt"
	"net/http"

	mw "credscan/internal/api/middleware"
	"credscan/internal/api/response"
	"credscan/internal/queue"
	"credscan/internal/store"
	"credscan/pkg/models"

	"github.com/go-chi/chi/v5"
)

// NewResultHandler returns the handler for GET /api/v1/analyze/{jobID}/result.
// The result is only available once the job reached completed; polling it
// earlier yields 409 so clients keep waiting on the status endpoint.
func NewResultHandler(q *queue.Queue, st store.Store) mw.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		jobID := chi.URLParam(r, "jobID")

		job, ok := q.GetJob(jobID)
		if !ok {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
				"No job exists with the given id",
				"The job may have been cleared; submit the analysis again")
			return nil
		}

		switch job.Status {
		case models.JobStatusCompleted:
			// fall through to the lookup
		case models.JobStatusFailed:
			response.Error(w, http.StatusConflict, "ANALYSIS_FAILED",
				"The analysis failed and produced no result",
				"Submit the analysis again")
			return nil
		default:
			response.Error(w, http.StatusConflict, "RESULT_NOT_READY",
				"The analysis has not finished yet",
				"Poll the job status until it reports completed")
			return nil
		}

		result, err := st.GetAnalysisByJobID(r.Context(), jobID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusConflict, "RESULT_NOT_READY",
				"The analysis has not finished yet",
				"Poll the job status until it reports completed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading result for job %s: %w", jobID, err)
		}

		response.JSON(w, result)
		return nil
	}
}
