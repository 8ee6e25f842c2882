package handler

import (
	"fmt"
	"net/http"
	"strconv"

	mw "credscan/internal/api/middleware"
	"credscan/internal/api/response"
	"credscan/internal/store"
	"credscan/pkg/apperr"
	"credscan/pkg/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// NewHistoryHandler returns the handler for GET /api/v1/history, pages of
// persisted analyses newest first.
func NewHistoryHandler(st store.Store) mw.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()

		page := 1
		if raw := q.Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return apperr.Validation(apperr.CodeValidation, "page must be a positive integer")
			}
			page = n
		}

		limit := defaultHistoryLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxHistoryLimit {
				return apperr.Validation(apperr.CodeValidation,
					fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			}
			limit = n
		}

		inputType := q.Get("type")
		if inputType != "" && inputType != models.InputTypeURL && inputType != models.InputTypeText {
			return apperr.Validation(apperr.CodeValidation, `type must be "url" or "text"`)
		}

		results, total, err := st.ListAnalyses(r.Context(), store.HistoryFilter{
			InputType: inputType,
			Page:      page,
			Limit:     limit,
		})
		if err != nil {
			return fmt.Errorf("listing analyses: %w", err)
		}
		if results == nil {
			results = []*models.AnalysisResult{}
		}

		response.Collection(w, results, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
		return nil
	}
}
