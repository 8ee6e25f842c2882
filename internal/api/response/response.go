// Package response writes the JSON wire format consumed by the web client.
// Payloads are flat objects with camelCase keys.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggestedAction,omitempty"`
}

type collectionBody struct {
	Items any            `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}

type PaginationMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
}

func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func Accepted(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusAccepted, data)
}

func Collection(w http.ResponseWriter, items any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, collectionBody{Items: items, Meta: meta})
}

// Error writes the stable error shape. suggestedAction may be empty, in
// which case the field is omitted entirely.
func Error(w http.ResponseWriter, status int, code, message, suggestedAction string) {
	writeJSON(w, status, errorBody{
		Code:            code,
		Message:         message,
		SuggestedAction: suggestedAction,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
