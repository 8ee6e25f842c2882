package models

import (
	"time"
)

const (
	JobStatusWaiting   = "waiting"
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ValidJobStatus reports whether s is one of the four lifecycle states.
func ValidJobStatus(s string) bool {
	switch s {
	case JobStatusWaiting, JobStatusActive, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Job tracks one asynchronous analysis request. The API returns a jobId on
// POST /api/v1/analyze; the client polls GET /api/v1/analyze/{jobId} until
// status is completed or failed.
type Job struct {
	ID          string        `json:"jobId"`
	Status      string        `json:"status"`
	Progress    int           `json:"progress"`
	Input       AnalysisInput `json:"input"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// JobStatusResponse is the read projection of a Job exposed to polling
// clients. Timestamps are serialized as RFC3339 strings.
type JobStatusResponse struct {
	JobID       string `json:"jobId"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}
