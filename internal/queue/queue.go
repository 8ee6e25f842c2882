// Package queue owns the in-process analysis job store and enforces the
// job lifecycle invariants: unique ids, clamped progress, and forward-only
// status transitions. Jobs live for the duration of the process; there is
// no cross-restart persistence.
package queue

import (
	"errors"
	"sync"
	"time"

	"credscan/pkg/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Forward-only lifecycle. A job may fail straight from waiting when the
// pipeline rejects it before activation.
var validTransitions = map[string][]string{
	models.JobStatusWaiting: {models.JobStatusActive, models.JobStatusFailed},
	models.JobStatusActive:  {models.JobStatusCompleted, models.JobStatusFailed},
}

// Queue is the analysis job scheduler. All mutations are serialized behind
// a single mutex; reads observe the most recent completed write.
type Queue struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{jobs: make(map[string]*models.Job)}
}

// AddJob inserts a new job for the given input and returns its id and
// initial status. Input is validated upstream by the handler layer; the
// queue stores it as-is for traceability.
func (q *Queue) AddJob(input models.AnalysisInput) (string, string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.New().String()
	for _, exists := q.jobs[id]; exists; _, exists = q.jobs[id] {
		id = uuid.New().String()
	}

	q.jobs[id] = &models.Job{
		ID:        id,
		Status:    models.JobStatusWaiting,
		Progress:  0,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
	return id, models.JobStatusWaiting
}

// GetJobStatus returns the read projection of a job. The second return is
// false when no job with that id exists; a missing job is a normal outcome,
// not an error.
func (q *Queue) GetJobStatus(jobID string) (models.JobStatusResponse, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return models.JobStatusResponse{}, false
	}

	resp := models.JobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp, true
}

// GetJob returns a copy of the full job record.
func (q *Queue) GetJob(jobID string) (models.Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// UpdateProgress clamps value into [0,100] and records it. Unknown ids are
// a silent no-op; progress is a total function with no error path.
func (q *Queue) UpdateProgress(jobID string, value int) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if job, ok := q.jobs[jobID]; ok {
		job.Progress = value
	}
}

// MarkActive moves a waiting job to active.
func (q *Queue) MarkActive(jobID string) error {
	return q.transition(jobID, models.JobStatusActive)
}

// Complete moves an active job to completed and stamps completedAt.
func (q *Queue) Complete(jobID string) error {
	return q.transition(jobID, models.JobStatusCompleted)
}

// Fail moves a waiting or active job to failed and stamps completedAt.
func (q *Queue) Fail(jobID string) error {
	return q.transition(jobID, models.JobStatusFailed)
}

func (q *Queue) transition(jobID, next string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return ErrNotFound
	}

	allowed := false
	for _, s := range validTransitions[job.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Join(ErrInvalidTransition,
			errors.New(job.Status+" -> "+next))
	}

	job.Status = next
	if next == models.JobStatusCompleted || next == models.JobStatusFailed {
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
	return nil
}

// Len reports how many jobs are currently tracked.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.jobs)
}

// ClearJobs empties the store. Intended for test and administrative reset.
func (q *Queue) ClearJobs() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = make(map[string]*models.Job)
}
