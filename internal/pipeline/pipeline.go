// Package pipeline runs the analysis work behind a job: fetch the content
// when needed, score it through the ML service, persist the result, and
// drive the job's lifecycle on the queue. The queue contract stays narrow
// (progress updates and transitions) so the execution mechanism can change
// without touching it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credscan/internal/cache"
	"credscan/internal/fetch"
	"credscan/internal/mlservice"
	"credscan/internal/queue"
	"credscan/internal/store"
	"credscan/internal/telemetry"
	"credscan/pkg/models"

	"github.com/google/uuid"
)

// Progress checkpoints reported to polling clients.
const (
	progressActivated = 10
	progressFetched   = 25
	progressPrepared  = 50
	progressScored    = 80
	progressPersisted = 100
)

// Runner executes analysis jobs. Safe for concurrent use.
type Runner struct {
	queue    *queue.Queue
	ml       mlservice.Client
	fetcher  fetch.Fetcher
	store    store.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// New creates a Runner.
func New(q *queue.Queue, ml mlservice.Client, f fetch.Fetcher, st store.Store, ca cache.Cache, cacheTTL time.Duration) *Runner {
	return &Runner{
		queue:    q,
		ml:       ml,
		fetcher:  f,
		store:    st,
		cache:    ca,
		cacheTTL: cacheTTL,
	}
}

// Dispatch starts the analysis for a previously added job in a background
// goroutine and returns immediately.
func (r *Runner) Dispatch(jobID string) {
	telemetry.JobsInFlight.Inc()
	go r.run(jobID)
}

// run performs the actual analysis. It recovers from panics and always
// leaves the job in a terminal state.
func (r *Runner) run(jobID string) {
	ctx := context.Background()
	start := time.Now()

	defer telemetry.JobsInFlight.Dec()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic in analysis pipeline", "error", rec, "job_id", jobID)
			r.fail(jobID, "", fmt.Errorf("panic: %v", rec))
		}
	}()

	job, ok := r.queue.GetJob(jobID)
	if !ok {
		slog.Error("dispatched job missing from queue", "job_id", jobID)
		return
	}
	input := job.Input

	if err := r.queue.MarkActive(jobID); err != nil {
		slog.Error("activating job", "error", err, "job_id", jobID)
		return
	}
	r.queue.UpdateProgress(jobID, progressActivated)

	// Identical content scored recently is served from the cache.
	contentHash := cache.ContentHash(input.Type, input.Value)
	if cached, found, err := r.cache.GetResult(ctx, contentHash); err == nil && found {
		telemetry.ResultCacheHits.Inc()
		r.finish(ctx, jobID, input, cloneForJob(cached, jobID), start)
		return
	}

	text := input.Value
	sourceURL := ""
	if input.Type == models.InputTypeURL {
		sourceURL = input.Value
		fetched, err := r.fetcher.Fetch(ctx, input.Value)
		if err != nil {
			r.fail(jobID, input.Type, err)
			return
		}
		text = fetched
	} else {
		// Raw text gets the same whitespace normalization fetched pages do.
		text = fetch.ExtractText(text)
	}
	r.queue.UpdateProgress(jobID, progressFetched)
	r.queue.UpdateProgress(jobID, progressPrepared)

	result, err := r.ml.Analyze(ctx, mlservice.AnalyzeRequest{
		Text:      text,
		SourceURL: sourceURL,
	})
	if err != nil {
		r.fail(jobID, input.Type, err)
		return
	}
	r.queue.UpdateProgress(jobID, progressScored)

	result.JobID = jobID
	result.InputType = input.Type
	if sourceURL != "" {
		result.SourceURL = &sourceURL
	}

	if err := r.cache.SetResult(ctx, contentHash, result, r.cacheTTL); err != nil {
		slog.Warn("caching analysis result", "error", err, "job_id", jobID)
	}

	r.finish(ctx, jobID, input, result, start)
}

// finish persists the result and moves the job to completed.
func (r *Runner) finish(ctx context.Context, jobID string, input models.AnalysisInput, result *models.AnalysisResult, start time.Time) {
	if err := r.store.SaveAnalysis(ctx, result); err != nil {
		r.fail(jobID, input.Type, fmt.Errorf("persisting result: %w", err))
		return
	}

	r.queue.UpdateProgress(jobID, progressPersisted)
	if err := r.queue.Complete(jobID); err != nil {
		slog.Error("completing job", "error", err, "job_id", jobID)
		return
	}

	telemetry.PredictionsTotal.WithLabelValues("success", input.Type).Inc()
	telemetry.AnalysisDuration.Observe(time.Since(start).Seconds())
	telemetry.ScoreDistribution.Observe(float64(result.Score))

	slog.Info("analysis completed",
		"job_id", jobID,
		"input_type", input.Type,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (r *Runner) fail(jobID, inputType string, cause error) {
	if err := r.queue.Fail(jobID); err != nil {
		slog.Error("failing job", "error", err, "job_id", jobID)
	}
	if inputType == "" {
		inputType = "unknown"
	}
	telemetry.PredictionsTotal.WithLabelValues("failure", inputType).Inc()
	slog.Error("analysis failed", "error", cause, "job_id", jobID)
}

// cloneForJob rebinds a cached result to the job that hit the cache.
func cloneForJob(cached *models.AnalysisResult, jobID string) *models.AnalysisResult {
	clone := *cached
	clone.ID = uuid.New()
	clone.JobID = jobID
	clone.CreatedAt = time.Now().UTC()
	return &clone
}
