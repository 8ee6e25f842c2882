package queue_test

import (
	"sync"
	"testing"
	"time"

	"credscan/internal/queue"
	"credscan/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textInput(value string) models.AnalysisInput {
	return models.AnalysisInput{Type: models.InputTypeText, Value: value}
}

func TestAddJob_InitialState(t *testing.T) {
	q := queue.New()

	jobID, status := q.AddJob(textInput("hello"))
	require.NotEmpty(t, jobID)
	assert.Equal(t, models.JobStatusWaiting, status)

	resp, ok := q.GetJobStatus(jobID)
	require.True(t, ok)
	assert.Equal(t, jobID, resp.JobID)
	assert.Equal(t, models.JobStatusWaiting, resp.Status)
	assert.Equal(t, 0, resp.Progress)
	assert.Empty(t, resp.CompletedAt)

	_, err := time.Parse(time.RFC3339, resp.CreatedAt)
	assert.NoError(t, err, "createdAt must be a valid RFC3339 timestamp")
}

func TestAddJob_IDsAreDistinct(t *testing.T) {
	q := queue.New()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, _ := q.AddJob(textInput("hello"))
		assert.False(t, seen[id], "duplicate job id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 20, q.Len())
}

func TestAddJob_ConcurrentCreationsStayUnique(t *testing.T) {
	q := queue.New()

	const workers = 16
	const perWorker = 50

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, _ := q.AddJob(textInput("hello"))
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestGetJobStatus_MissingJob(t *testing.T) {
	q := queue.New()

	_, ok := q.GetJobStatus("missing-id")
	assert.False(t, ok)
}

func TestUpdateProgress_Clamps(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	cases := []struct {
		in   int
		want int
	}{
		{-1000, 0},
		{-1, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{101, 100},
		{1000, 100},
	}
	for _, tc := range cases {
		q.UpdateProgress(jobID, tc.in)
		resp, ok := q.GetJobStatus(jobID)
		require.True(t, ok)
		assert.Equal(t, tc.want, resp.Progress, "progress for input %d", tc.in)
	}
}

func TestUpdateProgress_UnknownJobIsNoOp(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	q.UpdateProgress("missing-id", 55)

	resp, _ := q.GetJobStatus(jobID)
	assert.Equal(t, 0, resp.Progress)
}

func TestTransitions_HappyPath(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	require.NoError(t, q.MarkActive(jobID))
	resp, _ := q.GetJobStatus(jobID)
	assert.Equal(t, models.JobStatusActive, resp.Status)
	assert.Empty(t, resp.CompletedAt, "completedAt must be absent before a terminal state")

	require.NoError(t, q.Complete(jobID))
	resp, _ = q.GetJobStatus(jobID)
	assert.Equal(t, models.JobStatusCompleted, resp.Status)
	require.NotEmpty(t, resp.CompletedAt)
	_, err := time.Parse(time.RFC3339, resp.CompletedAt)
	assert.NoError(t, err)
}

func TestTransitions_ActiveToFailed(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	require.NoError(t, q.MarkActive(jobID))
	require.NoError(t, q.Fail(jobID))

	resp, _ := q.GetJobStatus(jobID)
	assert.Equal(t, models.JobStatusFailed, resp.Status)
	assert.NotEmpty(t, resp.CompletedAt)
}

func TestTransitions_WaitingToFailed(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	require.NoError(t, q.Fail(jobID))

	resp, _ := q.GetJobStatus(jobID)
	assert.Equal(t, models.JobStatusFailed, resp.Status)
}

func TestTransitions_NeverReverse(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	require.NoError(t, q.MarkActive(jobID))
	require.NoError(t, q.Complete(jobID))

	assert.ErrorIs(t, q.MarkActive(jobID), queue.ErrInvalidTransition)
	assert.ErrorIs(t, q.Fail(jobID), queue.ErrInvalidTransition)
	assert.ErrorIs(t, q.Complete(jobID), queue.ErrInvalidTransition)

	resp, _ := q.GetJobStatus(jobID)
	assert.Equal(t, models.JobStatusCompleted, resp.Status)
}

func TestTransitions_SkippingForwardIsRejected(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	// completed requires passing through active first
	assert.ErrorIs(t, q.Complete(jobID), queue.ErrInvalidTransition)
}

func TestTransitions_UnknownJob(t *testing.T) {
	q := queue.New()
	assert.ErrorIs(t, q.MarkActive("missing-id"), queue.ErrNotFound)
}

func TestClearJobs(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))
	q.AddJob(textInput("world"))

	q.ClearJobs()

	assert.Equal(t, 0, q.Len())
	_, ok := q.GetJobStatus(jobID)
	assert.False(t, ok)
}

func TestGetJob_ReturnsInputCopy(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(models.AnalysisInput{Type: models.InputTypeURL, Value: "https://example.com/article"})

	job, ok := q.GetJob(jobID)
	require.True(t, ok)
	assert.Equal(t, models.InputTypeURL, job.Input.Type)
	assert.Equal(t, "https://example.com/article", job.Input.Value)
}

func TestScenario_OverflowProgressThenPoll(t *testing.T) {
	q := queue.New()

	jobID, status := q.AddJob(textInput("hello"))
	assert.Equal(t, models.JobStatusWaiting, status)

	q.UpdateProgress(jobID, 150)

	resp, ok := q.GetJobStatus(jobID)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusWaiting, resp.Status)
	assert.Equal(t, 100, resp.Progress)
	assert.NotEmpty(t, resp.CreatedAt)

	_, ok = q.GetJobStatus("missing-id")
	assert.False(t, ok)
}

func TestConcurrentProgressWritesStayInRange(t *testing.T) {
	q := queue.New()
	jobID, _ := q.AddJob(textInput("hello"))

	var wg sync.WaitGroup
	for v := -200; v <= 200; v += 7 {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			q.UpdateProgress(jobID, val)
		}(v)
	}
	wg.Wait()

	resp, ok := q.GetJobStatus(jobID)
	require.True(t, ok)
	assert.GreaterOrEqual(t, resp.Progress, 0)
	assert.LessOrEqual(t, resp.Progress, 100)
}
