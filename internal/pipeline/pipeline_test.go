package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"credscan/internal/cache"
	"credscan/internal/mlservice"
	"credscan/internal/queue"
	"credscan/internal/store"
	"credscan/pkg/apperr"
	"credscan/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMLClient struct {
	mu       sync.Mutex
	calls    int
	result   *models.AnalysisResult
	err      error
	lastText string
}

func (m *mockMLClient) Analyze(ctx context.Context, req mlservice.AnalyzeRequest) (*models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastText = req.Text
	if m.err != nil {
		return nil, m.err
	}
	clone := *m.result
	return &clone, nil
}

func (m *mockMLClient) Health(ctx context.Context) error { return nil }

func (m *mockMLClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockFetcher struct {
	text string
	err  error
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockStore struct {
	mu      sync.Mutex
	saved   []*models.AnalysisResult
	saveErr error
}

func (m *mockStore) Ping(ctx context.Context) error { return nil }

func (m *mockStore) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, result)
	return nil
}

func (m *mockStore) GetAnalysisByJobID(ctx context.Context, jobID string) (*models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.saved {
		if r.JobID == jobID {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListAnalyses(ctx context.Context, filter store.HistoryFilter) ([]*models.AnalysisResult, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, len(m.saved), nil
}

func (m *mockStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// memCache is an in-memory Cache good enough for pipeline tests.
type memCache struct {
	mu      sync.Mutex
	results map[string]*models.AnalysisResult
}

func newMemCache() *memCache {
	return &memCache{results: make(map[string]*models.AnalysisResult)}
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *memCache) Delete(ctx context.Context, key string) error { return nil }

func (c *memCache) SetResult(ctx context.Context, contentHash string, result *models.AnalysisResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[contentHash] = result
	return nil
}

func (c *memCache) GetResult(ctx context.Context, contentHash string) (*models.AnalysisResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[contentHash]
	return r, ok, nil
}

func (c *memCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

var _ cache.Cache = (*memCache)(nil)

func sampleResult(score int) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:       uuid.New(),
		Score:    score,
		Overview: "Mixed credibility signals",
		RedFlags: []models.RedFlag{
			{ID: "rf-1", Description: "Sensational language", Severity: "medium"},
		},
		PositiveIndicators: []models.Indicator{
			{ID: "pi-1", Description: "Cites named sources", Icon: "check"},
		},
		Keywords:  []models.Keyword{{Term: "reportedly", Impact: "negative", Weight: 0.4}},
		CreatedAt: time.Now().UTC(),
	}
}

func waitForStatus(t *testing.T, q *queue.Queue, jobID, want string) models.JobStatusResponse {
	t.Helper()
	var last models.JobStatusResponse
	require.Eventually(t, func() bool {
		resp, ok := q.GetJobStatus(jobID)
		if !ok {
			return false
		}
		last = resp
		return resp.Status == want
	}, 2*time.Second, 5*time.Millisecond, "job never reached status %q (last: %+v)", want, last)
	return last
}

func TestRunnerCompletesTextJob(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{result: sampleResult(72)}
	st := &mockStore{}
	runner := New(q, ml, &mockFetcher{}, st, newMemCache(), time.Minute)

	jobID, status := q.AddJob(models.AnalysisInput{Type: models.InputTypeText, Value: "Breaking   news\r\nabout   things"})
	assert.Equal(t, models.JobStatusWaiting, status)

	runner.Dispatch(jobID)

	resp := waitForStatus(t, q, jobID, models.JobStatusCompleted)
	assert.Equal(t, 100, resp.Progress)
	assert.NotEmpty(t, resp.CompletedAt)

	require.Equal(t, 1, st.savedCount())
	saved, err := st.GetAnalysisByJobID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, saved.JobID)
	assert.Equal(t, models.InputTypeText, saved.InputType)
	assert.Nil(t, saved.SourceURL)
	assert.Equal(t, 72, saved.Score)

	// Whitespace is normalized before scoring.
	assert.Equal(t, "Breaking news\nabout things", ml.lastText)
}

func TestRunnerCompletesURLJob(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{result: sampleResult(40)}
	st := &mockStore{}
	fetcher := &mockFetcher{text: "fetched article body"}
	runner := New(q, ml, fetcher, st, newMemCache(), time.Minute)

	jobID, _ := q.AddJob(models.AnalysisInput{Type: models.InputTypeURL, Value: "https://example.com/story"})
	runner.Dispatch(jobID)

	waitForStatus(t, q, jobID, models.JobStatusCompleted)

	saved, err := st.GetAnalysisByJobID(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, saved.SourceURL)
	assert.Equal(t, "https://example.com/story", *saved.SourceURL)
	assert.Equal(t, models.InputTypeURL, saved.InputType)
	assert.Equal(t, "fetched article body", ml.lastText)
}

func TestRunnerFailsJobOnFetchError(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{result: sampleResult(50)}
	fetcher := &mockFetcher{err: apperr.Fetch("Could not fetch the requested content", nil)}
	runner := New(q, ml, fetcher, &mockStore{}, newMemCache(), time.Minute)

	jobID, _ := q.AddJob(models.AnalysisInput{Type: models.InputTypeURL, Value: "https://unreachable.test"})
	runner.Dispatch(jobID)

	waitForStatus(t, q, jobID, models.JobStatusFailed)
	assert.Equal(t, 0, ml.callCount())
}

func TestRunnerFailsJobOnMLError(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{err: apperr.MLService("The analysis service is unavailable", nil)}
	runner := New(q, ml, &mockFetcher{}, &mockStore{}, newMemCache(), time.Minute)

	jobID, _ := q.AddJob(models.AnalysisInput{Type: models.InputTypeText, Value: "some text"})
	runner.Dispatch(jobID)

	waitForStatus(t, q, jobID, models.JobStatusFailed)
}

func TestRunnerFailsJobOnPersistError(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{result: sampleResult(50)}
	st := &mockStore{saveErr: store.ErrDuplicateKey}
	runner := New(q, ml, &mockFetcher{}, st, newMemCache(), time.Minute)

	jobID, _ := q.AddJob(models.AnalysisInput{Type: models.InputTypeText, Value: "some text"})
	runner.Dispatch(jobID)

	waitForStatus(t, q, jobID, models.JobStatusFailed)
}

func TestRunnerServesRepeatContentFromCache(t *testing.T) {
	q := queue.New()
	ml := &mockMLClient{result: sampleResult(88)}
	st := &mockStore{}
	runner := New(q, ml, &mockFetcher{}, st, newMemCache(), time.Minute)

	input := models.AnalysisInput{Type: models.InputTypeText, Value: "identical content"}

	first, _ := q.AddJob(input)
	runner.Dispatch(first)
	waitForStatus(t, q, first, models.JobStatusCompleted)

	second, _ := q.AddJob(input)
	runner.Dispatch(second)
	waitForStatus(t, q, second, models.JobStatusCompleted)

	// Second run is a cache hit: no extra model call, but its own history row.
	assert.Equal(t, 1, ml.callCount())
	assert.Equal(t, 2, st.savedCount())

	saved, err := st.GetAnalysisByJobID(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 88, saved.Score)
	assert.Equal(t, second, saved.JobID)
}

func TestRunnerIgnoresUnknownJob(t *testing.T) {
	q := queue.New()
	runner := New(q, &mockMLClient{result: sampleResult(10)}, &mockFetcher{}, &mockStore{}, newMemCache(), time.Minute)

	runner.Dispatch("no-such-job")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, q.Len())
}
