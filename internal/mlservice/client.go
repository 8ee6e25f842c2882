// Package mlservice is the HTTP client for the external ML scoring service.
// The scoring algorithm itself is opaque; this package only speaks its wire
// protocol and classifies transport failures into the application error
// taxonomy.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"credscan/pkg/apperr"
	"credscan/pkg/models"

	"github.com/google/uuid"
)

// Client is the interface for the ML scoring service.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error)
	Health(ctx context.Context) error
}

// AnalyzeRequest carries the content to score.
type AnalyzeRequest struct {
	Text      string
	SourceURL string
}

// HTTPClient implements Client using the ML service's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new ML service HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	body := analyzeRequestBody{Text: req.Text}
	if req.SourceURL != "" {
		body.SourceURL = &req.SourceURL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding analyze request: %w", err)
	}

	u := fmt.Sprintf("%s/analyze", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.MLService("The credibility scoring service is unavailable",
			fmt.Errorf("ml service returned status %d", resp.StatusCode))
	}

	var scored analyzeResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return nil, apperr.MLService("The credibility scoring service returned an invalid response",
			fmt.Errorf("decoding analyze response: %w", err))
	}

	result := &models.AnalysisResult{
		ID:                 uuid.New(),
		Score:              clampScore(scored.Score),
		Overview:           scored.Overview,
		RedFlags:           scored.RedFlags,
		PositiveIndicators: scored.PositiveIndicators,
		Keywords:           scored.Keywords,
		CreatedAt:          time.Now().UTC(),
	}
	if result.RedFlags == nil {
		result.RedFlags = []models.RedFlag{}
	}
	if result.PositiveIndicators == nil {
		result.PositiveIndicators = []models.Indicator{}
	}
	if result.Keywords == nil {
		result.Keywords = []models.Keyword{}
	}
	return result, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	u := fmt.Sprintf("%s/health", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.MLService("The credibility scoring service is unavailable",
			fmt.Errorf("ml service not healthy (status %d)", resp.StatusCode))
	}
	return nil
}

// classifyError maps transport-level errors into the application taxonomy.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Timeout("The credibility analysis timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Timeout("The credibility analysis timed out", err)
	}

	return apperr.MLService("The credibility scoring service is unavailable", err)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// --- ML service wire types ---

type analyzeRequestBody struct {
	Text      string  `json:"text"`
	SourceURL *string `json:"source_url,omitempty"`
}

type analyzeResponseBody struct {
	Score              int                `json:"score"`
	Overview           string             `json:"overview"`
	RedFlags           []models.RedFlag   `json:"red_flags"`
	PositiveIndicators []models.Indicator `json:"positive_indicators"`
	Keywords           []models.Keyword   `json:"keywords"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
