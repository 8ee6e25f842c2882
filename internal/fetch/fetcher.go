// Package fetch retrieves page content for url-type analysis inputs and
// reduces it to plain text suitable for scoring.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"

	"credscan/internal/config"
	"credscan/pkg/apperr"
)

// Fetcher retrieves the text content behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher implements Fetcher over plain HTTP GET with a bounded body.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
}

// NewHTTPFetcher creates a fetcher from config.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: cfg.MaxBodyBytes,
		userAgent:    cfg.UserAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.Fetch("Could not fetch the requested content", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Fetch("Could not fetch the requested content",
			fmt.Errorf("fetch returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", classifyError(err)
	}

	text := ExtractText(string(body))
	if text == "" {
		return "", apperr.Fetch("The fetched page contained no readable text", nil)
	}
	return text, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Timeout("Fetching the content timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Timeout("Fetching the content timed out", err)
	}
	return apperr.Fetch("Could not fetch the requested content", err)
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)\b[^>]*>.*?</\s*(script|style|noscript)\s*>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(` +`)
	linesRe  = regexp.MustCompile(`\n{3,}`)
)

// ExtractText strips markup from an HTML document and normalizes
// whitespace: Windows line endings, runs of spaces, and stacked blank lines
// are collapsed.
func ExtractText(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = spaceRe.ReplaceAllString(text, " ")

	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	text = linesRe.ReplaceAllString(b.String(), "\n\n")

	return strings.TrimSpace(text)
}

// Compile-time check that HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)
