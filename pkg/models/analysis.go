// Package models contains shared data models used across the credscan codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InputTypeURL  = "url"
	InputTypeText = "text"
)

// AnalysisInput is the original request payload, carried on the job for
// traceability. Type discriminates between a page URL and raw text.
type AnalysisInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RedFlag is a credibility warning identified in the content.
// Severity is one of "low", "medium", "high".
type RedFlag struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Indicator is a positive credibility signal identified in the content.
type Indicator struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Keyword is a significant term with its credibility impact.
// Impact is "positive" or "negative"; Weight is in [0,1].
type Keyword struct {
	Term   string  `json:"term"`
	Impact string  `json:"impact"`
	Weight float64 `json:"weight"`
}

// AnalysisResult is the scoring output for one analysis job.
type AnalysisResult struct {
	ID                 uuid.UUID   `json:"id"`
	JobID              string      `json:"jobId"`
	InputType          string      `json:"inputType"`
	SourceURL          *string     `json:"sourceUrl,omitempty"`
	Score              int         `json:"score"`
	Overview           string      `json:"overview"`
	RedFlags           []RedFlag   `json:"redFlags"`
	PositiveIndicators []Indicator `json:"positiveIndicators"`
	Keywords           []Keyword   `json:"keywords"`
	CreatedAt          time.Time   `json:"createdAt"`
}
