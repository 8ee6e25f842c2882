package store

import (
	"context"
	"errors"

	"credscan/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. Completed analyses are persisted here
// for history browsing; the job queue itself never reads from it.
type Store interface {
	Ping(ctx context.Context) error

	SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error
	GetAnalysisByJobID(ctx context.Context, jobID string) (*models.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisResult, int, error)
}

// HistoryFilter pages through persisted analyses, newest first.
type HistoryFilter struct {
	InputType string
	Page      int
	Limit     int
}
