package store

import (
	"context"
	"errors"
	"fmt"

	"credscan/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, job_id, input_type, source_url, score, overview, red_flags, positive_indicators, keywords, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.ID, result.JobID, result.InputType, result.SourceURL, result.Score,
		result.Overview, result.RedFlags, result.PositiveIndicators, result.Keywords,
		result.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisByJobID(ctx context.Context, jobID string) (*models.AnalysisResult, error) {
	var r models.AnalysisResult
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, input_type, source_url, score, overview, red_flags, positive_indicators, keywords, created_at
		 FROM analyses WHERE job_id = $1`, jobID,
	).Scan(&r.ID, &r.JobID, &r.InputType, &r.SourceURL, &r.Score, &r.Overview,
		&r.RedFlags, &r.PositiveIndicators, &r.Keywords, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis by job: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisResult, int, error) {
	where := "TRUE"
	args := []any{}
	argIdx := 1
	if filter.InputType != "" {
		where = fmt.Sprintf("input_type = $%d", argIdx)
		args = append(args, filter.InputType)
		argIdx++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM analyses WHERE %s`, where)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT id, job_id, input_type, source_url, score, overview, red_flags, positive_indicators, keywords, created_at
		 FROM analyses WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var results []*models.AnalysisResult
	for rows.Next() {
		var r models.AnalysisResult
		if err := rows.Scan(&r.ID, &r.JobID, &r.InputType, &r.SourceURL, &r.Score,
			&r.Overview, &r.RedFlags, &r.PositiveIndicators, &r.Keywords, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		results = append(results, &r)
	}
	return results, total, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
