package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agritech-platform/internal/models"
	"agritech-platform/pkg/database"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

// AnalysisRepository provides data access for persisted analysis runs
type AnalysisRepository interface {
	CreateRun(ctx context.Context, run *models.AnalysisRun) error
	GetRun(ctx context.Context, id string) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*models.AnalysisRun, int, error)

	HealthCheck(ctx context.Context) error
}

// RunFilter defines filters for querying analysis runs
type RunFilter struct {
	Filename  *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// NotFoundError indicates a requested resource does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// analysisRepository implements AnalysisRepository
type analysisRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) AnalysisRepository {
	return &analysisRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateRun persists the summary of one pipeline invocation
func (r *analysisRepository) CreateRun(ctx context.Context, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, source_filename, total_records,
			date_range_start, date_range_end,
			avg_rainfall, max_rainfall, total_rainfall,
			avg_growth, max_growth,
			correlation, trend_slope, trend_intercept,
			warnings, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, "insert_analysis_run", query,
		run.ID,
		run.SourceFilename,
		run.TotalRecords,
		run.DateRangeStart,
		run.DateRangeEnd,
		run.AvgRainfall,
		run.MaxRainfall,
		run.TotalRainfall,
		run.AvgGrowth,
		run.MaxGrowth,
		run.Correlation,
		run.TrendSlope,
		run.TrendIntercept,
		run.Warnings,
		run.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_RUN] Analysis run persisted", logging.Fields{
		"run_id":        run.ID,
		"total_records": run.TotalRecords,
	})

	return nil
}

// GetRun retrieves an analysis run by ID
func (r *analysisRepository) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	query := `
		SELECT id, source_filename, total_records,
		       date_range_start, date_range_end,
		       avg_rainfall, max_rainfall, total_rainfall,
		       avg_growth, max_growth,
		       correlation, trend_slope, trend_intercept,
		       warnings, created_at
		FROM analysis_runs
		WHERE id = $1
	`

	var run models.AnalysisRun
	err := r.db.GetContext(ctx, "get_analysis_run", &run, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "analysis_run",
			ID:       id,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves analysis runs with filtering and pagination
func (r *analysisRepository) ListRuns(ctx context.Context, filter RunFilter) ([]*models.AnalysisRun, int, error) {
	query := `
		SELECT id, source_filename, total_records,
		       date_range_start, date_range_end,
		       avg_rainfall, max_rainfall, total_rainfall,
		       avg_growth, max_growth,
		       correlation, trend_slope, trend_intercept,
		       warnings, created_at
		FROM analysis_runs
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM analysis_runs WHERE 1=1`

	args := []interface{}{}
	argNum := 1

	appendClause := func(clause string, value interface{}) {
		cond := fmt.Sprintf(clause, argNum)
		query += cond
		countQuery += cond
		args = append(args, value)
		argNum++
	}

	if filter.Filename != nil {
		appendClause(" AND source_filename = $%d", *filter.Filename)
	}
	if filter.StartDate != nil {
		appendClause(" AND created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		appendClause(" AND created_at <= $%d", *filter.EndDate)
	}

	var total int
	if err := r.db.GetContext(ctx, "count_analysis_runs", &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count analysis runs: %w", err)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	runs := []*models.AnalysisRun{}
	if err := r.db.SelectContext(ctx, "list_analysis_runs", &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list analysis runs: %w", err)
	}

	return runs, total, nil
}

// HealthCheck verifies database connectivity
func (r *analysisRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
