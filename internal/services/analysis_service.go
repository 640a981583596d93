package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"agritech-platform/internal/analysis"
	"agritech-platform/internal/models"
	"agritech-platform/internal/repository"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

// AnalysisService orchestrates the analysis pipeline and persists run
// summaries. The pipeline itself is stateless; persistence is a service
// side effect after a successful run. A nil repository disables
// persistence (CLI mode).
type AnalysisService struct {
	repo    repository.AnalysisRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(repo repository.AnalysisRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalysisService {
	return &AnalysisService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Analyze runs the full pipeline over an uploaded source and persists the
// run summary. Returns the analysis result and the persisted run ID
// (empty when persistence is disabled).
func (s *AnalysisService) Analyze(ctx context.Context, data []byte, filename string) (*models.AnalysisResult, string, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[ANALYZE_START] Starting dataset analysis", logging.Fields{
		"filename":   filename,
		"size_bytes": len(data),
		"stage":      "INITIALIZATION",
	})

	s.metrics.UploadSizeBytes.Observe(float64(len(data)))

	result, err := analysis.Run(data, filename)
	if err != nil {
		stage := pipelineStage(err)
		s.metrics.RecordPipelineError(stage)
		s.metrics.RecordUpload("failed")
		s.logger.Error(ctx, "[ANALYZE_ERROR] Pipeline failed", logging.Fields{
			"filename": filename,
			"stage":    stage,
		}, err)
		return nil, "", err
	}

	duration := time.Since(startTime)
	s.metrics.AnalysisDuration.Observe(duration.Seconds())
	s.metrics.AnalysisRecords.Observe(float64(result.Stats.TotalRecords))
	s.metrics.RecordUpload("success")

	for _, warning := range result.Warnings {
		s.metrics.RecordCleaningWarning(warningKind(warning))
	}

	s.logger.Info(ctx, "[ANALYZE_COMPLETE] Dataset analysis completed", logging.Fields{
		"filename":         filename,
		"total_records":    result.Stats.TotalRecords,
		"correlation":      result.Correlation,
		"warning_count":    len(result.Warnings),
		"duration_seconds": duration.Seconds(),
		"stage":            "COMPLETE",
	})

	if s.repo == nil {
		return result, "", nil
	}

	run := runFromResult(result, filename)
	if err := s.repo.CreateRun(ctx, run); err != nil {
		// The analysis itself succeeded; a persistence failure should not
		// discard the caller's result.
		s.logger.Error(ctx, "[ANALYZE_PERSIST_ERROR] Failed to persist analysis run", logging.Fields{
			"filename": filename,
		}, err)
		return result, "", nil
	}

	return result, run.ID, nil
}

// GetRun retrieves a persisted analysis run
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	return s.repo.GetRun(ctx, id)
}

// ListRuns retrieves persisted analysis runs with filtering
func (s *AnalysisService) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*models.AnalysisRun, int, error) {
	return s.repo.ListRuns(ctx, filter)
}

// HealthCheck verifies the service's dependencies
func (s *AnalysisService) HealthCheck(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.HealthCheck(ctx)
}

func runFromResult(result *models.AnalysisResult, filename string) *models.AnalysisRun {
	run := &models.AnalysisRun{
		ID:             uuid.New().String(),
		SourceFilename: filename,
		TotalRecords:   result.Stats.TotalRecords,
		AvgRainfall:    result.Stats.AvgRainfall,
		MaxRainfall:    result.Stats.MaxRainfall,
		TotalRainfall:  result.Stats.TotalRainfall,
		AvgGrowth:      result.Stats.AvgGrowth,
		MaxGrowth:      result.Stats.MaxGrowth,
		Correlation:    result.Stats.Correlation,
		TrendSlope:     result.TrendSlope,
		TrendIntercept: result.TrendIntercept,
		Warnings:       result.Warnings,
		CreatedAt:      time.Now().UTC(),
	}

	if len(result.Daily.Dates) > 0 {
		if start, err := time.Parse("2006-01-02", result.Daily.Dates[0]); err == nil {
			run.DateRangeStart = start
		}
		if end, err := time.Parse("2006-01-02", result.Daily.Dates[len(result.Daily.Dates)-1]); err == nil {
			run.DateRangeEnd = end
		}
	}

	return run
}

// pipelineStage maps a pipeline error to the stage that raised it, for
// metrics labeling.
func pipelineStage(err error) string {
	var (
		formatErr *analysis.FormatError
		emptyErr  *analysis.EmptyInputError
		schemaErr *analysis.SchemaError
		typeErr   *analysis.TypeConversionError
		insufErr  *analysis.InsufficientDataError
		degenErr  *analysis.DegenerateFitError
	)

	switch {
	case errors.As(err, &formatErr), errors.As(err, &emptyErr):
		return "load"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &typeErr):
		return "clean"
	case errors.As(err, &insufErr), errors.As(err, &degenErr):
		return "correlate"
	default:
		return "unknown"
	}
}

func warningKind(warning string) string {
	switch {
	case strings.Contains(warning, "missing"):
		return "imputed"
	case strings.Contains(warning, "rainfall"):
		return "clamped"
	case strings.Contains(warning, "growth"):
		return "dropped"
	default:
		return "other"
	}
}
