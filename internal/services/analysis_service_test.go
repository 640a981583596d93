package services

import (
	"context"
	"errors"
	"testing"

	"agritech-platform/internal/analysis"
	"agritech-platform/internal/models"
	"agritech-platform/internal/repository"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

// Shared across all tests in the package; prometheus collectors register
// globally and cannot be created twice per process.
var testMetrics = metrics.NewCollector("services_test")

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
}

type fakeRepository struct {
	created   []*models.AnalysisRun
	createErr error
	healthErr error
}

func (f *fakeRepository) CreateRun(ctx context.Context, run *models.AnalysisRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRepository) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	for _, run := range f.created {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "analysis run", ID: id}
}

func (f *fakeRepository) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*models.AnalysisRun, int, error) {
	return f.created, len(f.created), nil
}

func (f *fakeRepository) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

const sampleCSV = "Date,Rainfall_mm,Crop_Growth_cm\n" +
	"2024-01-01,5,0.4\n" +
	"2024-01-02,12,0.9\n" +
	"2024-01-03,3,0.2\n"

func TestAnalyze(t *testing.T) {
	repo := &fakeRepository{}
	service := NewAnalysisService(repo, testLogger(), testMetrics)

	result, runID, err := service.Analyze(context.Background(), []byte(sampleCSV), "field.csv")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if result.Stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", result.Stats.TotalRecords)
	}
	if runID == "" {
		t.Error("Analyze() returned empty run ID with persistence enabled")
	}
	if len(repo.created) != 1 {
		t.Fatalf("persisted %d runs, want 1", len(repo.created))
	}

	run := repo.created[0]
	if run.ID != runID {
		t.Errorf("persisted ID = %q, want %q", run.ID, runID)
	}
	if run.SourceFilename != "field.csv" {
		t.Errorf("SourceFilename = %q, want field.csv", run.SourceFilename)
	}
	if run.TotalRainfall != 20 {
		t.Errorf("TotalRainfall = %v, want 20", run.TotalRainfall)
	}
	if run.DateRangeStart.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("DateRangeStart = %v, want 2024-01-01", run.DateRangeStart)
	}
	if run.DateRangeEnd.Format("2006-01-02") != "2024-01-03" {
		t.Errorf("DateRangeEnd = %v, want 2024-01-03", run.DateRangeEnd)
	}
}

func TestAnalyze_NilRepositorySkipsPersistence(t *testing.T) {
	service := NewAnalysisService(nil, testLogger(), testMetrics)

	result, runID, err := service.Analyze(context.Background(), []byte(sampleCSV), "field.csv")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if result == nil {
		t.Fatal("Analyze() returned nil result")
	}
	if runID != "" {
		t.Errorf("runID = %q, want empty without persistence", runID)
	}
}

func TestAnalyze_PersistenceFailureKeepsResult(t *testing.T) {
	repo := &fakeRepository{createErr: errors.New("connection refused")}
	service := NewAnalysisService(repo, testLogger(), testMetrics)

	result, runID, err := service.Analyze(context.Background(), []byte(sampleCSV), "field.csv")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if result == nil {
		t.Fatal("Analyze() discarded result on persistence failure")
	}
	if runID != "" {
		t.Errorf("runID = %q, want empty when persistence failed", runID)
	}
}

func TestAnalyze_PipelineError(t *testing.T) {
	repo := &fakeRepository{}
	service := NewAnalysisService(repo, testLogger(), testMetrics)

	_, _, err := service.Analyze(context.Background(), []byte("not,a\nvalid dataset"), "field.csv")
	if err == nil {
		t.Fatal("Analyze() should fail on an invalid dataset")
	}
	if !analysis.IsInputError(err) {
		t.Errorf("IsInputError(%v) = false, want true", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("persisted %d runs after failure, want 0", len(repo.created))
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		repo    repository.AnalysisRepository
		wantErr bool
	}{
		{
			name:    "nil repository is healthy",
			repo:    nil,
			wantErr: false,
		},
		{
			name:    "healthy repository",
			repo:    &fakeRepository{},
			wantErr: false,
		},
		{
			name:    "failing repository",
			repo:    &fakeRepository{healthErr: errors.New("dead")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewAnalysisService(tt.repo, testLogger(), testMetrics)
			err := service.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineStage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"format error", &analysis.FormatError{Source: "x.json", Reason: "unsupported extension"}, "load"},
		{"empty input", &analysis.EmptyInputError{}, "load"},
		{"schema error", &analysis.SchemaError{Field: "Rainfall_mm"}, "schema"},
		{"type conversion", &analysis.TypeConversionError{Column: "Rainfall_mm", Value: "x"}, "clean"},
		{"insufficient data", &analysis.InsufficientDataError{Records: 1}, "correlate"},
		{"degenerate fit", &analysis.DegenerateFitError{Column: "Rainfall_mm"}, "correlate"},
		{"unrelated error", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipelineStage(tt.err); got != tt.want {
				t.Errorf("pipelineStage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWarningKind(t *testing.T) {
	tests := []struct {
		warning string
		want    string
	}{
		{"found 2 missing values, filling with forward fill", "imputed"},
		{"found 1 negative rainfall values, setting to 0", "clamped"},
		{"found 1 negative growth values, removing those rows", "dropped"},
		{"something else entirely", "other"},
	}

	for _, tt := range tests {
		if got := warningKind(tt.warning); got != tt.want {
			t.Errorf("warningKind(%q) = %q, want %q", tt.warning, got, tt.want)
		}
	}
}

func TestSampleTemplateParses(t *testing.T) {
	service := NewAnalysisService(nil, testLogger(), testMetrics)

	result, _, err := service.Analyze(context.Background(), SampleTemplateCSV(), TemplateFilename)
	if err != nil {
		t.Fatalf("template should survive its own pipeline: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("template produced warnings: %v", result.Warnings)
	}
}
