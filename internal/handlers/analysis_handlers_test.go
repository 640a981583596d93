package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"agritech-platform/internal/models"
	"agritech-platform/internal/repository"
	"agritech-platform/internal/services"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

// Shared across all tests in the package; prometheus collectors register
// globally and cannot be created twice per process.
var testMetrics = metrics.NewCollector("handlers_test")

const maxTestUploadSize = 16 << 20

type stubRepository struct {
	runs      []*models.AnalysisRun
	healthErr error
}

func (s *stubRepository) CreateRun(ctx context.Context, run *models.AnalysisRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *stubRepository) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	for _, run := range s.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "analysis run", ID: id}
}

func (s *stubRepository) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*models.AnalysisRun, int, error) {
	return s.runs, len(s.runs), nil
}

func (s *stubRepository) HealthCheck(ctx context.Context) error {
	return s.healthErr
}

func newTestRouter(repo repository.AnalysisRepository) *mux.Router {
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	service := services.NewAnalysisService(repo, logger, testMetrics)
	handler := NewAnalysisHandler(service, logger, testMetrics, maxTestUploadSize)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	w.Close()
	return &buf, w.FormDataContentType()
}

const validCSV = "Date,Rainfall_mm,Crop_Growth_cm\n" +
	"2024-01-01,5,0.4\n" +
	"2024-01-02,12,0.9\n" +
	"2024-01-03,3,0.2\n"

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	body, contentType := multipartUpload(t, "field.csv", []byte(validCSV))
	req := httptest.NewRequest("POST", "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var response AnalyzeResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("Success = false, want true")
	}
	if response.AnalysisID == "" {
		t.Error("AnalysisID is empty, want persisted run ID")
	}
	if response.Stats.TotalRecords != 3 {
		t.Errorf("Stats.TotalRecords = %d, want 3", response.Stats.TotalRecords)
	}
	if len(response.Charts.TrendPoints) != 100 {
		t.Errorf("len(Charts.TrendPoints) = %d, want 100", len(response.Charts.TrendPoints))
	}
	if len(response.Charts.Weekly) == 0 {
		t.Error("Charts.Weekly is empty")
	}
}

func TestAnalyzeEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    []byte
		wantStatus int
	}{
		{
			name:       "rejected extension",
			filename:   "field.json",
			content:    []byte(validCSV),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing required column",
			filename:   "field.csv",
			content:    []byte("Date,Humidity,Crop_Growth_cm\n2024-01-01,40,0.4\n"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty dataset",
			filename:   "field.csv",
			content:    []byte("Date,Rainfall_mm,Crop_Growth_cm\n"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unparsable cell",
			filename:   "field.csv",
			content:    []byte("Date,Rainfall_mm,Crop_Growth_cm\n2024-01-01,heavy,0.4\n"),
			wantStatus: http.StatusBadRequest,
		},
	}

	router := newTestRouter(&stubRepository{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.filename, tt.content)
			req := httptest.NewRequest("POST", "/api/analyze", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}

			var response ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if response.Message == "" {
				t.Error("error response has empty message")
			}
			if response.Code != tt.wantStatus {
				t.Errorf("Code = %d, want %d", response.Code, tt.wantStatus)
			}
		})
	}
}

func TestAnalyzeEndpoint_NoFile(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	req := httptest.NewRequest("POST", "/api/analyze", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestListAnalysesEndpoint(t *testing.T) {
	repo := &stubRepository{
		runs: []*models.AnalysisRun{
			{ID: "run-1", SourceFilename: "a.csv", TotalRecords: 10, CreatedAt: time.Now().UTC()},
			{ID: "run-2", SourceFilename: "b.csv", TotalRecords: 20, CreatedAt: time.Now().UTC()},
		},
	}
	router := newTestRouter(repo)

	req := httptest.NewRequest("GET", "/api/analyses?page=1&limit=50", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var response PaginatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Total != 2 {
		t.Errorf("Total = %d, want 2", response.Total)
	}
	if response.Page != 1 || response.Limit != 50 {
		t.Errorf("pagination = page %d limit %d, want page 1 limit 50", response.Page, response.Limit)
	}
	if response.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", response.TotalPages)
	}
}

func TestListAnalysesEndpoint_InvalidDate(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	req := httptest.NewRequest("GET", "/api/analyses?start_date=01-01-2024", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetAnalysisEndpoint(t *testing.T) {
	repo := &stubRepository{
		runs: []*models.AnalysisRun{
			{ID: "run-1", SourceFilename: "a.csv", TotalRecords: 10, CreatedAt: time.Now().UTC()},
		},
	}
	router := newTestRouter(repo)

	req := httptest.NewRequest("GET", "/api/analyses/run-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var run models.AnalysisRun
	if err := json.NewDecoder(rr.Body).Decode(&run); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if run.ID != "run-1" {
		t.Errorf("ID = %q, want run-1", run.ID)
	}
}

func TestGetAnalysisEndpoint_NotFound(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	req := httptest.NewRequest("GET", "/api/analyses/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; body: %s", rr.Code, rr.Body.String())
	}
}

func TestDownloadTemplateEndpoint(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	req := httptest.NewRequest("GET", "/api/template", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="daily_crop_data.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("Date,Rainfall_mm,Crop_Growth_cm,Temperature_C\n")) {
		t.Errorf("template body does not start with the expected header: %q", rr.Body.String()[:60])
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		repo       *stubRepository
		wantStatus int
		wantState  string
	}{
		{
			name:       "healthy",
			repo:       &stubRepository{},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "degraded",
			repo:       &stubRepository{healthErr: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.repo)

			req := httptest.NewRequest("GET", "/health", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			var status map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if status["status"] != tt.wantState {
				t.Errorf("status = %q, want %q", status["status"], tt.wantState)
			}
		})
	}
}
