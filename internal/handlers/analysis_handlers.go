package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"agritech-platform/internal/analysis"
	"agritech-platform/internal/models"
	"agritech-platform/internal/repository"
	"agritech-platform/internal/services"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

// allowedExtensions lists the upload file types the analyze endpoint accepts
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// AnalysisHandler handles the analysis API endpoints
type AnalysisHandler struct {
	service       *services.AnalysisService
	logger        *logging.StructuredLogger
	metrics       *metrics.Collector
	maxUploadSize int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	service *services.AnalysisService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	maxUploadSize int64,
) *AnalysisHandler {
	return &AnalysisHandler{
		service:       service,
		logger:        logger,
		metrics:       metricsCollector,
		maxUploadSize: maxUploadSize,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// AnalyzeResponse represents a successful analysis response
type AnalyzeResponse struct {
	Success    bool                   `json:"success"`
	AnalysisID string                 `json:"analysis_id,omitempty"`
	Stats      models.Stats           `json:"stats"`
	Warnings   []string               `json:"warnings"`
	Charts     AnalyzeCharts          `json:"charts"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// AnalyzeCharts carries the numeric series for chart construction. The
// client owns all visual encoding.
type AnalyzeCharts struct {
	Daily           models.ChartSeries  `json:"daily"`
	Weekly          []models.WeekBucket `json:"weekly"`
	TrendPoints     []models.TrendPoint `json:"trend_points"`
	CorrelationBand string              `json:"correlation_band"`
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/analyze").Observe(duration.Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.metrics.RecordAPIError("bad_upload", "/api/analyze")
		h.sendError(w, r, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.sendError(w, r, "no file selected", http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		h.metrics.RecordAPIError("bad_extension", "/api/analyze")
		h.sendError(w, r, "file must be CSV or Excel (xlsx/xls)", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.metrics.RecordAPIError("read_error", "/api/analyze")
		h.sendError(w, r, fmt.Sprintf("failed to read upload: upload limit is %d bytes", h.maxUploadSize), http.StatusBadRequest)
		return
	}

	result, runID, err := h.service.Analyze(ctx, data, header.Filename)
	if err != nil {
		if analysis.IsInputError(err) {
			h.sendError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error(ctx, "[API_ANALYZE_ERROR] Analysis failed", logging.Fields{
			"filename": header.Filename,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/analyze")
		h.sendError(w, r, "analysis failed", http.StatusInternalServerError)
		return
	}

	response := AnalyzeResponse{
		Success:    true,
		AnalysisID: runID,
		Stats:      result.Stats,
		Warnings:   result.Warnings,
		Charts: AnalyzeCharts{
			Daily:           result.Daily,
			Weekly:          result.Weekly,
			TrendPoints:     result.TrendPoints,
			CorrelationBand: result.CorrelationBand,
		},
	}

	h.metrics.RecordAPIRequest("/api/analyze", "POST", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// ListAnalyses handles GET /api/analyses
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/analyses").Observe(duration.Seconds())
	}()

	// Parse query parameters
	filenameStr := r.URL.Query().Get("filename")
	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	// Default pagination
	page := 1
	limit := 100

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	offset := (page - 1) * limit

	filter := repository.RunFilter{
		Limit:  limit,
		Offset: offset,
	}

	if filenameStr != "" {
		filter.Filename = &filenameStr
	}

	if startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			h.sendError(w, r, "invalid start_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			h.sendError(w, r, "invalid end_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.EndDate = &endDate
	}

	runs, total, err := h.service.ListRuns(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_ANALYSES_ERROR] Failed to list analysis runs", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/analyses")
		h.sendError(w, r, "failed to retrieve analysis runs", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       runs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/analyses", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetAnalysis handles GET /api/analyses/{id}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := mux.Vars(r)["id"]

	run, err := h.service.GetRun(ctx, id)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, notFound.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_ANALYSIS_ERROR] Failed to get analysis run", logging.Fields{
			"run_id": id,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/analyses/{id}")
		h.sendError(w, r, "failed to retrieve analysis run", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/analyses/{id}", "GET", "200")
	h.sendJSON(w, run, http.StatusOK)
}

// DownloadTemplate handles GET /api/template
func (h *AnalysisHandler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	data := services.SampleTemplateCSV()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.TemplateFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))

	h.metrics.RecordAPIRequest("/api/template", "GET", "200")
	w.Write(data)
}

// HealthCheck handles GET /health
func (h *AnalysisHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.service.HealthCheck(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AnalysisHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all analysis API routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/analyze", h.Analyze).Methods("POST")
	router.HandleFunc("/api/analyses", h.ListAnalyses).Methods("GET")
	router.HandleFunc("/api/analyses/{id}", h.GetAnalysis).Methods("GET")
	router.HandleFunc("/api/template", h.DownloadTemplate).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
