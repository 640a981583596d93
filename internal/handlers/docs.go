package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Agri-Tech Analysis API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Agri-Tech Analysis API",
			"description": "Rainfall and crop growth dataset analysis: validation, cleaning, weekly aggregation, correlation and trend fitting",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/analyze": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Analyze a dataset",
					"description": "Upload a CSV or Excel file with Date, Rainfall_mm and Crop_Growth_cm columns and receive cleaned statistics, weekly aggregates and chart series",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"multipart/form-data": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"file": map[string]string{"type": "string", "format": "binary"},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Analysis result with stats, warnings and chart series"},
						"400": map[string]interface{}{"description": "Unparsable, empty, schema-invalid or degenerate input"},
					},
				},
			},
			"/api/analyses": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List analysis runs",
					"description": "Retrieve persisted analysis run summaries with filtering and pagination",
					"parameters": []map[string]interface{}{
						{
							"name":     "filename",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
						{
							"name":        "start_date",
							"in":          "query",
							"description": "Filter by run creation date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
						{
							"name":        "end_date",
							"in":          "query",
							"description": "Filter by run creation date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
						{
							"name":     "page",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "integer"},
						},
						{
							"name":     "limit",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "integer"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Paginated analysis run summaries"},
					},
				},
			},
			"/api/analyses/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get one analysis run",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Analysis run summary"},
						"404": map[string]interface{}{"description": "Run not found"},
					},
				},
			},
			"/api/template": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Download a sample CSV dataset",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Sample CSV file"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Service health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
						"503": map[string]interface{}{"description": "A dependency is unavailable"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
