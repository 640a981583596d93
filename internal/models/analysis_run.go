package models

import (
	"time"

	"github.com/lib/pq"
)

// AnalysisRun is the persisted summary of one pipeline invocation.
// The full cleaned dataset is not stored; the run record keeps the scalar
// statistics and trend coefficients needed for the history API.
type AnalysisRun struct {
	ID             string         `json:"id" db:"id"`
	SourceFilename string         `json:"source_filename" db:"source_filename"`
	TotalRecords   int            `json:"total_records" db:"total_records"`
	DateRangeStart time.Time      `json:"date_range_start" db:"date_range_start"`
	DateRangeEnd   time.Time      `json:"date_range_end" db:"date_range_end"`
	AvgRainfall    float64        `json:"avg_rainfall" db:"avg_rainfall"`
	MaxRainfall    float64        `json:"max_rainfall" db:"max_rainfall"`
	TotalRainfall  float64        `json:"total_rainfall" db:"total_rainfall"`
	AvgGrowth      float64        `json:"avg_growth" db:"avg_growth"`
	MaxGrowth      float64        `json:"max_growth" db:"max_growth"`
	Correlation    float64        `json:"correlation" db:"correlation"`
	TrendSlope     float64        `json:"trend_slope" db:"trend_slope"`
	TrendIntercept float64        `json:"trend_intercept" db:"trend_intercept"`
	Warnings       pq.StringArray `json:"warnings" db:"warnings"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
