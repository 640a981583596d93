package models

import (
	"time"
)

// Record represents a single daily field measurement.
// Temperature is optional in the input data; NULL values represented as
// pointers, matching the handling of sparse sensor columns.
type Record struct {
	Date         time.Time `json:"date"`
	RainfallMm   float64   `json:"rainfall_mm"`
	GrowthCm     float64   `json:"growth_cm"`
	TemperatureC *float64  `json:"temperature_c,omitempty"`
}

// Dataset is an ordered sequence of cleaned records.
// After cleaning it is sorted by date ascending, with no missing required
// values, no negative rainfall, and no negative growth.
type Dataset []Record

// Rainfall returns the rainfall series in record order.
func (d Dataset) Rainfall() []float64 {
	values := make([]float64, len(d))
	for i, r := range d {
		values[i] = r.RainfallMm
	}
	return values
}

// Growth returns the crop growth series in record order.
func (d Dataset) Growth() []float64 {
	values := make([]float64, len(d))
	for i, r := range d {
		values[i] = r.GrowthCm
	}
	return values
}

// WeekBucket aggregates records over a 7-day window ending on a Sunday.
// Windows with no contributing records are omitted, not zero-filled.
type WeekBucket struct {
	WeekEndDate     time.Time `json:"week_end_date"`
	RainfallSum     float64   `json:"rainfall_sum"`
	GrowthMean      float64   `json:"growth_mean"`
	TemperatureMean *float64  `json:"temperature_mean,omitempty"`
	RecordCount     int       `json:"record_count"`
}

// Stats is the scalar summary of a cleaned dataset.
// Values are rounded for presentation (2dp, correlation 4dp); the pipeline
// keeps full precision internally for the correlation step.
type Stats struct {
	TotalRecords  int     `json:"total_records"`
	DateRange     string  `json:"date_range"`
	AvgRainfall   float64 `json:"avg_rainfall"`
	MaxRainfall   float64 `json:"max_rainfall"`
	TotalRainfall float64 `json:"total_rainfall"`
	AvgGrowth     float64 `json:"avg_growth"`
	MaxGrowth     float64 `json:"max_growth"`
	Correlation   float64 `json:"correlation"`
}

// TrendPoint is one sample of the fitted trend line, consumed by the
// external chart renderer.
type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartSeries carries the daily numeric series for chart construction.
// The renderer owns all visual encoding; these are data only.
type ChartSeries struct {
	Dates    []string  `json:"dates"`
	Rainfall []float64 `json:"rainfall"`
	Growth   []float64 `json:"growth"`
}

// AnalysisResult is the pipeline's final artifact. It is owned solely by
// the caller; the pipeline holds no state across invocations.
type AnalysisResult struct {
	Stats           Stats        `json:"stats"`
	Weekly          []WeekBucket `json:"weekly"`
	Correlation     float64      `json:"correlation"`
	CorrelationBand string       `json:"correlation_band"`
	TrendSlope      float64      `json:"trend_slope"`
	TrendIntercept  float64      `json:"trend_intercept"`
	TrendPoints     []TrendPoint `json:"trend_points"`
	Daily           ChartSeries  `json:"daily"`
	Warnings        []string     `json:"warnings"`
}
