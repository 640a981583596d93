package analysis

import (
	"agritech-platform/internal/models"
)

// Run executes the full pipeline over one tabular byte source:
// load, resolve schema, clean, aggregate, correlate. Each invocation is
// stateless and independent; any taxonomy error aborts with no partial
// result, while cleaning warnings are carried into the result.
func Run(data []byte, filename string) (*models.AnalysisResult, error) {
	table, err := Load(data, filename)
	if err != nil {
		return nil, err
	}

	cols, err := ResolveColumns(table.Columns)
	if err != nil {
		return nil, err
	}

	cleaned, err := Clean(table, cols)
	if err != nil {
		return nil, err
	}

	ds := cleaned.Dataset
	if len(ds) == 0 {
		// Every row fell to the outlier policy.
		return nil, &EmptyInputError{}
	}

	stats := Summarize(ds)
	weekly := WeeklyBuckets(ds)

	correlation, err := Correlate(ds)
	if err != nil {
		return nil, err
	}

	slope, intercept, err := TrendLine(ds)
	if err != nil {
		return nil, err
	}

	stats.Correlation = Round4(correlation)

	return &models.AnalysisResult{
		Stats:           stats,
		Weekly:          weekly,
		Correlation:     Round4(correlation),
		CorrelationBand: CorrelationBand(correlation),
		TrendSlope:      slope,
		TrendIntercept:  intercept,
		TrendPoints:     TrendPoints(ds, slope, intercept),
		Daily:           dailySeries(ds),
		Warnings:        cleaned.Warnings,
	}, nil
}

func dailySeries(ds models.Dataset) models.ChartSeries {
	series := models.ChartSeries{
		Dates:    make([]string, len(ds)),
		Rainfall: make([]float64, len(ds)),
		Growth:   make([]float64, len(ds)),
	}
	for i, r := range ds {
		series.Dates[i] = r.Date.Format("2006-01-02")
		series.Rainfall[i] = r.RainfallMm
		series.Growth[i] = r.GrowthCm
	}
	return series
}
