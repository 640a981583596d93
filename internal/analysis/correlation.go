package analysis

import (
	"gonum.org/v1/gonum/stat"

	"agritech-platform/internal/models"
)

// trendSamples is the number of evenly spaced points generated along the
// fitted trend line for the chart renderer.
const trendSamples = 100

// Correlate computes the Pearson correlation between the rainfall and
// growth series. Fewer than 2 records make the coefficient undefined;
// a zero-variance series makes it NaN. Both are reported as errors rather
// than silent NaN.
func Correlate(ds models.Dataset) (float64, error) {
	if len(ds) < 2 {
		return 0, &InsufficientDataError{Records: len(ds)}
	}

	rainfall := ds.Rainfall()
	growth := ds.Growth()

	if stat.Variance(rainfall, nil) == 0 {
		return 0, &DegenerateFitError{Column: ColumnRainfall}
	}
	if stat.Variance(growth, nil) == 0 {
		return 0, &DegenerateFitError{Column: ColumnGrowth}
	}

	return stat.Correlation(rainfall, growth, nil), nil
}

// TrendLine fits a degree-1 least-squares line of growth as a function of
// rainfall. Zero rainfall variance is a degenerate fit, never a silent
// slope of 0.
func TrendLine(ds models.Dataset) (slope, intercept float64, err error) {
	if len(ds) < 2 {
		return 0, 0, &InsufficientDataError{Records: len(ds)}
	}

	rainfall := ds.Rainfall()
	if stat.Variance(rainfall, nil) == 0 {
		return 0, 0, &DegenerateFitError{Column: ColumnRainfall}
	}

	alpha, beta := stat.LinearRegression(rainfall, ds.Growth(), nil, false)
	return beta, alpha, nil
}

// TrendPoints samples the fitted line at evenly spaced rainfall values
// between the observed minimum and maximum, for chart construction.
func TrendPoints(ds models.Dataset, slope, intercept float64) []models.TrendPoint {
	if len(ds) == 0 {
		return nil
	}

	min, max := ds[0].RainfallMm, ds[0].RainfallMm
	for _, r := range ds {
		if r.RainfallMm < min {
			min = r.RainfallMm
		}
		if r.RainfallMm > max {
			max = r.RainfallMm
		}
	}

	points := make([]models.TrendPoint, trendSamples)
	step := (max - min) / float64(trendSamples-1)
	for i := range points {
		x := min + float64(i)*step
		points[i] = models.TrendPoint{X: x, Y: slope*x + intercept}
	}
	return points
}

// CorrelationBand maps a correlation coefficient to its qualitative label.
// Purely descriptive; it has no effect on the data.
func CorrelationBand(r float64) string {
	switch {
	case r > 0.7:
		return "strong positive"
	case r > 0.4:
		return "moderate positive"
	case r > 0:
		return "weak positive"
	default:
		return "negative or none"
	}
}
