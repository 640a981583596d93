package analysis

import (
	"fmt"
	"math"
	"time"

	"agritech-platform/internal/models"
)

// Summarize computes the whole-dataset scalar statistics. Values are
// rounded to 2 decimal places for presentation; callers needing full
// precision work from the Dataset directly. The dataset must be cleaned
// and non-empty.
func Summarize(ds models.Dataset) models.Stats {
	var totalRain, maxRain, totalGrowth, maxGrowth float64
	for i, r := range ds {
		totalRain += r.RainfallMm
		totalGrowth += r.GrowthCm
		if i == 0 || r.RainfallMm > maxRain {
			maxRain = r.RainfallMm
		}
		if i == 0 || r.GrowthCm > maxGrowth {
			maxGrowth = r.GrowthCm
		}
	}

	n := float64(len(ds))
	return models.Stats{
		TotalRecords: len(ds),
		DateRange: fmt.Sprintf("%s to %s",
			ds[0].Date.Format("2006-01-02"),
			ds[len(ds)-1].Date.Format("2006-01-02")),
		AvgRainfall:   Round2(totalRain / n),
		MaxRainfall:   Round2(maxRain),
		TotalRainfall: Round2(totalRain),
		AvgGrowth:     Round2(totalGrowth / n),
		MaxGrowth:     Round2(maxGrowth),
	}
}

// WeeklyBuckets partitions a cleaned dataset into non-overlapping 7-day
// windows ending on Sundays. Each non-empty window yields one bucket with
// the rainfall sum and growth mean; the temperature mean covers only the
// records that carry a temperature. Empty windows are omitted.
func WeeklyBuckets(ds models.Dataset) []models.WeekBucket {
	type weekAgg struct {
		rainfall float64
		growth   float64
		tempSum  float64
		tempN    int
		count    int
	}

	buckets := make([]models.WeekBucket, 0)
	var current *weekAgg
	var currentEnd time.Time

	flush := func() {
		if current == nil {
			return
		}
		bucket := models.WeekBucket{
			WeekEndDate: currentEnd,
			RainfallSum: Round2(current.rainfall),
			GrowthMean:  Round2(current.growth / float64(current.count)),
			RecordCount: current.count,
		}
		if current.tempN > 0 {
			mean := Round2(current.tempSum / float64(current.tempN))
			bucket.TemperatureMean = &mean
		}
		buckets = append(buckets, bucket)
	}

	// ds is sorted by date, so week-end boundaries arrive in order.
	for _, r := range ds {
		end := weekEnding(r.Date)
		if current == nil || !end.Equal(currentEnd) {
			flush()
			current = &weekAgg{}
			currentEnd = end
		}
		current.rainfall += r.RainfallMm
		current.growth += r.GrowthCm
		current.count++
		if r.TemperatureC != nil {
			current.tempSum += *r.TemperatureC
			current.tempN++
		}
	}
	flush()

	return buckets
}

// weekEnding returns the Sunday on or after the given date, the label of
// the 7-day window the date falls in.
func weekEnding(t time.Time) time.Time {
	days := (7 - int(t.Weekday())) % 7
	return t.AddDate(0, 0, days)
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
