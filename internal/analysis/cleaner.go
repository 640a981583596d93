package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"agritech-platform/internal/models"
)

// CleanResult carries the cleaned dataset plus the non-fatal warnings
// accumulated while producing it.
type CleanResult struct {
	Dataset  models.Dataset
	Warnings []string
}

// dateLayouts are tried in order during date coercion.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// missingSentinels are cell values treated as missing, beyond empty and
// whitespace-only cells.
var missingSentinels = map[string]bool{
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// Clean imputes missing values, coerces cell types, applies the per-field
// outlier policy and sorts the records chronologically. The input table is
// not modified. Imputed, clamped and dropped values produce warnings;
// unparsable cells are fatal.
func Clean(table *Table, cols *ColumnMap) (*CleanResult, error) {
	rows := copyRows(table.Rows)

	targets := []int{cols.Date, cols.Rainfall, cols.Growth}
	if cols.Temperature >= 0 {
		targets = append(targets, cols.Temperature)
	}

	result := &CleanResult{Warnings: []string{}}

	filled := imputeMissing(rows, targets)
	if filled > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("found %d missing values, filling with forward fill", filled))
	}

	records, err := coerceRows(rows, cols, table.Columns)
	if err != nil {
		return nil, err
	}

	clamped := 0
	dropped := 0
	cleaned := make(models.Dataset, 0, len(records))
	for _, r := range records {
		if r.GrowthCm < 0 {
			dropped++
			continue
		}
		if r.RainfallMm < 0 {
			r.RainfallMm = 0
			clamped++
		}
		cleaned = append(cleaned, r)
	}

	if clamped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("found %d negative rainfall values, setting to 0", clamped))
	}
	if dropped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("found %d negative growth values, removing those rows", dropped))
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})

	result.Dataset = cleaned
	return result, nil
}

// imputeMissing fills missing cells column-major: a forward pass copies the
// nearest preceding known value, then a backward pass resolves any leading
// run of missing values from the nearest following known value. Returns the
// number of cells filled. Order matters: downstream statistics depend on
// this exact two-pass semantics.
func imputeMissing(rows [][]string, targets []int) int {
	filled := 0

	for _, col := range targets {
		last := ""
		haveLast := false
		for i := range rows {
			if isMissing(rows[i][col]) {
				if haveLast {
					rows[i][col] = last
					filled++
				}
			} else {
				last = rows[i][col]
				haveLast = true
			}
		}

		next := ""
		haveNext := false
		for i := len(rows) - 1; i >= 0; i-- {
			if isMissing(rows[i][col]) {
				if haveNext {
					rows[i][col] = next
					filled++
				}
			} else {
				next = rows[i][col]
				haveNext = true
			}
		}
	}

	return filled
}

func coerceRows(rows [][]string, cols *ColumnMap, columns []string) ([]models.Record, error) {
	records := make([]models.Record, 0, len(rows))

	for _, row := range rows {
		date, err := parseDate(row[cols.Date])
		if err != nil {
			return nil, &TypeConversionError{Column: columns[cols.Date], Value: row[cols.Date]}
		}

		rainfall, err := parseFloat(row[cols.Rainfall])
		if err != nil {
			return nil, &TypeConversionError{Column: columns[cols.Rainfall], Value: row[cols.Rainfall]}
		}

		growth, err := parseFloat(row[cols.Growth])
		if err != nil {
			return nil, &TypeConversionError{Column: columns[cols.Growth], Value: row[cols.Growth]}
		}

		record := models.Record{
			Date:       date,
			RainfallMm: rainfall,
			GrowthCm:   growth,
		}

		if cols.Temperature >= 0 && !isMissing(row[cols.Temperature]) {
			temp, err := parseFloat(row[cols.Temperature])
			if err != nil {
				return nil, &TypeConversionError{Column: columns[cols.Temperature], Value: row[cols.Temperature]}
			}
			record.TemperatureC = &temp
		}

		records = append(records, record)
	}

	return records, nil
}

func isMissing(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return true
	}
	return missingSentinels[strings.ToLower(trimmed)]
}

func parseDate(cell string) (time.Time, error) {
	trimmed := strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			// Truncate to day granularity so equal calendar dates compare equal.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", cell)
}

func parseFloat(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		copy(cells, row)
		out[i] = cells
	}
	return out
}
