package analysis

import (
	"strings"
)

// Semantic column names the pipeline understands.
const (
	ColumnDate        = "Date"
	ColumnRainfall    = "Rainfall_mm"
	ColumnGrowth      = "Crop_Growth_cm"
	ColumnTemperature = "Temperature_C"
)

// requiredColumns lists the columns that must resolve for the pipeline to
// proceed. Temperature is optional and never triggers fuzzy resolution.
var requiredColumns = []string{ColumnDate, ColumnRainfall, ColumnGrowth}

// ColumnMap holds the resolved index of each semantic column in a Table.
// Temperature is -1 when the column is absent.
type ColumnMap struct {
	Date        int
	Rainfall    int
	Growth      int
	Temperature int
}

// NormalizeColumnName reduces a column name to its comparable form:
// lower-cased with the literal substrings "_", "mm" and "cm" removed.
// "Rainfall_mm" and "rainfall(mm)" both normalize to forms comparable by
// substring containment.
func NormalizeColumnName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "")
	n = strings.ReplaceAll(n, "mm", "")
	n = strings.ReplaceAll(n, "cm", "")
	return n
}

// ResolveColumns locates the three required semantic columns in the header.
// Exact names win; otherwise a column matches a required name when the
// normalized required name is a substring of the normalized column name
// (not vice versa). Any unresolved required column is fatal.
func ResolveColumns(columns []string) (*ColumnMap, error) {
	cm := &ColumnMap{Temperature: -1}

	for _, required := range requiredColumns {
		idx, err := resolveColumn(columns, required)
		if err != nil {
			return nil, err
		}
		switch required {
		case ColumnDate:
			cm.Date = idx
		case ColumnRainfall:
			cm.Rainfall = idx
		case ColumnGrowth:
			cm.Growth = idx
		}
	}

	for i, name := range columns {
		if name == ColumnTemperature {
			cm.Temperature = i
			break
		}
	}

	return cm, nil
}

func resolveColumn(columns []string, required string) (int, error) {
	for i, name := range columns {
		if name == required {
			return i, nil
		}
	}

	normalized := NormalizeColumnName(required)
	for i, name := range columns {
		if strings.Contains(NormalizeColumnName(name), normalized) {
			return i, nil
		}
	}

	return -1, &SchemaError{Field: required}
}
