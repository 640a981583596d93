package analysis

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the raw parsed form of an input source: named columns and
// untyped string cells, preserving original row order and column names.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Load parses a tabular byte source into a Table. The filename extension
// selects the format: .csv for delimited text, .xlsx/.xls for spreadsheets.
func Load(data []byte, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return loadCSV(data, filename)
	case ".xlsx", ".xls":
		return loadExcel(data, filename)
	default:
		return nil, &FormatError{Source: filename, Reason: "unsupported file extension"}
	}
}

func loadCSV(data []byte, filename string) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{Source: filename, Reason: err.Error()}
	}

	return tableFromRows(rows)
}

func loadExcel(data []byte, filename string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Source: filename, Reason: err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Source: filename, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{Source: filename, Reason: err.Error()}
	}

	return tableFromRows(rows)
}

// tableFromRows builds a Table from a header row plus data rows. Rows
// shorter than the header are padded with empty cells (excelize drops
// trailing blanks); longer rows are truncated to the header width.
func tableFromRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, &EmptyInputError{}
	}

	columns := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		columns[i] = strings.TrimSpace(name)
	}

	table := &Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		cells := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}
