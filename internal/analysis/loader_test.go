package analysis

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoad_CSV(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		filename    string
		wantErr     error
		checkValues func(*testing.T, *Table)
	}{
		{
			name:     "well formed csv",
			data:     "Date,Rainfall_mm,Crop_Growth_cm\n2024-01-01,5.2,0.4\n2024-01-02,0.0,0.3\n",
			filename: "data.csv",
			checkValues: func(t *testing.T, table *Table) {
				if len(table.Columns) != 3 {
					t.Fatalf("len(Columns) = %d, want 3", len(table.Columns))
				}
				if table.Columns[1] != "Rainfall_mm" {
					t.Errorf("Columns[1] = %q, want Rainfall_mm", table.Columns[1])
				}
				if len(table.Rows) != 2 {
					t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
				}
				if table.Rows[0][0] != "2024-01-01" {
					t.Errorf("Rows[0][0] = %q, want 2024-01-01", table.Rows[0][0])
				}
			},
		},
		{
			name:     "header whitespace trimmed, cells preserved",
			data:     " Date , Rainfall_mm ,Crop_Growth_cm\n2024-01-01, 5.2 ,0.4\n",
			filename: "data.csv",
			checkValues: func(t *testing.T, table *Table) {
				if table.Columns[0] != "Date" || table.Columns[1] != "Rainfall_mm" {
					t.Errorf("Columns = %v, want trimmed names", table.Columns)
				}
			},
		},
		{
			name:     "header only",
			data:     "Date,Rainfall_mm,Crop_Growth_cm\n",
			filename: "data.csv",
			wantErr:  &EmptyInputError{},
		},
		{
			name:     "completely empty",
			data:     "",
			filename: "data.csv",
			wantErr:  &EmptyInputError{},
		},
		{
			name:     "malformed quoting",
			data:     "Date,Rainfall_mm\n\"2024-01-01,5.2\n",
			filename: "data.csv",
			wantErr:  &FormatError{},
		},
		{
			name:     "unsupported extension",
			data:     "Date,Rainfall_mm\n2024-01-01,5.2\n",
			filename: "data.json",
			wantErr:  &FormatError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load([]byte(tt.data), tt.filename)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				switch tt.wantErr.(type) {
				case *EmptyInputError:
					var emptyErr *EmptyInputError
					if !errors.As(err, &emptyErr) {
						t.Errorf("error type = %T, want *EmptyInputError", err)
					}
				case *FormatError:
					var formatErr *FormatError
					if !errors.As(err, &formatErr) {
						t.Errorf("error type = %T, want *FormatError", err)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if tt.checkValues != nil {
				tt.checkValues(t, table)
			}
		})
	}
}

func TestLoad_Excel(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Date", "Rainfall_mm", "Crop_Growth_cm"},
		{"2024-01-01", 5.2, 0.4},
		{"2024-01-02", 0.0, 0.3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	table, err := Load(buf.Bytes(), "upload.xlsx")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(table.Columns) != 3 || table.Columns[2] != "Crop_Growth_cm" {
		t.Errorf("Columns = %v, want the three header names", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][0] != "2024-01-01" {
		t.Errorf("Rows[0][0] = %q, want 2024-01-01", table.Rows[0][0])
	}
}

func TestLoad_ExcelGarbage(t *testing.T) {
	_, err := Load([]byte("not a zip archive"), "upload.xlsx")
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("error = %v, want *FormatError", err)
	}
}

func TestLoad_ShortRowsPadded(t *testing.T) {
	data := "Date,Rainfall_mm,Crop_Growth_cm\n2024-01-01,5.2,0.4\n"
	table, err := Load([]byte(data), "data.csv")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Columns))
		}
	}
}
