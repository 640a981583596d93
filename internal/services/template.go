package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// TemplateFilename is the suggested download name for the sample dataset.
const TemplateFilename = "daily_crop_data.csv"

// sampleDays is the number of days of sample data in the template.
const sampleDays = 14

// SampleTemplateCSV generates the sample CSV offered by the template
// download endpoint: two weeks of plausible daily measurements in the
// exact schema the pipeline expects.
func SampleTemplateCSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Date", "Rainfall_mm", "Crop_Growth_cm", "Temperature_C"})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rainfall := []float64{5.2, 0.0, 12.4, 8.1, 0.0, 3.6, 15.2, 7.8, 0.0, 2.1, 9.4, 11.0, 4.5, 6.3}
	growth := []float64{0.4, 0.3, 0.8, 0.6, 0.2, 0.4, 1.1, 0.7, 0.3, 0.4, 0.7, 0.9, 0.5, 0.6}
	temperature := []float64{22.5, 24.1, 21.0, 22.8, 25.3, 23.6, 20.4, 21.9, 24.8, 23.2, 22.0, 21.5, 23.9, 22.7}

	for i := 0; i < sampleDays; i++ {
		w.Write([]string{
			start.AddDate(0, 0, i).Format("2006-01-02"),
			fmt.Sprintf("%.1f", rainfall[i]),
			fmt.Sprintf("%.1f", growth[i]),
			fmt.Sprintf("%.1f", temperature[i]),
		})
	}

	w.Flush()
	return buf.Bytes()
}
