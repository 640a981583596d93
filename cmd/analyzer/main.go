package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"agritech-platform/internal/services"
	"agritech-platform/pkg/logging"
	"agritech-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	filePath := flag.String("file", "daily_crop_data.csv", "Path to the dataset file (CSV or Excel)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	// Initialize logger
	logger := logging.NewStructuredLogger("agritech-analyzer", "1.0.0", logging.ParseLevel(*logLevel))
	logger.SetOutput(os.Stderr)

	ctx := context.Background()

	// Initialize metrics collector; the CLI registers metrics but does not
	// serve them, keeping the service wiring identical to the server
	metricsCollector := metrics.NewCollector("agritech_analyzer")

	// No repository: CLI runs are not persisted
	analysisService := services.NewAnalysisService(nil, logger, metricsCollector)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Println("AGRI-TECH DATA ANALYZER")
	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Printf("Analyzing %s...\n\n", *filePath)

	result, _, err := analysisService.Analyze(ctx, data, filepath.Base(*filePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	stats := result.Stats
	fmt.Printf("Records:         %d\n", stats.TotalRecords)
	fmt.Printf("Date range:      %s\n", stats.DateRange)
	fmt.Printf("Avg rainfall:    %.2f mm\n", stats.AvgRainfall)
	fmt.Printf("Max rainfall:    %.2f mm\n", stats.MaxRainfall)
	fmt.Printf("Total rainfall:  %.2f mm\n", stats.TotalRainfall)
	fmt.Printf("Avg growth:      %.2f cm\n", stats.AvgGrowth)
	fmt.Printf("Max growth:      %.2f cm\n", stats.MaxGrowth)

	fmt.Println("\nWeekly summary:")
	fmt.Println("  Week ending   Rainfall (mm)   Avg growth (cm)")
	for _, bucket := range result.Weekly {
		fmt.Printf("  %s   %13.2f   %15.2f\n",
			bucket.WeekEndDate.Format("2006-01-02"),
			bucket.RainfallSum,
			bucket.GrowthMean,
		)
	}

	fmt.Printf("\nCorrelation between rainfall and crop growth: %.4f\n", stats.Correlation)
	fmt.Printf("→ %s\n", result.CorrelationBand)
	fmt.Printf("Trend line: growth = %.4f × rainfall + %.4f\n", result.TrendSlope, result.TrendIntercept)

	if len(result.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Printf("  ⚠ %s\n", warning)
		}
	}

	fmt.Println("\n════════════════════════════════════════════════════════════")
	fmt.Println("Analysis complete!")
	fmt.Println("════════════════════════════════════════════════════════════")
}
