// Command validate checks a scraped dataset for schema compliance before it
// is published. It is the CI release gate: exit 0 means the dataset may ship.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Antwohlf/duocalculator/internal/validate"
	"github.com/Antwohlf/duocalculator/pkg/logging"
)

func main() {
	dataDir := flag.String("data", "./data", "dataset directory to validate")
	errorThreshold := flag.Float64("error-threshold", 10, "maximum tolerated error rate in percent")
	verbose := flag.Bool("verbose", false, "report per-course warnings")
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = "debug"
	}
	if err := logging.Setup(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger("main")

	result := validate.Run(&validate.Options{
		DataDir:        *dataDir,
		ErrorThreshold: *errorThreshold,
		Verbose:        *verbose,
	})

	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	maxWarnings := 10
	for i, w := range result.Warnings {
		if i >= maxWarnings {
			fmt.Fprintf(os.Stderr, "... and %d more warnings\n", len(result.Warnings)-maxWarnings)
			break
		}
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if *verbose {
		if report, err := validate.Coverage(*dataDir); err == nil {
			logger.Info().
				Int("total", report.TotalCourses).
				Int("with_detail", report.WithDetail).
				Int("without_detail", report.WithoutDetail).
				Int("scraped", report.ScrapedKeys).
				Strs("missing", report.MissingKeys).
				Msg("Coverage report")
		}
	}

	// GitHub Actions step outputs.
	fmt.Printf("::set-output name=passed::%t\n", result.Passed)
	fmt.Printf("::set-output name=error_count::%d\n", len(result.Errors))
	fmt.Printf("::set-output name=error_rate::%.1f\n", result.ErrorRate)

	if !result.Passed {
		os.Exit(1)
	}
}
