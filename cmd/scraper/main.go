// Command scraper runs one full scrape of the upstream course catalog and
// detail pages into a versioned JSON dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Antwohlf/duocalculator/internal/fetch"
	"github.com/Antwohlf/duocalculator/internal/scrape"
	"github.com/Antwohlf/duocalculator/pkg/logging"
)

func main() {
	output := flag.String("output", "../../data", "output directory for the dataset")
	rateLimit := flag.Int("rate-limit", 500, "minimum milliseconds between requests")
	fullRefresh := flag.Bool("full-refresh", false, "ignore existing detail files and re-fetch everything")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logConfig := logging.DefaultConfig()
	logConfig.Level = *logLevel
	if err := logging.Setup(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger("main")

	config := scrape.DefaultConfig()
	config.OutputDir = *output
	config.RateLimit = time.Duration(*rateLimit) * time.Millisecond
	config.FullRefresh = *fullRefresh

	scraper := scrape.New(config, fetch.NewClient(nil))
	stats, err := scraper.Run(context.Background())
	if err != nil {
		logger.Error().Stack().Err(err).Msg("Scraper failed")
		os.Exit(1)
	}

	logger.Info().
		Int("courses", stats.CourseCount).
		Int("details", stats.DetailCount).
		Int("failed", len(stats.FailedCourses)).
		Dur("duration", stats.Duration).
		Msg("Done")
}
