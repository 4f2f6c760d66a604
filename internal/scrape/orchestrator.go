package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Antwohlf/duocalculator/internal/fetch"
	"github.com/Antwohlf/duocalculator/internal/parser"
	"github.com/Antwohlf/duocalculator/pkg/course"
	"github.com/Antwohlf/duocalculator/pkg/logging"
)

// Fetcher is the outbound HTTP dependency. Tests substitute a scripted
// implementation so orchestrator runs never touch the network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config controls one orchestrator run.
type Config struct {
	OutputDir       string        `json:"output_dir"`
	BaseURL         string        `json:"base_url"`
	RateLimit       time.Duration `json:"rate_limit"`
	FullRefresh     bool          `json:"full_refresh"`
	StalenessWindow time.Duration `json:"staleness_window"`
	UpdateWeekday   time.Weekday  `json:"update_weekday"`
	UpdateHourUTC   int           `json:"update_hour_utc"`
	CheckRobots     bool          `json:"check_robots"`
	UserAgent       string        `json:"user_agent"`
}

// DefaultConfig returns production settings. The staleness window and update
// cadence mirror the upstream's observed weekly refresh; both are plain
// config fields so operators can tune them without a rebuild.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "../../data",
		BaseURL:         "https://duolingodata.com/",
		RateLimit:       500 * time.Millisecond,
		FullRefresh:     false,
		StalenessWindow: 6 * 24 * time.Hour,
		UpdateWeekday:   time.Sunday,
		UpdateHourUTC:   3,
		CheckRobots:     true,
		UserAgent:       fetch.UserAgent(),
	}
}

// RunStats summarizes a completed run.
type RunStats struct {
	CourseCount   int           `json:"course_count"`
	DetailCount   int           `json:"detail_count"`
	Scraped       int           `json:"scraped"`
	Skipped       int           `json:"skipped"`
	Rescraped     int           `json:"rescraped"`
	FailedCourses []string      `json:"failed_courses"`
	Duration      time.Duration `json:"duration"`
}

// Scraper drives the full pipeline: catalog fetch, per-course detail scrape
// under the incremental policy, auxiliary news fetch, and manifest write.
type Scraper struct {
	config  *Config
	fetcher Fetcher
	limiter *fetch.RateLimiter
	logger  zerolog.Logger
	runID   string
}

// New creates a Scraper. A nil config uses DefaultConfig.
func New(config *Config, fetcher Fetcher) *Scraper {
	if config == nil {
		config = DefaultConfig()
	}
	runID := uuid.New().String()
	return &Scraper{
		config:  config,
		fetcher: fetcher,
		limiter: fetch.NewRateLimiter(config.RateLimit),
		logger:  logging.GetRunLogger("scraper", runID),
		runID:   runID,
	}
}

// Run executes one scrape. Only a catalog-level failure (fetch error or zero
// courses) is fatal; per-course failures are recorded in the manifest and the
// run continues through to the manifest write.
func (s *Scraper) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	scrapedAt := FormatTimestamp(start)
	coursesDir := filepath.Join(s.config.OutputDir, "courses")

	s.logger.Info().
		Str("output", s.config.OutputDir).
		Dur("rate_limit", s.config.RateLimit).
		Bool("full_refresh", s.config.FullRefresh).
		Msg("Starting course data scrape")

	if err := os.MkdirAll(coursesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if s.config.CheckRobots {
		fetch.CheckRobots(ctx, s.config.BaseURL, s.config.UserAgent)
	}

	// Catalog fetch and parse. This is the only fatal stage.
	mainHTML, err := s.fetcher.Fetch(ctx, s.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}
	courses := parser.ParseCourseList(mainHTML, s.config.BaseURL)
	if len(courses) == 0 {
		return nil, fmt.Errorf("no courses discovered in catalog at %s", s.config.BaseURL)
	}
	s.logger.Info().Int("courses", len(courses)).Msg("Parsed course catalog")

	if err := s.writeCatalog(courses, scrapedAt); err != nil {
		return nil, err
	}

	stats := &RunStats{CourseCount: len(courses), FailedCourses: []string{}}
	for i := range courses {
		c := &courses[i]
		if c.DetailHref == nil {
			continue
		}
		key := DetailKey(*c.DetailHref)
		if key == "" {
			s.logger.Warn().Str("href", *c.DetailHref).Msg("Skipping invalid detail href")
			continue
		}
		s.processCourse(ctx, c, key, coursesDir, scrapedAt, stats)
	}

	s.logger.Info().
		Int("scraped", stats.Scraped).
		Int("skipped", stats.Skipped).
		Int("rescraped", stats.Rescraped).
		Int("failed", len(stats.FailedCourses)).
		Msg("Course details complete")

	s.fetchDailyNews(ctx, scrapedAt)

	if err := s.writeManifest(scrapedAt, start, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	s.logger.Info().
		Int("courses", stats.CourseCount).
		Int("details", stats.DetailCount).
		Dur("duration", stats.Duration).
		Msg("Scrape complete")
	return stats, nil
}

// writeCatalog persists courses.json with each summary enriched by its
// stable detail key and availability flag.
func (s *Scraper) writeCatalog(courses []course.Summary, scrapedAt string) error {
	catalog := course.CatalogFile{
		Meta: course.CatalogMeta{
			ScrapedAt:     scrapedAt,
			TotalCourses:  len(courses),
			Source:        s.config.BaseURL,
			SchemaVersion: course.SchemaVersion,
		},
		Courses: make([]course.CatalogCourse, 0, len(courses)),
	}
	for _, c := range courses {
		entry := course.CatalogCourse{
			Summary:         c,
			CourseID:        c.Key,
			LastUpdated:     scrapedAt,
			DetailAvailable: c.DetailHref != nil,
		}
		if c.DetailHref != nil {
			if key := DetailKey(*c.DetailHref); key != "" {
				entry.DetailKey = course.StrPtr(key)
			}
		}
		catalog.Courses = append(catalog.Courses, entry)
	}
	if err := writeJSON(filepath.Join(s.config.OutputDir, "courses.json"), catalog); err != nil {
		return fmt.Errorf("failed to write courses.json: %w", err)
	}
	return nil
}

// processCourse applies the incremental policy, then fetches, parses, and
// persists one course detail. Failures are recorded, never propagated.
func (s *Scraper) processCourse(ctx context.Context, c *course.Summary, key, coursesDir, scrapedAt string, stats *RunStats) {
	existingPath := filepath.Join(coursesDir, key+".json")

	if !s.config.FullRefresh {
		switch s.incrementalDecision(existingPath, *c.DetailHref) {
		case decisionSkip:
			stats.Skipped++
			stats.DetailCount++ // recent data on disk counts as success
			return
		case decisionRescrape:
			s.logger.Info().Str("key", key).Msg("detailHref changed, forcing rescrape")
			stats.Rescraped++
		case decisionFetch:
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		stats.FailedCourses = append(stats.FailedCourses, key)
		return
	}

	html, err := s.fetcher.Fetch(ctx, *c.DetailHref)
	if err != nil {
		stats.FailedCourses = append(stats.FailedCourses, key)
		s.logger.Error().Err(err).Str("key", key).Msg("Course detail fetch failed")
		return
	}

	result := parser.ParseCourseDetail(html, c)
	parser.EstimateActivities(result, c)

	detail := course.Detail{
		Meta: course.DetailMeta{
			Key:            key,
			CourseTitle:    c.Title,
			ScrapedAt:      scrapedAt,
			SourceHash:     Checksum([]byte(html)),
			FromLang:       c.FromLang,
			ToLang:         c.ToLang,
			FromCode:       c.FromCode,
			ToCode:         c.ToCode,
			Level:          c.Level,
			LevelShort:     c.LevelShort,
			DetailHref:     *c.DetailHref,
			DetailHrefHash: Checksum([]byte(*c.DetailHref)),
			ScrapeWarnings: warningsOrEmpty(result.Warnings),
			SchemaVersion:  course.SchemaVersion,
		},
		Totals:   result.Totals,
		Sections: result.Sections,
	}
	if detail.Sections == nil {
		detail.Sections = []*course.SectionRecord{}
	}

	if err := writeJSON(existingPath, detail); err != nil {
		stats.FailedCourses = append(stats.FailedCourses, key)
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to persist course detail")
		return
	}

	stats.Scraped++
	stats.DetailCount++
	s.logger.Debug().
		Str("key", key).
		Int("units", result.Totals.Units).
		Int("activities", result.Totals.Activities).
		Bool("estimated", result.Estimated).
		Msg("Course detail saved")
}

type incrementalDecision int

const (
	decisionFetch incrementalDecision = iota
	decisionSkip
	decisionRescrape
)

// incrementalDecision decides fetch-or-skip for a course with an existing
// detail file: a changed detailHref always forces a re-fetch, otherwise a
// file younger than the staleness window is kept as-is. Unreadable or
// corrupt files simply get re-fetched.
func (s *Scraper) incrementalDecision(path, currentHref string) incrementalDecision {
	data, err := os.ReadFile(path)
	if err != nil {
		return decisionFetch
	}
	var existing course.Detail
	if err := json.Unmarshal(data, &existing); err != nil {
		return decisionFetch
	}
	if existing.Meta.DetailHref != currentHref {
		return decisionRescrape
	}
	scrapedAt, err := ParseTimestamp(existing.Meta.ScrapedAt)
	if err != nil {
		return decisionFetch
	}
	if time.Since(scrapedAt) < s.config.StalenessWindow {
		return decisionSkip
	}
	return decisionFetch
}

// fetchDailyNews persists the auxiliary news feed. Best effort: any failure
// is logged and the run continues.
func (s *Scraper) fetchDailyNews(ctx context.Context, scrapedAt string) {
	newsURL := s.config.BaseURL + "dailynews.html"

	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	html, err := s.fetcher.Fetch(ctx, newsURL)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Daily news fetch failed")
		return
	}

	entries := parser.ParseDailyNews(html)
	news := course.NewsFile{
		Meta: course.NewsMeta{
			ScrapedAt:     scrapedAt,
			Source:        newsURL,
			SchemaVersion: course.SchemaVersion,
		},
		Entries: entries,
	}
	if news.Entries == nil {
		news.Entries = []course.NewsEntry{}
	}
	if err := writeJSON(filepath.Join(s.config.OutputDir, "dailynews.json"), news); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist daily news")
		return
	}
	s.logger.Info().Int("entries", len(news.Entries)).Msg("Saved daily news")
}

// writeManifest checksums the persisted catalog and writes the run summary.
func (s *Scraper) writeManifest(scrapedAt string, start time.Time, stats *RunStats) error {
	coursesJSON, err := os.ReadFile(filepath.Join(s.config.OutputDir, "courses.json"))
	if err != nil {
		return fmt.Errorf("failed to read back courses.json for checksum: %w", err)
	}

	manifest := course.Manifest{
		Version:              "1.0.0",
		SchemaVersion:        course.SchemaVersion,
		RunID:                s.runID,
		ScrapedAt:            scrapedAt,
		ScrapedAtUnix:        start.Unix(),
		LastSuccessfulScrape: scrapedAt,
		LastAttemptedScrape:  scrapedAt,
		ScrapeDurationMs:     time.Since(start).Milliseconds(),
		CourseCount:          stats.CourseCount,
		DetailCount:          stats.DetailCount,
		FailedCourses:        stats.FailedCourses,
		Checksum:             Checksum(coursesJSON),
		Source:               s.config.BaseURL,
		NextUpdate:           FormatTimestamp(NextUpdate(time.Now(), s.config.UpdateWeekday, s.config.UpdateHourUTC)),
	}
	if err := writeJSON(filepath.Join(s.config.OutputDir, "manifest.json"), manifest); err != nil {
		return fmt.Errorf("failed to write manifest.json: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func warningsOrEmpty(warnings []string) []string {
	if warnings == nil {
		return []string{}
	}
	return warnings
}
