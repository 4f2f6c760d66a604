package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Antwohlf/duocalculator/pkg/logging"
)

// Options configures a validation run.
type Options struct {
	DataDir        string  `json:"data_dir"`
	ErrorThreshold float64 `json:"error_threshold"` // percent
	Verbose        bool    `json:"verbose"`
}

// DefaultOptions returns the release-gate defaults used by CI.
func DefaultOptions() *Options {
	return &Options{
		DataDir:        "./data",
		ErrorThreshold: 10,
		Verbose:        false,
	}
}

// Result is the machine-readable outcome of a validation run.
type Result struct {
	Passed    bool     `json:"passed"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	ErrorRate float64  `json:"error_rate"`
}

var manifestRequiredFields = []string{
	"version", "schemaVersion", "scrapedAt", "scrapedAtUnix",
	"lastSuccessfulScrape", "lastAttemptedScrape", "scrapeDurationMs",
	"courseCount", "detailCount", "failedCourses", "checksum", "source",
	"nextUpdate",
}

var catalogMetaFields = []string{"scrapedAt", "totalCourses", "source", "schemaVersion"}

var catalogCourseFields = []string{
	"courseId", "key", "title", "fromLang", "toLang", "lastUpdated", "detailAvailable",
}

var detailMetaFields = []string{
	"key", "courseTitle", "scrapedAt", "sourceHash", "detailHref", "detailHrefHash",
}

// Run re-reads the persisted dataset and checks schema compliance. Schema
// violations are hard errors; per-course incompleteness becomes warnings
// folded into an aggregate error rate that must stay under the threshold.
// The validator never touches the network.
func Run(opts *Options) *Result {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := logging.GetLogger("validator")
	result := &Result{Errors: []string{}, Warnings: []string{}}

	logger.Info().
		Str("data_dir", opts.DataDir).
		Float64("error_threshold", opts.ErrorThreshold).
		Msg("Validating scraped data")

	for _, file := range []string{"manifest.json", "courses.json"} {
		if _, err := os.Stat(filepath.Join(opts.DataDir, file)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required file: %s", file))
		}
	}
	if len(result.Errors) > 0 {
		result.ErrorRate = 100
		return result
	}

	manifest := validateManifest(opts, result)
	if manifest == nil {
		result.ErrorRate = 100
		return result
	}
	if !validateCatalog(opts, result) {
		result.ErrorRate = 100
		return result
	}
	invalidDetails := validateDetails(opts, result)

	totalCourses := 1.0
	if n, ok := manifest["courseCount"].(float64); ok && n > 0 {
		totalCourses = n
	}
	failedCount := float64(invalidDetails)
	if failed, ok := manifest["failedCourses"].([]any); ok {
		failedCount += float64(len(failed))
	}
	result.ErrorRate = failedCount / totalCourses * 100

	if result.ErrorRate > opts.ErrorThreshold {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Error rate %.1f%% exceeds threshold %.1f%%", result.ErrorRate, opts.ErrorThreshold))
	}

	result.Passed = len(result.Errors) == 0
	if result.Passed {
		logger.Info().Float64("error_rate", result.ErrorRate).Msg("Validation passed")
	} else {
		logger.Error().
			Int("errors", len(result.Errors)).
			Float64("error_rate", result.ErrorRate).
			Msg("Validation failed")
	}
	return result
}

func validateManifest(opts *Options, result *Result) map[string]any {
	manifest, err := readJSONMap(filepath.Join(opts.DataDir, "manifest.json"))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid manifest.json: %v", err))
		return nil
	}

	for _, field := range manifestRequiredFields {
		if _, ok := manifest[field]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required field: %s", field))
		}
	}

	checkNumber := func(field string) {
		if v, ok := manifest[field]; ok {
			if _, isNum := v.(float64); !isNum {
				result.Errors = append(result.Errors, fmt.Sprintf("manifest.%s must be a number", field))
			}
		}
	}
	checkNumber("scrapedAtUnix")
	checkNumber("courseCount")
	checkNumber("detailCount")
	if v, ok := manifest["failedCourses"]; ok {
		if _, isArr := v.([]any); !isArr {
			result.Errors = append(result.Errors, "manifest.failedCourses must be an array")
		}
	}
	return manifest
}

func validateCatalog(opts *Options, result *Result) bool {
	catalog, err := readJSONMap(filepath.Join(opts.DataDir, "courses.json"))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid courses.json: %v", err))
		return false
	}

	meta, ok := catalog["meta"].(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, "courses.json missing meta field")
	} else {
		for _, field := range catalogMetaFields {
			if _, ok := meta[field]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("courses.json missing meta.%s", field))
			}
		}
	}

	courses, ok := catalog["courses"].([]any)
	if !ok {
		result.Errors = append(result.Errors, "courses.json courses field must be an array")
		return len(result.Errors) == 0
	}
	if len(courses) == 0 {
		result.Errors = append(result.Errors, "courses.json courses array is empty")
		return len(result.Errors) == 0
	}

	invalidCourses := 0
	for _, raw := range courses {
		entry, ok := raw.(map[string]any)
		if !ok {
			invalidCourses++
			continue
		}
		for _, field := range catalogCourseFields {
			if _, ok := entry[field]; !ok {
				if opts.Verbose {
					key, _ := entry["key"].(string)
					if key == "" {
						key = "unknown"
					}
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("Course %s missing field: %s", key, field))
				}
				invalidCourses++
				break
			}
		}
	}
	if invalidCourses > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d courses have incomplete data", invalidCourses))
	}
	return true
}

func validateDetails(opts *Options, result *Result) int {
	coursesDir := filepath.Join(opts.DataDir, "courses")
	files, err := os.ReadDir(coursesDir)
	if err != nil {
		result.Warnings = append(result.Warnings, "No courses/ directory found")
		return 0
	}

	invalidDetails := 0
	for _, entry := range files {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if !validateDetailFile(opts, result, filepath.Join(coursesDir, entry.Name()), entry.Name()) {
			invalidDetails++
		}
	}
	return invalidDetails
}

func validateDetailFile(opts *Options, result *Result, path, name string) bool {
	detail, err := readJSONMap(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid %s: %v", name, err))
		return false
	}

	// A detail file without a meta object is unusable by every consumer,
	// so that one is a hard error; the rest degrade to warnings.
	if _, ok := detail["meta"]; !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("%s missing meta object", name))
		return false
	}
	for _, field := range []string{"totals", "sections"} {
		if _, ok := detail[field]; !ok {
			if opts.Verbose {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s missing field: %s", name, field))
			}
			return false
		}
	}

	if meta, ok := detail["meta"].(map[string]any); ok {
		for _, field := range detailMetaFields {
			if _, ok := meta[field]; !ok {
				if opts.Verbose {
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("%s missing meta.%s", name, field))
				}
				return false
			}
		}
	}

	if totals, ok := detail["totals"].(map[string]any); ok {
		for _, field := range []string{"sections", "units", "activities"} {
			if _, isNum := totals[field].(float64); !isNum {
				if opts.Verbose {
					result.Warnings = append(result.Warnings, fmt.Sprintf("%s has invalid totals", name))
				}
				return false
			}
		}
	}

	if sections, ok := detail["sections"]; ok {
		if _, isArr := sections.([]any); !isArr {
			if opts.Verbose {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s sections is not an array", name))
			}
			return false
		}
	}
	return true
}

func readJSONMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
