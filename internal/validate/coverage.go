package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Antwohlf/duocalculator/pkg/course"
)

// CoverageReport compares what the catalog says should exist against what
// was actually scraped to disk.
type CoverageReport struct {
	TotalCourses  int      `json:"totalCourses"`
	WithDetail    int      `json:"withDetail"`
	WithoutDetail int      `json:"withoutDetail"`
	ScrapedKeys   int      `json:"scrapedKeys"`
	MissingKeys   []string `json:"missingKeys"`
}

// Coverage reads courses.json and the courses/ directory and reports which
// expected detail files are missing.
func Coverage(dataDir string) (*CoverageReport, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, "courses.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read courses.json: %w", err)
	}
	var catalog course.CatalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse courses.json: %w", err)
	}

	report := &CoverageReport{
		TotalCourses: len(catalog.Courses),
		MissingKeys:  []string{},
	}

	scraped := map[string]bool{}
	if entries, err := os.ReadDir(filepath.Join(dataDir, "courses")); err == nil {
		for _, entry := range entries {
			if name, ok := strings.CutSuffix(entry.Name(), ".json"); ok {
				scraped[name] = true
				report.ScrapedKeys++
			}
		}
	}

	for _, c := range catalog.Courses {
		if c.DetailHref == nil {
			report.WithoutDetail++
			continue
		}
		report.WithDetail++
		if c.DetailKey != nil && !scraped[*c.DetailKey] {
			report.MissingKeys = append(report.MissingKeys, *c.DetailKey)
		}
	}
	return report, nil
}
