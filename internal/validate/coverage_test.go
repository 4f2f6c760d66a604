package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverageCatalog() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"scrapedAt":     "2025-08-13T09:30:45.123Z",
			"totalCourses":  3,
			"source":        "https://duolingodata.com/",
			"schemaVersion": "1.0.0",
		},
		"courses": []any{
			map[string]any{
				"key":        "https://duolingodata.com/enfes.html",
				"detailHref": "https://duolingodata.com/enfes.html",
				"detailKey":  "enfes",
			},
			map[string]any{
				"key":        "https://duolingodata.com/defr.html",
				"detailHref": "https://duolingodata.com/defr.html",
				"detailKey":  "defr",
			},
			map[string]any{
				"key": "fallback:french::german::A1",
			},
		},
	}
}

func TestCoverageReportsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "courses"), 0o755))
	writeFile(t, filepath.Join(dir, "courses.json"), coverageCatalog())
	writeFile(t, filepath.Join(dir, "courses", "enfes.json"), validDetail())

	report, err := Coverage(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalCourses)
	assert.Equal(t, 2, report.WithDetail)
	assert.Equal(t, 1, report.WithoutDetail)
	assert.Equal(t, 1, report.ScrapedKeys)
	assert.Equal(t, []string{"defr"}, report.MissingKeys)
}

func TestCoverageNoCoursesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "courses.json"), coverageCatalog())

	report, err := Coverage(dir)
	require.NoError(t, err)

	assert.Equal(t, 0, report.ScrapedKeys)
	assert.Equal(t, []string{"enfes", "defr"}, report.MissingKeys)
}

func TestCoverageMissingCatalog(t *testing.T) {
	_, err := Coverage(t.TempDir())
	assert.Error(t, err)
}
