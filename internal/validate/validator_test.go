package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() map[string]any {
	return map[string]any{
		"version":              "1.0.0",
		"schemaVersion":        "1.0.0",
		"scrapedAt":            "2025-08-13T09:30:45.123Z",
		"scrapedAtUnix":        1755077445,
		"lastSuccessfulScrape": "2025-08-13T09:30:45.123Z",
		"lastAttemptedScrape":  "2025-08-13T09:30:45.123Z",
		"scrapeDurationMs":     1234,
		"courseCount":          2,
		"detailCount":          1,
		"failedCourses":        []string{},
		"checksum":             "sha256:0123456789abcdef",
		"source":               "https://duolingodata.com/",
		"nextUpdate":           "2025-08-17T03:00:00.000Z",
	}
}

func validCatalog() map[string]any {
	courseEntry := map[string]any{
		"courseId":        "https://duolingodata.com/enfes.html",
		"key":             "https://duolingodata.com/enfes.html",
		"title":           "Spanish → English",
		"fromLang":        "Spanish",
		"toLang":          "English",
		"lastUpdated":     "2025-08-13T09:30:45.123Z",
		"detailAvailable": true,
	}
	return map[string]any{
		"meta": map[string]any{
			"scrapedAt":     "2025-08-13T09:30:45.123Z",
			"totalCourses":  1,
			"source":        "https://duolingodata.com/",
			"schemaVersion": "1.0.0",
		},
		"courses": []any{courseEntry},
	}
}

func validDetail() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"key":            "enfes",
			"courseTitle":    "Spanish → English",
			"scrapedAt":      "2025-08-13T09:30:45.123Z",
			"sourceHash":     "sha256:0123456789abcdef",
			"detailHref":     "https://duolingodata.com/enfes.html",
			"detailHrefHash": "sha256:fedcba9876543210",
		},
		"totals":   map[string]any{"sections": 1, "units": 2, "activities": 12},
		"sections": []any{},
	}
}

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// writeDataset lays out a complete dataset; callers mutate the maps first to
// introduce the defect under test.
func writeDataset(t *testing.T, manifest, catalog, detail map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "courses"), 0o755))
	writeFile(t, filepath.Join(dir, "manifest.json"), manifest)
	writeFile(t, filepath.Join(dir, "courses.json"), catalog)
	if detail != nil {
		writeFile(t, filepath.Join(dir, "courses", "enfes.json"), detail)
	}
	return dir
}

func TestRunValidDatasetPasses(t *testing.T) {
	dir := writeDataset(t, validManifest(), validCatalog(), validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 10})

	assert.True(t, result.Passed)
	assert.Empty(t, result.Errors)
	assert.Zero(t, result.ErrorRate)
}

func TestRunMissingRequiredFiles(t *testing.T) {
	result := Run(&Options{DataDir: t.TempDir(), ErrorThreshold: 10})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Errors, "Missing required file: manifest.json")
	assert.Contains(t, result.Errors, "Missing required file: courses.json")
	assert.Equal(t, float64(100), result.ErrorRate)
}

func TestRunManifestMissingField(t *testing.T) {
	manifest := validManifest()
	delete(manifest, "checksum")
	dir := writeDataset(t, manifest, validCatalog(), validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 10})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Errors, "Missing required field: checksum")
}

func TestRunManifestFieldTypes(t *testing.T) {
	manifest := validManifest()
	manifest["courseCount"] = "two"
	manifest["failedCourses"] = "none"
	dir := writeDataset(t, manifest, validCatalog(), validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 10})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Errors, "manifest.courseCount must be a number")
	assert.Contains(t, result.Errors, "manifest.failedCourses must be an array")
}

func TestRunEmptyCatalogFails(t *testing.T) {
	catalog := validCatalog()
	catalog["courses"] = []any{}
	dir := writeDataset(t, validManifest(), catalog, validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 10})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Errors, "courses.json courses array is empty")
	assert.Equal(t, float64(100), result.ErrorRate)
}

func TestRunIncompleteCourseIsWarning(t *testing.T) {
	catalog := validCatalog()
	entry := catalog["courses"].([]any)[0].(map[string]any)
	delete(entry, "toLang")
	dir := writeDataset(t, validManifest(), catalog, validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 100})

	assert.True(t, result.Passed)
	assert.Contains(t, result.Warnings, "1 courses have incomplete data")
}

func TestRunDetailMissingMetaIsError(t *testing.T) {
	detail := validDetail()
	delete(detail, "meta")
	dir := writeDataset(t, validManifest(), validCatalog(), detail)

	result := Run(&Options{DataDir: dir, ErrorThreshold: 100})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Errors, "enfes.json missing meta object")
}

func TestRunErrorRateThreshold(t *testing.T) {
	manifest := validManifest()
	manifest["courseCount"] = 2
	manifest["failedCourses"] = []string{"aafen"}
	dir := writeDataset(t, manifest, validCatalog(), validDetail())

	result := Run(&Options{DataDir: dir, ErrorThreshold: 10})

	assert.False(t, result.Passed)
	assert.InDelta(t, 50, result.ErrorRate, 0.01)
	assert.Contains(t, result.Errors, "Error rate 50.0% exceeds threshold 10.0%")
}

func TestRunNilOptionsUsesDefaults(t *testing.T) {
	result := Run(nil)
	// No ./data directory in the test environment.
	assert.False(t, result.Passed)
}
