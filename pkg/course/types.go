package course

import (
	"fmt"
	"strings"
)

// SchemaVersion is stamped into every persisted dataset file.
const SchemaVersion = "1.0.0"

// Summary represents one row of the upstream catalog table.
// Nullable numerics are pointers so that absent values serialize as JSON null
// rather than zero.
type Summary struct {
	Key          string  `json:"key"`
	Title        string  `json:"title"`
	FromLang     string  `json:"fromLang"`
	ToLang       string  `json:"toLang"`
	FromCode     *string `json:"fromCode"`
	ToCode       *string `json:"toCode"`
	Level        *string `json:"level"`
	LevelShort   *string `json:"levelShort"`
	UnitsCount   *int    `json:"unitsCount"`
	LessonsCount *int    `json:"lessonsCount"`
	Updated      string  `json:"updated"`
	DetailHref   *string `json:"detailHref"`
	HasDetail    bool    `json:"hasDetail"`
}

// Valid reports whether the summary passes the from/to invariant: a course
// must teach a language different from the one it is taught in.
func (s *Summary) Valid() bool {
	from := strings.ToLower(s.FromLang)
	to := strings.ToLower(s.ToLang)
	if from != "" && to != "" && from == to {
		return false
	}
	if s.FromCode != nil && s.ToCode != nil && *s.FromCode == *s.ToCode {
		return false
	}
	return true
}

// CatalogCourse is a Summary enriched for persistence in courses.json.
type CatalogCourse struct {
	Summary
	CourseID        string  `json:"courseId"`
	LastUpdated     string  `json:"lastUpdated"`
	DetailKey       *string `json:"detailKey"`
	DetailAvailable bool    `json:"detailAvailable"`
}

// CatalogMeta describes a catalog snapshot.
type CatalogMeta struct {
	ScrapedAt     string `json:"scrapedAt"`
	TotalCourses  int    `json:"totalCourses"`
	Source        string `json:"source"`
	SchemaVersion string `json:"schemaVersion"`
}

// CatalogFile is the persisted courses.json document.
type CatalogFile struct {
	Meta    CatalogMeta     `json:"meta"`
	Courses []CatalogCourse `json:"courses"`
}

// UnitRecord is one numbered unit within a section. Activities stays nil
// until an explicit count is parsed or the fallback estimator fills it.
type UnitRecord struct {
	SectionIndex    int    `json:"sectionIndex"`
	UnitIndex       int    `json:"unitIndex"`
	Title           string `json:"title"`
	ActivityPattern []int  `json:"activityPattern"`
	Activities      *int   `json:"activities"`
}

// SectionRecord is a numbered top-level grouping of units. SectionIndex
// follows the source's own numbering, not array position.
type SectionRecord struct {
	SectionIndex int           `json:"sectionIndex"`
	UnitCount    int           `json:"unitCount"`
	Title        string        `json:"title"`
	RawTitle     string        `json:"rawTitle"`
	CEFR         string        `json:"cefr"`
	Units        []*UnitRecord `json:"units"`
}

// Totals aggregates counts over a parsed course.
type Totals struct {
	Sections   int `json:"sections"`
	Units      int `json:"units"`
	Activities int `json:"activities"`
}

// DetailMeta describes one scraped course detail file.
type DetailMeta struct {
	Key            string   `json:"key"`
	CourseTitle    string   `json:"courseTitle"`
	ScrapedAt      string   `json:"scrapedAt"`
	SourceHash     string   `json:"sourceHash"`
	FromLang       string   `json:"fromLang"`
	ToLang         string   `json:"toLang"`
	FromCode       *string  `json:"fromCode"`
	ToCode         *string  `json:"toCode"`
	Level          *string  `json:"level"`
	LevelShort     *string  `json:"levelShort"`
	DetailHref     string   `json:"detailHref"`
	DetailHrefHash string   `json:"detailHrefHash"`
	ScrapeWarnings []string `json:"scrapeWarnings"`
	SchemaVersion  string   `json:"schemaVersion"`
}

// Detail is the persisted courses/<key>.json document.
type Detail struct {
	Meta     DetailMeta       `json:"meta"`
	Totals   Totals           `json:"totals"`
	Sections []*SectionRecord `json:"sections"`
}

// Manifest is the run-level summary asserting dataset completeness and
// integrity. It is written once per orchestrator run and never mutated.
type Manifest struct {
	Version              string   `json:"version"`
	SchemaVersion        string   `json:"schemaVersion"`
	RunID                string   `json:"runId"`
	ScrapedAt            string   `json:"scrapedAt"`
	ScrapedAtUnix        int64    `json:"scrapedAtUnix"`
	LastSuccessfulScrape string   `json:"lastSuccessfulScrape"`
	LastAttemptedScrape  string   `json:"lastAttemptedScrape"`
	ScrapeDurationMs     int64    `json:"scrapeDurationMs"`
	CourseCount          int      `json:"courseCount"`
	DetailCount          int      `json:"detailCount"`
	FailedCourses        []string `json:"failedCourses"`
	Checksum             string   `json:"checksum"`
	Source               string   `json:"source"`
	NextUpdate           string   `json:"nextUpdate"`
}

// NewsEntry is one item from the auxiliary daily news page.
type NewsEntry struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// NewsMeta describes a daily news snapshot.
type NewsMeta struct {
	ScrapedAt     string `json:"scrapedAt"`
	Source        string `json:"source"`
	SchemaVersion string `json:"schemaVersion"`
}

// NewsFile is the persisted dailynews.json document.
type NewsFile struct {
	Meta    NewsMeta    `json:"meta"`
	Entries []NewsEntry `json:"entries"`
}

// Validate checks that a manifest carries the fields downstream consumers
// rely on to judge dataset freshness.
func (m *Manifest) Validate() error {
	if m.ScrapedAt == "" {
		return fmt.Errorf("manifest scrapedAt cannot be empty")
	}
	if m.Checksum == "" {
		return fmt.Errorf("manifest checksum cannot be empty")
	}
	if m.CourseCount < 0 {
		return fmt.Errorf("manifest courseCount cannot be negative")
	}
	return nil
}

// IntPtr returns a pointer to v. Helper for the nullable numeric fields.
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }
