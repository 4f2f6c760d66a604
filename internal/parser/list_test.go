package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://duolingodata.com/"

const catalogFixture = `<html><body>
<table>
<thead><tr>
<th>Course</th><th>From</th><th>To</th><th>CEFR</th><th>Units</th><th>Lessons</th><th>Updated</th>
</tr></thead>
<tbody>
<tr>
<td><a href="enfes.html">Spanish → English</a></td>
<td>Spanish</td><td>English</td><td>B2</td><td>50</td><td>500</td><td>2025-01-01</td>
</tr>
<tr>
<td>French → German CEFR A1</td>
<td>French</td><td>German</td><td></td><td>40</td><td>n/a</td><td>2025-01-02</td>
</tr>
</tbody>
</table>
</body></html>`

func TestParseCourseListExtractsCourses(t *testing.T) {
	courses := ParseCourseList(catalogFixture, testBase)
	require.Len(t, courses, 2)

	first := courses[0]
	assert.Equal(t, "https://duolingodata.com/enfes.html", first.Key)
	assert.Equal(t, "Spanish → English", first.Title)
	assert.Equal(t, "Spanish", first.FromLang)
	assert.Equal(t, "English", first.ToLang)
	require.NotNil(t, first.FromCode)
	require.NotNil(t, first.ToCode)
	assert.Equal(t, "es", *first.FromCode)
	assert.Equal(t, "en", *first.ToCode)
	require.NotNil(t, first.LevelShort)
	assert.Equal(t, "B2", *first.LevelShort)
	require.NotNil(t, first.UnitsCount)
	assert.Equal(t, 50, *first.UnitsCount)
	require.NotNil(t, first.LessonsCount)
	assert.Equal(t, 500, *first.LessonsCount)
	assert.Equal(t, "2025-01-01", first.Updated)
	assert.True(t, first.HasDetail)
	require.NotNil(t, first.DetailHref)
	assert.Equal(t, "https://duolingodata.com/enfes.html", *first.DetailHref)

	second := courses[1]
	assert.False(t, second.HasDetail)
	assert.Nil(t, second.DetailHref)
	assert.Contains(t, second.Key, "fallback:")
	// CEFR recovered from the course name when the level cell is empty.
	require.NotNil(t, second.LevelShort)
	assert.Equal(t, "A1", *second.LevelShort)
	// "n/a" has no digits, so lessons stays null rather than zero.
	assert.Nil(t, second.LessonsCount)
	require.NotNil(t, second.UnitsCount)
	assert.Equal(t, 40, *second.UnitsCount)
}

func TestParseCourseListIdempotent(t *testing.T) {
	a, err := json.Marshal(ParseCourseList(catalogFixture, testBase))
	require.NoError(t, err)
	b, err := json.Marshal(ParseCourseList(catalogFixture, testBase))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseCourseListDropsSameLanguagePairs(t *testing.T) {
	html := `<table>
<thead><tr><th>Course</th><th>From</th><th>To</th><th>Units</th></tr></thead>
<tbody>
<tr><td>English → English</td><td>English</td><td>English</td><td>10</td></tr>
<tr><td>English → French</td><td>English</td><td>French</td><td>10</td></tr>
</tbody></table>`

	courses := ParseCourseList(html, testBase)
	require.Len(t, courses, 1)
	assert.Equal(t, "French", courses[0].ToLang)
}

func TestParseCourseListNoUsableTable(t *testing.T) {
	assert.Empty(t, ParseCourseList("<html><body><p>no table here</p></body></html>", testBase))
	assert.Empty(t, ParseCourseList("", testBase))
}

func TestParseCourseListSkipsShortRows(t *testing.T) {
	html := `<table>
<thead><tr><th>Course</th><th>From</th><th>To</th><th>Units</th></tr></thead>
<tbody>
<tr><td>only one cell</td></tr>
<tr><td>Spanish → English</td><td>Spanish</td><td>English</td><td>12</td></tr>
</tbody></table>`

	courses := ParseCourseList(html, testBase)
	require.Len(t, courses, 1)
	assert.Equal(t, "English", courses[0].ToLang)
}

func TestParseCourseListPrefersCourseUnitsTable(t *testing.T) {
	html := `<table>
<thead><tr><th>Irrelevant</th><th>Stuff</th><th>Here</th></tr></thead>
<tbody><tr><td>a</td><td>b</td><td>c</td></tr></tbody>
</table>
<table>
<thead><tr><th>Course</th><th>From</th><th>To</th><th>Units</th></tr></thead>
<tbody>
<tr><td><a href="defr.html">French → German</a></td><td>French</td><td>German</td><td>8</td></tr>
</tbody></table>`

	courses := ParseCourseList(html, testBase)
	require.Len(t, courses, 1)
	assert.Equal(t, "German", courses[0].ToLang)
}

func TestExtractLanguageCodes(t *testing.T) {
	to, from := ExtractLanguageCodes("https://duolingodata.com/enfes.html")
	assert.Equal(t, "en", to)
	assert.Equal(t, "es", from)

	to, from = ExtractLanguageCodes("https://duolingodata.com/ptfen.html")
	assert.Equal(t, "pt", to)
	assert.Equal(t, "en", from)

	to, from = ExtractLanguageCodes("https://duolingodata.com/notapair")
	assert.Equal(t, "", to)
	assert.Equal(t, "", from)
}
