package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Antwohlf/duocalculator/pkg/course"
)

var (
	courseHeaderRe  = []*regexp.Regexp{regexp.MustCompile(`course`), regexp.MustCompile(`name`)}
	fromHeaderRe    = []*regexp.Regexp{regexp.MustCompile(`^from`), regexp.MustCompile(`base`), regexp.MustCompile(`speaker`)}
	toHeaderRe      = []*regexp.Regexp{regexp.MustCompile(`^to`), regexp.MustCompile(`learn`), regexp.MustCompile(`target`)}
	levelHeaderRe   = []*regexp.Regexp{regexp.MustCompile(`cefr`), regexp.MustCompile(`level`)}
	unitsHeaderRe   = []*regexp.Regexp{regexp.MustCompile(`unit`)}
	lessonsHeaderRe = []*regexp.Regexp{regexp.MustCompile(`lesson`)}
	updatedHeaderRe = []*regexp.Regexp{regexp.MustCompile(`updated`), regexp.MustCompile(`refresh`)}

	courseTableRe  = regexp.MustCompile(`(?i)course`)
	unitsTableRe   = regexp.MustCompile(`(?i)units`)
	cefrInTitleRe  = regexp.MustCompile(`(?i)CEFR\s*([A-C][0-3](?:\+|-)?)`)
	nonDigitRe     = regexp.MustCompile(`[^0-9]`)
	langCodePairRe = regexp.MustCompile(`^([a-z]{2,5})f([a-z]{2,5})`)
)

// ParseCourseList extracts the catalog table from the main page into course
// summaries. An unusable page yields an empty slice, never an error; the
// orchestrator decides whether that is fatal.
func ParseCourseList(rawHTML, base string) []course.Summary {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	table := findCourseTable(doc)
	if table == nil {
		return nil
	}

	var headerCells []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headerCells = append(headerCells, strings.ToLower(strings.TrimSpace(th.Text())))
	})

	findIndex := func(matchers []*regexp.Regexp) int {
		for i, text := range headerCells {
			for _, m := range matchers {
				if m.MatchString(text) {
					return i
				}
			}
		}
		return -1
	}

	courseIdx := findIndex(courseHeaderRe)
	fromIdx := findIndex(fromHeaderRe)
	toIdx := findIndex(toHeaderRe)
	levelIdx := findIndex(levelHeaderRe)
	unitsIdx := findIndex(unitsHeaderRe)
	lessonsIdx := findIndex(lessonsHeaderRe)
	updatedIdx := findIndex(updatedHeaderRe)

	minCells := len(headerCells)
	if minCells < 3 {
		minCells = 3
	}

	var courses []course.Summary
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			return
		}

		getCell := func(index, fallback int) *goquery.Selection {
			if index >= 0 && index < cells.Length() {
				return cells.Eq(index)
			}
			if fallback >= 0 && fallback < cells.Length() {
				return cells.Eq(fallback)
			}
			return nil
		}

		toFallback := 0
		if courseIdx >= 0 {
			toFallback = courseIdx
		}
		courseCell := getCell(courseIdx, 0)
		fromCell := getCell(fromIdx, 1)
		toCell := getCell(toIdx, toFallback)

		courseName := cellText(courseCell)
		fromLangRaw := cellText(fromCell)
		toLangRaw := cellText(toCell)

		detailHref := findDetailHref(courseCell)
		if detailHref == "" {
			detailHref = findDetailHref(toCell)
		}
		absoluteHref := resolveHref(detailHref, base)

		toCode, fromCode := "", ""
		if absoluteHref != "" {
			toCode, fromCode = ExtractLanguageCodes(absoluteHref)
		}

		toLang := firstNonEmpty(
			LanguageCodeToName(toCode),
			HumanizeLanguageLabel(toLangRaw),
			HumanizeLanguageLabel(courseName),
		)
		fromLang := firstNonEmpty(
			LanguageCodeToName(fromCode),
			HumanizeLanguageLabel(fromLangRaw),
			HumanizeLanguageLabel(strings.TrimSpace(strings.SplitN(courseName, "→", 2)[0])),
		)

		levelRaw := cellText(getCell(levelIdx, -1))
		levelShort := NormalizeLevel(levelRaw)
		if levelShort == "" {
			if m := cefrInTitleRe.FindStringSubmatch(courseName); m != nil {
				levelShort = strings.ToUpper(m[1])
				levelRaw = "CEFR " + levelShort
			}
		}

		unitsCount := numberFromCell(getCell(unitsIdx, -1))
		lessonsCount := numberFromCell(getCell(lessonsIdx, -1))
		updated := cellText(getCell(updatedIdx, -1))

		key := absoluteHref
		if key == "" {
			key = fallbackKey(fromLang, toLang, levelShort, levelRaw, updated, unitsCount, lessonsCount)
		}

		summary := course.Summary{
			Key:          key,
			Title:        fromLang + " → " + toLang,
			FromLang:     fromLang,
			ToLang:       toLang,
			FromCode:     strPtrOrNil(NormalizeLanguageCode(fromCode)),
			ToCode:       strPtrOrNil(NormalizeLanguageCode(toCode)),
			Level:        strPtrOrNil(levelRaw),
			LevelShort:   strPtrOrNil(levelShort),
			UnitsCount:   unitsCount,
			LessonsCount: lessonsCount,
			Updated:      updated,
			HasDetail:    absoluteHref != "",
		}
		if absoluteHref != "" {
			summary.DetailHref = course.StrPtr(absoluteHref)
		}
		courses = append(courses, summary)
	})

	valid := courses[:0]
	for _, c := range courses {
		if c.Valid() {
			valid = append(valid, c)
		}
	}
	return valid
}

// findCourseTable picks the table whose header mentions both "course" and
// "units"; the first table on the page is the fallback.
func findCourseTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		headerText := tbl.Find("thead").Text()
		if courseTableRe.MatchString(headerText) && unitsTableRe.MatchString(headerText) {
			table = tbl
			return false
		}
		return true
	})
	if table == nil {
		first := doc.Find("table").First()
		if first.Length() > 0 {
			table = first
		}
	}
	return table
}

// ExtractLanguageCodes derives (to, from) codes from a detail URL's filename,
// which follows the fixed pattern <target>f<source>, e.g. enfes.html.
func ExtractLanguageCodes(detailHref string) (to, from string) {
	u, err := url.Parse(detailHref)
	if err != nil {
		return "", ""
	}
	segments := strings.Split(u.Path, "/")
	fileName := segments[len(segments)-1]
	if dot := strings.LastIndex(fileName, "."); dot >= 0 {
		fileName = fileName[:dot]
	}
	if m := langCodePairRe.FindStringSubmatch(strings.ToLower(fileName)); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

func cellText(cell *goquery.Selection) string {
	if cell == nil {
		return ""
	}
	return strings.Join(strings.Fields(cell.Text()), " ")
}

func findDetailHref(cell *goquery.Selection) string {
	if cell == nil {
		return ""
	}
	href, _ := cell.Find(`a[href$=".html"]`).First().Attr("href")
	return href
}

func resolveHref(href, base string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func numberFromCell(cell *goquery.Selection) *int {
	if cell == nil {
		return nil
	}
	digits := nonDigitRe.ReplaceAllString(cell.Text(), "")
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return nil
	}
	return course.IntPtr(n)
}

// fallbackKey builds a synthetic stable key for catalog rows without a
// detail page.
func fallbackKey(fromLang, toLang, levelShort, levelRaw, updated string, units, lessons *int) string {
	variant := firstNonEmpty(levelShort, levelRaw, updated)
	if variant == "" && units != nil {
		variant = strconv.Itoa(*units)
	}
	if variant == "" && lessons != nil {
		variant = strconv.Itoa(*lessons)
	}
	if variant == "" {
		variant = "v1"
	}
	return fmt.Sprintf("fallback:%s::%s::%s",
		strings.ToLower(fromLang), strings.ToLower(toLang), variant)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
