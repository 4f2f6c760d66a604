package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Antwohlf/duocalculator/pkg/course"
)

var (
	// Heading grammar 1: "Section 2 (11 units) Travel". The unit word inside
	// the parentheses is free text, which is what makes this form work across
	// every localization.
	sectionParenRe = regexp.MustCompile(`^([^\d]{2,})\s*(\d+)\s*\((\d+)\s+[^)]*\)\s*(.*)$`)

	// Heading grammar 2: "Sección 2 - 11 unidades Viajes". Needs the localized
	// unit-word alternation to anchor the second number.
	sectionAltRe = regexp.MustCompile(
		`(?i)^([^\d]{2,})\s*(\d+)\s+[^\d]*?(\d+)\s+(?:` + strings.Join(unitWords, "|") + `)\s*(.*)$`)

	unitLineRe    = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(.+)$`)
	bulletRe      = regexp.MustCompile(`^[-–—•*]+\s*`)
	integerRe     = regexp.MustCompile(`\d+`)
	cefrStripRe   = regexp.MustCompile(`(?i)CEFR\s*[A-C][0-3](?:\+|-)?`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
	headingTrimRe = regexp.MustCompile(`[:\s]+$`)
	titleLeadRe   = regexp.MustCompile(`^[\s:–-]+`)
)

// DetailResult holds the parsed section/unit tree of one detail page plus
// totals and any degradation warnings. Estimated is set by the fallback
// estimator when at least one unit's activity count had to be synthesized.
type DetailResult struct {
	Sections        []*course.SectionRecord
	Totals          course.Totals
	Warnings        []string
	FallbackLessons int
	Estimated       bool
}

// ParseCourseDetail walks the normalized line text of a detail page with a
// two-state machine (outside any section / inside the current section),
// recognizing headings via the two grammars above and unit lines via
// "number count title". Unrecognized lines are ignored: malformed input
// degrades to fewer sections, it never errors.
//
// meta is augmented in place when a CEFR level is found in the body that the
// catalog row lacked.
func ParseCourseDetail(rawHTML string, meta *course.Summary) *DetailResult {
	result := &DetailResult{}

	var currentSection *course.SectionRecord
	var currentUnit *course.UnitRecord

	for _, rawLine := range NormalizeHTML(rawHTML) {
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" {
			continue
		}
		normalized := bulletRe.ReplaceAllString(trimmed, "")

		m := sectionParenRe.FindStringSubmatch(normalized)
		if m == nil {
			m = sectionAltRe.FindStringSubmatch(normalized)
		}
		if m != nil {
			headingClean := headingTrimRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			sectionNumber, _ := strconv.Atoi(m[2])
			unitCount, _ := strconv.Atoi(m[3])

			originalTitle := titleLeadRe.ReplaceAllString(strings.TrimSpace(m[4]), "")
			if originalTitle == "" {
				originalTitle = headingClean
			}
			// Only an explicit CEFR code counts as a level here; headings
			// are otherwise free text in the course's own language.
			levelInTitle := ""
			if lm := cefrLevelRe.FindStringSubmatch(originalTitle); lm != nil {
				levelInTitle = strings.ToUpper(lm[1])
			}
			cleanedTitle := strings.TrimSpace(
				multiSpaceRe.ReplaceAllString(cefrStripRe.ReplaceAllString(originalTitle, ""), " "))
			if cleanedTitle == "" {
				cleanedTitle = originalTitle
			}

			currentSection = &course.SectionRecord{
				SectionIndex: sectionNumber,
				UnitCount:    unitCount,
				Title:        cleanedTitle,
				RawTitle:     originalTitle,
				CEFR:         levelInTitle,
				Units:        []*course.UnitRecord{},
			}
			result.Sections = append(result.Sections, currentSection)
			currentUnit = nil

			if levelInTitle != "" && meta != nil && meta.LevelShort == nil {
				meta.LevelShort = course.StrPtr(levelInTitle)
				meta.Level = course.StrPtr("CEFR " + levelInTitle)
			}
			continue
		}

		if um := unitLineRe.FindStringSubmatch(normalized); um != nil && currentSection != nil {
			unitNumber, _ := strconv.Atoi(um[1])
			activityCount, _ := strconv.Atoi(um[2])
			currentUnit = &course.UnitRecord{
				SectionIndex:    currentSection.SectionIndex,
				UnitIndex:       unitNumber,
				Title:           strings.TrimSpace(um[3]),
				ActivityPattern: []int{},
				Activities:      course.IntPtr(activityCount),
			}
			currentSection.Units = append(currentSection.Units, currentUnit)
			continue
		}

		// Per-unit activity breakdown: a comma-separated run of integers.
		// The breakdown is opaque auxiliary data; we store the integers and
		// their sum without assuming activity-type semantics.
		if currentUnit != nil && strings.Contains(trimmed, ",") && integerRe.MatchString(trimmed) {
			var numbers []int
			for _, digits := range integerRe.FindAllString(trimmed, -1) {
				if n, err := strconv.Atoi(digits); err == nil {
					numbers = append(numbers, n)
				}
			}
			if len(numbers) > 0 {
				sum := 0
				for _, n := range numbers {
					sum += n
				}
				currentUnit.ActivityPattern = numbers
				currentUnit.Activities = course.IntPtr(sum)
			}
		}
	}

	// Sections that never produced a unit are noise (page footers, level
	// descriptions) and are dropped.
	filtered := result.Sections[:0]
	for _, s := range result.Sections {
		if len(s.Units) > 0 {
			filtered = append(filtered, s)
		}
	}
	result.Sections = filtered
	result.Totals = computeTotals(result.Sections)

	return result
}

func computeTotals(sections []*course.SectionRecord) course.Totals {
	totals := course.Totals{Sections: len(sections)}
	for _, s := range sections {
		for _, u := range s.Units {
			totals.Units++
			if u.Activities != nil {
				totals.Activities += *u.Activities
			}
		}
	}
	return totals
}
