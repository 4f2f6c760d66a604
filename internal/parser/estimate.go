package parser

import (
	"fmt"
	"math"

	"github.com/Antwohlf/duocalculator/pkg/course"
)

// defaultFallbackLessons is the last-resort activities-per-unit average when
// neither the catalog nor the parsed page gives us anything to work with.
const defaultFallbackLessons = 10

// EstimateActivities back-fills units that lack an explicit activity count
// and recomputes totals. The fallback average is chosen in priority order:
// catalog-declared lessons/units ratio, then the average over units that did
// parse with counts, then a global default. Synthetic counts clear the
// activity pattern since it was never observed.
//
// After estimation every retained unit has a positive activity count. When
// parsing recovered no units at all, totals are substituted from the catalog
// counts; this is degraded but never fatal.
func EstimateActivities(result *DetailResult, meta *course.Summary) {
	var metaAverage, computedAverage int

	if meta != nil && meta.LessonsCount != nil && meta.UnitsCount != nil && *meta.UnitsCount > 0 {
		metaAverage = roundedAverage(*meta.LessonsCount, *meta.UnitsCount)
	}
	if result.Totals.Units > 0 && result.Totals.Activities > 0 {
		computedAverage = roundedAverage(result.Totals.Activities, result.Totals.Units)
	}

	fallback := metaAverage
	if fallback == 0 {
		fallback = computedAverage
	}
	if fallback == 0 {
		fallback = defaultFallbackLessons
	}
	result.FallbackLessons = fallback

	for _, section := range result.Sections {
		for _, unit := range section.Units {
			if unit.Activities == nil || *unit.Activities <= 0 {
				unit.Activities = course.IntPtr(fallback)
				unit.ActivityPattern = []int{}
				result.Estimated = true
			}
		}
	}

	if result.Estimated {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Some units missing activity data, using fallback: %d", fallback))
	}

	result.Totals = computeTotals(result.Sections)

	if result.Totals.Units == 0 && meta != nil && meta.UnitsCount != nil {
		result.Totals.Units = *meta.UnitsCount
		result.Warnings = append(result.Warnings, "No sections parsed, using meta.unitsCount")
	}
	if result.Totals.Activities == 0 && meta != nil && meta.LessonsCount != nil {
		result.Totals.Activities = *meta.LessonsCount
		result.Warnings = append(result.Warnings, "No activities parsed, using meta.lessonsCount")
	}
}

// roundedAverage rounds total/count to the nearest integer, floored at 1 so a
// sparse course still counts each unit as at least one activity.
func roundedAverage(total, count int) int {
	avg := int(math.Round(float64(total) / float64(count)))
	if avg < 1 {
		return 1
	}
	return avg
}
