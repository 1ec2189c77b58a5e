package timetable

import (
	"fmt"
	"regexp"
)

// PeriodsPerDay is fixed for every class: seven teaching periods.
const PeriodsPerDay = 7

// Span holds one period's bounds as zero-padded HH:MM strings.
type Span struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BuildPeriodSpans walks the seven periods of a teaching day from the given
// start time. After emitting period breakAfter (1-based), the running clock
// advances by breakMinutes before the next period starts. It returns the
// spans plus the end-of-day time.
func BuildPeriodSpans(startHH, startMM, periodMinutes, breakAfter, breakMinutes int) ([PeriodsPerDay]Span, string) {
	var spans [PeriodsPerDay]Span
	cur := startHH*60 + startMM
	for i := 1; i <= PeriodsPerDay; i++ {
		end := cur + periodMinutes
		spans[i-1] = Span{Start: toHHMM(cur), End: toHHMM(end)}
		cur = end
		if i == breakAfter {
			cur += breakMinutes
		}
	}
	return spans, toHHMM(cur)
}

// Early grades take their break one period sooner. The digit alternatives
// must not be followed by another digit so "Grade 10" does not read as
// "Grade 1", while section suffixes like "Grade 2A" still match.
var earlyGradePattern = regexp.MustCompile(`(?i)kg\s*[1-3]($|\D)|grade\s*(one|two|three|[1-3]($|\D))`)

// BreakAfterIndex returns the 1-based period index after which the break
// falls: 3 for KG1-KG3 and Grade 1-3 class names, 4 for everyone else.
func BreakAfterIndex(className string) int {
	if earlyGradePattern.MatchString(className) {
		return 3
	}
	return 4
}

func toHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
