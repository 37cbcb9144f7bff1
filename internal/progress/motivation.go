package progress

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/mkarslan/wordsprint/internal/dates"
)

// Motivation produces the status banner text for a viewing day. Pure and
// text-only; rendering is the caller's problem.
func Motivation(p Project, s Series, viewing string) string {
	if len(s.Days) == 0 {
		return "Set a project start and end date to begin tracking."
	}

	start := s.Days[0]
	end := s.Days[len(s.Days)-1]
	totalDays := len(s.Days)
	totalWritten := s.Cumulative[len(s.Cumulative)-1]

	if viewing < start {
		daysUntil := dates.DaysBetween(viewing, start)
		return fmt.Sprintf("Sprint starts in %d %s • Goal %s words",
			daysUntil, plural(daysUntil, "day", "days"), humanize.Comma(int64(p.GoalWords)))
	}

	if viewing > end {
		return fmt.Sprintf("Sprint finished • %s words written", humanize.Comma(int64(totalWritten)))
	}

	dayNumber := dates.DaysBetween(start, viewing) + 1
	if dayNumber < 1 {
		dayNumber = 1
	}
	if dayNumber > totalDays {
		dayNumber = totalDays
	}
	actualTotal := s.Cumulative[dayNumber]

	if p.GoalWords <= s.Baseline {
		return fmt.Sprintf("Goal reached! • %s words", humanize.Comma(int64(actualTotal)))
	}

	expected := s.Baseline + s.IdealPerDay*dayNumber
	ideal := s.IdealPerDay
	if ideal < 1 {
		ideal = 1
	}
	aheadDays := float64(actualTotal-expected) / float64(ideal)

	var status string
	switch {
	case s.IdealPerDay == 0:
		status = "Goal reached!"
	case aheadDays > 0.75:
		status = fmt.Sprintf("Ahead by %.1f %s", aheadDays, pluralDays(aheadDays))
	case aheadDays < -0.75:
		behind := math.Abs(aheadDays)
		status = fmt.Sprintf("Behind by %.1f %s", behind, pluralDays(behind))
	default:
		status = "On pace"
	}

	return fmt.Sprintf("Day %d of %d • %s • %s words",
		dayNumber, totalDays, status, humanize.Comma(int64(actualTotal)))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// pluralDays pluralizes a one-decimal day count: anything that displays as
// 1.8 days or more reads as plural.
func pluralDays(v float64) string {
	if v >= 1.75 {
		return "days"
	}
	return "day"
}
