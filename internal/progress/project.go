// Package progress computes writing-progress series and statistics from a
// project definition and sparse per-day word totals. Everything here is a
// pure function of its inputs; persistence and syncing live elsewhere.
package progress

import (
	"fmt"
	"time"

	"github.com/mkarslan/wordsprint/internal/dates"
)

// Project is a writing sprint: a word-count goal over an inclusive day
// range, plus the words already written before tracking began.
type Project struct {
	Name          string `json:"name"`
	GoalWords     int    `json:"goalWords"`
	StartDate     string `json:"startDate"` // YYYY-MM-DD
	EndDate       string `json:"endDate"`   // YYYY-MM-DD
	BaselineWords int    `json:"baselineWords"`
}

// Entries maps a calendar day to the total words written that day.
// The value is a daily total, not a delta.
type Entries map[string]int

// DefaultProject returns a November sprint for the current year with the
// classic 50k goal.
func DefaultProject() Project {
	year := time.Now().UTC().Year()
	return Project{
		Name:      fmt.Sprintf("NaNo %d", year),
		GoalWords: 50000,
		StartDate: fmt.Sprintf("%d-11-01", year),
		EndDate:   fmt.Sprintf("%d-11-30", year),
	}
}

// Days returns every day in the project range, empty when the end precedes
// the start.
func (p Project) Days() []string {
	return dates.DatesInRange(p.StartDate, p.EndDate)
}

// InRange reports whether the day falls inside the project window.
func (p Project) InRange(ymd string) bool {
	return ymd >= p.StartDate && ymd <= p.EndDate && dates.Valid(ymd)
}

// Clone returns a copy of the entries map.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
