package progress

// Series is the derived view of a project: per-day words, running totals,
// and the ideal linear pace from baseline to goal. It is recomputed on
// every state change and never persisted.
type Series struct {
	Days []string
	// Daily[i] is the words added on Days[i] (0 for days with no entry).
	Daily []int
	// Cumulative has len(Days)+1 elements: index 0 is the baseline, index
	// i+1 is baseline + sum(Daily[0..i]).
	Cumulative []int
	// Pace parallels Cumulative: the ideal trajectory, capped at the goal.
	Pace []int
	// IdealPerDay is the words per day needed to go from baseline to goal
	// across the full range.
	IdealPerDay     int
	Baseline        int
	RemainingTarget int
}

// ComputeSeries turns a project and its sparse daily totals into the full
// derived series. Deterministic and side-effect free.
func ComputeSeries(p Project, entries Entries) Series {
	days := p.Days()
	baseline := p.BaselineWords
	remaining := p.GoalWords - baseline
	if remaining < 0 {
		remaining = 0
	}

	daily := make([]int, len(days))
	cumulative := make([]int, len(days)+1)
	cumulative[0] = baseline
	for i, d := range days {
		daily[i] = entries[d]
		cumulative[i+1] = cumulative[i] + daily[i]
	}

	idealPerDay := remaining
	if len(days) > 0 {
		idealPerDay = ceilDiv(remaining, len(days))
	}

	pace := make([]int, len(days)+1)
	pace[0] = baseline
	for i := range days {
		projected := baseline + idealPerDay*(i+1)
		if projected > p.GoalWords {
			projected = p.GoalWords
		}
		pace[i+1] = projected
	}

	return Series{
		Days:            days,
		Daily:           daily,
		Cumulative:      cumulative,
		Pace:            pace,
		IdealPerDay:     idealPerDay,
		Baseline:        baseline,
		RemainingTarget: remaining,
	}
}

// WordsOn returns the daily total for the given day, 0 when outside the
// range.
func (s Series) WordsOn(ymd string) int {
	for i, d := range s.Days {
		if d == ymd {
			return s.Daily[i]
		}
	}
	return 0
}

// CutoffIndex returns how much of the cumulative series counts as elapsed
// for the viewing day: 0 before the range, len(Days) after it, otherwise
// the day's position plus one.
func (s Series) CutoffIndex(viewing string) int {
	if len(s.Days) == 0 {
		return 0
	}
	if viewing < s.Days[0] {
		return 0
	}
	if viewing > s.Days[len(s.Days)-1] {
		return len(s.Days)
	}
	for i, d := range s.Days {
		if d == viewing {
			return i + 1
		}
	}
	return 0
}

func ceilDiv(a, b int) int {
	if b < 1 {
		b = 1
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
