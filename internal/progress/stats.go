package progress

import "github.com/mkarslan/wordsprint/internal/dates"

// Stats are the headline numbers for a viewing day. Behind flags that the
// current required daily rate exceeds the ideal one.
type Stats struct {
	Total      int
	Pct        int
	Remaining  int
	TodayWords int
	DaysLeft   int
	Needed     int
	Behind     bool
}

// ComputeStats derives display statistics from a series as of the viewing
// day.
func ComputeStats(p Project, s Series, viewing string) Stats {
	cut := s.CutoffIndex(viewing)
	total := s.Baseline
	if cut < len(s.Cumulative) {
		total = s.Cumulative[cut]
	}

	pct := 0
	if p.GoalWords > 0 {
		pct = int(float64(total)/float64(maxInt(1, p.GoalWords))*100 + 0.5)
		if pct > 100 {
			pct = 100
		}
	}

	remaining := p.GoalWords - total
	if remaining < 0 {
		remaining = 0
	}

	daysLeft := len(s.Days)
	if len(s.Days) > 0 {
		start := s.Days[0]
		end := s.Days[len(s.Days)-1]
		if viewing >= start {
			clamp := viewing
			if clamp > end {
				clamp = end
			}
			elapsed := dates.DaysBetween(start, clamp) + 1
			if elapsed > len(s.Days) {
				elapsed = len(s.Days)
			}
			daysLeft = len(s.Days) - elapsed
			if daysLeft < 0 {
				daysLeft = 0
			}
		}
	}

	needed := 0
	if remaining > 0 {
		needed = ceilDiv(remaining, maxInt(1, daysLeft))
	}

	return Stats{
		Total:      total,
		Pct:        pct,
		Remaining:  remaining,
		TodayWords: s.WordsOn(viewing),
		DaysLeft:   daysLeft,
		Needed:     needed,
		Behind:     needed > s.IdealPerDay,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
