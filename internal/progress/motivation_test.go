package progress

import (
	"strings"
	"testing"
)

func TestMotivationBeforeStart(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, nil)
	got := Motivation(p, s, "2025-10-29")
	if !strings.HasPrefix(got, "Sprint starts in 3 days") {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "pace") || strings.Contains(got, "Ahead") || strings.Contains(got, "Behind") {
		t.Fatalf("pre-start banner must not report pace: %q", got)
	}
}

func TestMotivationBeforeStartSingular(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, nil)
	got := Motivation(p, s, "2025-10-31")
	if !strings.HasPrefix(got, "Sprint starts in 1 day •") {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationAfterEnd(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 120, "2025-11-02": 80})
	got := Motivation(p, s, "2025-12-05")
	if got != "Sprint finished • 200 words written" {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationGoalMetByBaseline(t *testing.T) {
	p := Project{GoalWords: 100, BaselineWords: 150, StartDate: "2025-11-01", EndDate: "2025-11-03"}
	s := ComputeSeries(p, nil)
	got := Motivation(p, s, "2025-11-02")
	if !strings.HasPrefix(got, "Goal reached!") {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationOnPace(t *testing.T) {
	p := novemberProject() // ideal 100/day
	s := ComputeSeries(p, Entries{"2025-11-01": 100})
	got := Motivation(p, s, "2025-11-01")
	if got != "Day 1 of 3 • On pace • 100 words" {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationAhead(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 220})
	got := Motivation(p, s, "2025-11-01")
	// 220 written vs 100 expected: 1.2 days ahead, singular below 1.75.
	if got != "Day 1 of 3 • Ahead by 1.2 day • 220 words" {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationAheadPlural(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 280})
	got := Motivation(p, s, "2025-11-01")
	if got != "Day 1 of 3 • Ahead by 1.8 days • 280 words" {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationBehind(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 10})
	got := Motivation(p, s, "2025-11-02")
	// 10 written vs 200 expected: 1.9 days behind.
	if got != "Day 2 of 3 • Behind by 1.9 days • 10 words" {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationEmptyRange(t *testing.T) {
	p := Project{GoalWords: 100, StartDate: "2025-11-10", EndDate: "2025-11-01"}
	s := ComputeSeries(p, nil)
	got := Motivation(p, s, "2025-11-05")
	if !strings.Contains(got, "start and end date") {
		t.Fatalf("got %q", got)
	}
}

func TestMotivationFormatsThousands(t *testing.T) {
	p := Project{GoalWords: 50000, StartDate: "2025-11-01", EndDate: "2025-11-30"}
	s := ComputeSeries(p, nil)
	got := Motivation(p, s, "2025-10-01")
	if !strings.Contains(got, "50,000") {
		t.Fatalf("expected comma-grouped goal, got %q", got)
	}
}
