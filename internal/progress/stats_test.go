package progress

import "testing"

func TestComputeStatsMidSprint(t *testing.T) {
	p := novemberProject() // goal 300, Nov 1-3
	entries := Entries{"2025-11-01": 100, "2025-11-02": 50}
	s := ComputeSeries(p, entries)

	st := ComputeStats(p, s, "2025-11-02")
	if st.Total != 150 {
		t.Errorf("total = %d, want 150", st.Total)
	}
	if st.Pct != 50 {
		t.Errorf("pct = %d, want 50", st.Pct)
	}
	if st.Remaining != 150 {
		t.Errorf("remaining = %d, want 150", st.Remaining)
	}
	if st.TodayWords != 50 {
		t.Errorf("todayWords = %d, want 50", st.TodayWords)
	}
	if st.DaysLeft != 1 {
		t.Errorf("daysLeft = %d, want 1", st.DaysLeft)
	}
	if st.Needed != 150 {
		t.Errorf("needed = %d, want 150", st.Needed)
	}
	if !st.Behind {
		t.Error("expected Behind: needed 150 > ideal 100")
	}
}

func TestComputeStatsBeforeRange(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 100})
	st := ComputeStats(p, s, "2025-10-20")
	if st.Total != 0 {
		t.Errorf("total before range = %d, want baseline 0", st.Total)
	}
	if st.DaysLeft != 3 {
		t.Errorf("daysLeft before range = %d, want full range", st.DaysLeft)
	}
}

func TestComputeStatsAfterRange(t *testing.T) {
	p := novemberProject()
	s := ComputeSeries(p, Entries{"2025-11-01": 300})
	st := ComputeStats(p, s, "2025-12-01")
	if st.Total != 300 {
		t.Errorf("total after range = %d, want 300", st.Total)
	}
	if st.DaysLeft != 0 {
		t.Errorf("daysLeft after range = %d, want 0", st.DaysLeft)
	}
	if st.Needed != 0 {
		t.Errorf("needed = %d, want 0 once remaining is 0", st.Needed)
	}
}

func TestComputeStatsZeroGoal(t *testing.T) {
	p := Project{GoalWords: 0, StartDate: "2025-11-01", EndDate: "2025-11-03"}
	s := ComputeSeries(p, Entries{"2025-11-01": 10})
	st := ComputeStats(p, s, "2025-11-01")
	if st.Pct != 0 {
		t.Errorf("pct with zero goal = %d, want 0", st.Pct)
	}
}

func TestComputeStatsPctCapped(t *testing.T) {
	p := Project{GoalWords: 100, StartDate: "2025-11-01", EndDate: "2025-11-03"}
	s := ComputeSeries(p, Entries{"2025-11-01": 250})
	st := ComputeStats(p, s, "2025-11-02")
	if st.Pct != 100 {
		t.Errorf("pct = %d, want capped at 100", st.Pct)
	}
	if st.Remaining != 0 {
		t.Errorf("remaining = %d, want clamped 0", st.Remaining)
	}
}

func TestComputeStatsBaselineCounts(t *testing.T) {
	p := Project{GoalWords: 1000, BaselineWords: 400, StartDate: "2025-11-01", EndDate: "2025-11-10"}
	s := ComputeSeries(p, Entries{"2025-11-01": 100})
	st := ComputeStats(p, s, "2025-11-01")
	if st.Total != 500 {
		t.Errorf("total = %d, want baseline+daily = 500", st.Total)
	}
}
