package session

import (
	"sync"
	"time"
)

// scheduler coalesces rapid edits to the same day into one sync. Each
// day owns at most one pending timer; scheduling again restarts it, so
// only the final total within the window is pushed.
type scheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	fire   func(day string)
}

func newScheduler(delay time.Duration, fire func(day string)) *scheduler {
	return &scheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Schedule arms (or re-arms) the timer for a day.
func (s *scheduler) Schedule(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[day]; ok {
		t.Stop()
	}
	s.timers[day] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, day)
		s.mu.Unlock()
		s.fire(day)
	})
}

// Cancel drops the pending sync for a day, if any.
func (s *scheduler) Cancel(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[day]; ok {
		t.Stop()
		delete(s.timers, day)
	}
}

// CancelAll drops every pending sync. Used on mode teardown, where the
// target ledger is about to stop being ours.
func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for day, t := range s.timers {
		t.Stop()
		delete(s.timers, day)
	}
}

// Flush fires every pending sync immediately. Used on shutdown so a
// just-typed total is not lost to the debounce window.
func (s *scheduler) Flush() {
	s.mu.Lock()
	days := make([]string, 0, len(s.timers))
	for day, t := range s.timers {
		t.Stop()
		delete(s.timers, day)
		days = append(days, day)
	}
	s.mu.Unlock()
	for _, day := range days {
		s.fire(day)
	}
}

// Pending reports whether a sync is queued for the day.
func (s *scheduler) Pending(day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[day]
	return ok
}
