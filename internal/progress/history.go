package progress

// Snapshot is the single undoable action: a delta applied to one day.
type Snapshot struct {
	Day   string
	Delta int
}

// History is a depth-1 undo buffer. Each push overwrites the previous
// entry; pop atomically returns and clears it.
type History struct {
	last *Snapshot
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Push(day string, delta int) {
	h.last = &Snapshot{Day: day, Delta: delta}
}

// Pop returns the pending snapshot and clears it. The second return is
// false when there is nothing to undo.
func (h *History) Pop() (Snapshot, bool) {
	if h.last == nil {
		return Snapshot{}, false
	}
	s := *h.last
	h.last = nil
	return s, true
}

func (h *History) Peek() (Snapshot, bool) {
	if h.last == nil {
		return Snapshot{}, false
	}
	return *h.last, true
}

func (h *History) Clear() {
	h.last = nil
}
