package cloud

import "time"

// Project is one owner's project row. HasBaseline is false when the row
// was read from a schema that predates the baseline_words column.
type Project struct {
	ID            string
	Owner         string
	Name          string
	GoalWords     int
	StartDate     string // YYYY-MM-DD
	EndDate       string // YYYY-MM-DD
	BaselineWords int
	HasBaseline   bool
	CreatedAt     time.Time
}

// ProjectFields is the writable subset of a project row. IncludeBaseline
// controls whether baseline_words is part of the write at all; sending it
// against an old schema fails with an error naming the column.
type ProjectFields struct {
	Name            string
	GoalWords       int
	StartDate       string
	EndDate         string
	BaselineWords   int
	IncludeBaseline bool
}

// Event is one append-only ledger row: a signed word-count delta for a
// single day. Rows are never updated or deleted individually; the per-day
// total is the sum of all deltas for that day.
type Event struct {
	ID        string
	ProjectID string
	UserID    string
	Day       string // YYYY-MM-DD
	Delta     int
	CreatedAt time.Time
}
