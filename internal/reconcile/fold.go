// Package reconcile keeps a locally edited "total for day" view consistent
// with the append-only remote ledger. It folds ledger events into per-day
// totals, computes the delta needed to move a day's server total to a
// target, and detects concurrent edits from other devices by comparing the
// freshly folded server total against the last one this device saw.
package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/mkarslan/wordsprint/internal/cloud"
	"github.com/mkarslan/wordsprint/internal/progress"
)

// Remote is the ledger backend. cloud.Store satisfies it; tests use fakes.
type Remote interface {
	ProjectByOwner(ctx context.Context, owner string) (*cloud.Project, error)
	FetchProject(ctx context.Context, id string) (*cloud.Project, error)
	CreateProject(ctx context.Context, owner string, f cloud.ProjectFields) (*cloud.Project, error)
	UpdateProject(ctx context.Context, id string, f cloud.ProjectFields) error
	ListEvents(ctx context.Context, projectID string) ([]cloud.Event, error)
	ListDayEvents(ctx context.Context, projectID, day string) ([]cloud.Event, error)
	AppendEvent(ctx context.Context, projectID, userID, day string, delta int) error
	DeleteProjectEvents(ctx context.Context, projectID string) error
}

// ErrProjectSetup means a project row could not be created even after the
// schema-compatibility retry. Not retried automatically.
var ErrProjectSetup = errors.New("unable to create project")

// Fold reduces ledger events to per-day totals. Pure summation, so the
// result is invariant under reordering of the input.
func Fold(events []cloud.Event) progress.Entries {
	acc := make(progress.Entries)
	for _, e := range events {
		acc[e.Day] += e.Delta
	}
	return acc
}

// IsBaselineColumnErr recognizes the error a baseline-aware write gets
// back from a deployment whose projects table predates the baseline_words
// column. String matching is what the wire gives us; the capability is
// remembered for the rest of the session once seen.
func IsBaselineColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "baseline_words")
}
