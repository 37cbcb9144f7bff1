package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendEvent adds one signed delta to the ledger.
func (s *Store) AppendEvent(ctx context.Context, projectID, userID, day string, delta int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO word_events (id, project_id, user_id, ymd, delta, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), projectID, userID, day, delta, now)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	s.bus.Publish(Change{Kind: ChangeEvents, ProjectID: projectID})
	return nil
}

// ListEvents returns the full ledger for a project ordered by
// (day, created_at) ascending.
func (s *Store) ListEvents(ctx context.Context, projectID string) ([]Event, error) {
	return s.listEvents(ctx,
		`SELECT id, project_id, user_id, ymd, delta, created_at FROM word_events
		 WHERE project_id = ? ORDER BY ymd, created_at, rowid`, projectID)
}

// ListDayEvents returns the ledger rows for one day, insertion-ordered.
func (s *Store) ListDayEvents(ctx context.Context, projectID, day string) ([]Event, error) {
	return s.listEvents(ctx,
		`SELECT id, project_id, user_id, ymd, delta, created_at FROM word_events
		 WHERE project_id = ? AND ymd = ? ORDER BY created_at, rowid`, projectID, day)
}

func (s *Store) listEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var createdAt string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.Day, &e.Delta, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteProjectEvents bulk-deletes the ledger for a project. This is the
// only way events are ever removed, and only a full reset uses it.
func (s *Store) DeleteProjectEvents(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM word_events WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete project events: %w", err)
	}
	s.bus.Publish(Change{Kind: ChangeEvents, ProjectID: projectID})
	return nil
}
