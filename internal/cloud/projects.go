package cloud

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectByOwner returns the owner's most recently created project, or nil
// when the owner has none. Only one project per owner is ever used.
func (s *Store) ProjectByOwner(ctx context.Context, owner string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		s.projectSelect()+` WHERE owner = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, owner)
	p, err := s.scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("project by owner: %w", err)
	}
	return p, nil
}

// FetchProject returns the project row by id.
func (s *Store) FetchProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, s.projectSelect()+` WHERE id = ?`, id)
	p, err := s.scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", id, err)
	}
	return p, nil
}

// CreateProject inserts a new project row for the owner. When the fields
// include the baseline and the schema lacks the column, the insert fails
// with an error naming baseline_words; the caller decides whether to retry
// without it.
func (s *Store) CreateProject(ctx context.Context, owner string, f ProjectFields) (*Project, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var err error
	if f.IncludeBaseline {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO projects (id, owner, name, goal_words, start_date, end_date, baseline_words, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, owner, f.Name, f.GoalWords, f.StartDate, f.EndDate, f.BaselineWords, now)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO projects (id, owner, name, goal_words, start_date, end_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, owner, f.Name, f.GoalWords, f.StartDate, f.EndDate, now)
	}
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	s.bus.Publish(Change{Kind: ChangeProject, ProjectID: id})
	return s.FetchProject(ctx, id)
}

// UpdateProject writes the project settings. Same baseline contract as
// CreateProject.
func (s *Store) UpdateProject(ctx context.Context, id string, f ProjectFields) error {
	var err error
	if f.IncludeBaseline {
		_, err = s.db.ExecContext(ctx,
			`UPDATE projects SET name = ?, goal_words = ?, start_date = ?, end_date = ?, baseline_words = ? WHERE id = ?`,
			f.Name, f.GoalWords, f.StartDate, f.EndDate, f.BaselineWords, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE projects SET name = ?, goal_words = ?, start_date = ?, end_date = ? WHERE id = ?`,
			f.Name, f.GoalWords, f.StartDate, f.EndDate, id)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	s.bus.Publish(Change{Kind: ChangeProject, ProjectID: id})
	return nil
}

func (s *Store) projectSelect() string {
	if s.supportsBaseline {
		return `SELECT id, owner, name, goal_words, start_date, end_date, baseline_words, created_at FROM projects`
	}
	return `SELECT id, owner, name, goal_words, start_date, end_date, created_at FROM projects`
}

func (s *Store) scanProject(row *sql.Row) (*Project, error) {
	p := &Project{}
	var createdAt string
	var err error
	if s.supportsBaseline {
		err = row.Scan(&p.ID, &p.Owner, &p.Name, &p.GoalWords, &p.StartDate, &p.EndDate, &p.BaselineWords, &createdAt)
		p.HasBaseline = true
	} else {
		err = row.Scan(&p.ID, &p.Owner, &p.Name, &p.GoalWords, &p.StartDate, &p.EndDate, &createdAt)
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}
