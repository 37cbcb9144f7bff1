package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mkarslan/wordsprint/internal/cloud"
	"github.com/mkarslan/wordsprint/internal/progress"
)

// ConflictResolver decides a detected concurrent edit: return true to
// overwrite the server with the local target, false to keep the server's
// value. The default declines, which is the safe path.
type ConflictResolver func(day string, serverTotal, target int) bool

// SyncResult reports what a day reconciliation did. When Reverted is set
// the caller must replace its local entry for the day with ServerTotal.
type SyncResult struct {
	Day         string
	ServerTotal int
	Written     bool
	Reverted    bool
}

// Reconciler converges local day totals onto the remote ledger for one
// project. It remembers, per day, the last server total this device saw
// (the snapshot); a mismatch between that and a fresh fold means another
// device wrote in between.
type Reconciler struct {
	remote Remote
	log    *slog.Logger

	resolve ConflictResolver
	warn    func(msg string)

	mu               sync.Mutex
	projectID        string
	userID           string
	snapshot         progress.Entries
	supportsBaseline bool
	warned           bool
}

type Option func(*Reconciler)

func WithConflictResolver(r ConflictResolver) Option {
	return func(rc *Reconciler) { rc.resolve = r }
}

// WithWarnFunc sets the sink for the one-time schema warning.
func WithWarnFunc(f func(string)) Option {
	return func(rc *Reconciler) { rc.warn = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(rc *Reconciler) { rc.log = l }
}

func New(remote Remote, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:           remote,
		log:              slog.New(slog.DiscardHandler),
		resolve:          func(string, int, int) bool { return false },
		warn:             func(string) {},
		snapshot:         progress.Entries{},
		supportsBaseline: true,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FindOrCreateProject resolves the owner's single project row, creating
// one from the local project when none exists. Creation retries exactly
// once without the baseline field if the schema rejects it.
func (r *Reconciler) FindOrCreateProject(ctx context.Context, owner string, local progress.Project) (*cloud.Project, error) {
	p, err := r.remote.ProjectByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if p != nil {
		r.noteBaselineSupport(p.HasBaseline)
		r.bind(p.ID, owner)
		return p, nil
	}

	include := r.SupportsBaseline()
	for attempt := 0; attempt < 2; attempt++ {
		created, err := r.remote.CreateProject(ctx, owner, r.projectFields(local, include))
		if err == nil {
			r.noteBaselineSupport(created.HasBaseline)
			r.bind(created.ID, owner)
			return created, nil
		}
		if include && IsBaselineColumnErr(err) {
			r.degradeBaseline()
			include = false
			continue
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return nil, ErrProjectSetup
}

// FetchProject re-reads the bound project row.
func (r *Reconciler) FetchProject(ctx context.Context) (*cloud.Project, error) {
	r.mu.Lock()
	id := r.projectID
	r.mu.Unlock()
	if id == "" {
		return nil, fmt.Errorf("no project bound")
	}
	p, err := r.remote.FetchProject(ctx, id)
	if err != nil {
		return nil, err
	}
	r.noteBaselineSupport(p.HasBaseline)
	return p, nil
}

// LoadEntries fetches the full ledger, folds it, and resets the snapshot
// wholesale. The returned map is the caller's new entries state; a fold
// always replaces, never merges.
func (r *Reconciler) LoadEntries(ctx context.Context) (progress.Entries, error) {
	r.mu.Lock()
	id := r.projectID
	r.mu.Unlock()
	events, err := r.remote.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	entries := Fold(events)
	r.mu.Lock()
	r.snapshot = entries.Clone()
	r.mu.Unlock()
	return entries, nil
}

// AppendDelta writes one signed delta for a day. The caller has already
// applied the delta locally (optimistically); on failure it should re-fold
// via LoadEntries rather than trust the optimistic value.
func (r *Reconciler) AppendDelta(ctx context.Context, day string, delta int) error {
	r.mu.Lock()
	projectID, userID := r.projectID, r.userID
	r.mu.Unlock()
	return r.remote.AppendEvent(ctx, projectID, userID, day, delta)
}

// BumpSnapshot shifts the remembered server total for a day after a
// direct append succeeded outside SyncDayTotal (add-words, undo).
func (r *Reconciler) BumpSnapshot(day string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshot[day]; ok {
		r.snapshot[day] += delta
	}
}

// SyncDayTotal converges one day's server total onto target.
//
// The server is re-read first; if its total differs from expectedBase and
// force is unset, another device edited the day concurrently. The resolver
// chooses: overriding proceeds with the write, declining resets the
// snapshot to the server total and reports Reverted so the caller can
// replace its local entry. When no write is needed the snapshot simply
// advances. Any remote failure leaves all state untouched.
func (r *Reconciler) SyncDayTotal(ctx context.Context, day string, expectedBase, target int, force bool) (SyncResult, error) {
	r.mu.Lock()
	projectID := r.projectID
	r.mu.Unlock()

	events, err := r.remote.ListDayEvents(ctx, projectID, day)
	if err != nil {
		return SyncResult{Day: day}, fmt.Errorf("sync day %s: %w", day, err)
	}
	serverTotal := Fold(events)[day]

	if !force && serverTotal != expectedBase {
		r.log.Warn("concurrent edit detected",
			"day", day, "server", serverTotal, "expected", expectedBase, "target", target)
		if !r.resolve(day, serverTotal, target) {
			r.mu.Lock()
			r.snapshot[day] = serverTotal
			r.mu.Unlock()
			return SyncResult{Day: day, ServerTotal: serverTotal, Reverted: true}, nil
		}
	}

	delta := target - serverTotal
	if delta == 0 {
		r.mu.Lock()
		r.snapshot[day] = target
		r.mu.Unlock()
		return SyncResult{Day: day, ServerTotal: serverTotal}, nil
	}

	if err := r.AppendDelta(ctx, day, delta); err != nil {
		return SyncResult{Day: day, ServerTotal: serverTotal}, fmt.Errorf("sync day %s: %w", day, err)
	}
	r.mu.Lock()
	r.snapshot[day] = target
	r.mu.Unlock()
	return SyncResult{Day: day, ServerTotal: serverTotal, Written: true}, nil
}

// SyncSettings pushes the project settings, retrying exactly once without
// the baseline field when the schema rejects it.
func (r *Reconciler) SyncSettings(ctx context.Context, p progress.Project) error {
	r.mu.Lock()
	id := r.projectID
	r.mu.Unlock()
	if id == "" {
		return nil
	}

	include := r.SupportsBaseline()
	for attempt := 0; attempt < 2; attempt++ {
		err := r.remote.UpdateProject(ctx, id, r.projectFields(p, include))
		if err == nil {
			return nil
		}
		if include && IsBaselineColumnErr(err) {
			r.degradeBaseline()
			include = false
			continue
		}
		return fmt.Errorf("sync settings: %w", err)
	}
	return nil
}

// ImportAll overwrites the remote dataset with an imported one: one
// settings push, then a forced reconciliation for every day that appears
// in either the prior server snapshot or the import. Force bypasses the
// conflict check; an import explicitly intends to overwrite.
func (r *Reconciler) ImportAll(ctx context.Context, p progress.Project, entries progress.Entries) error {
	if err := r.SyncSettings(ctx, p); err != nil {
		return err
	}

	r.mu.Lock()
	prior := r.snapshot.Clone()
	r.mu.Unlock()

	days := make(map[string]struct{}, len(prior)+len(entries))
	for d := range prior {
		days[d] = struct{}{}
	}
	for d := range entries {
		days[d] = struct{}{}
	}
	ordered := make([]string, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	for _, day := range ordered {
		if _, err := r.SyncDayTotal(ctx, day, prior[day], entries[day], true); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.snapshot = entries.Clone()
	r.mu.Unlock()
	return nil
}

// ResetLedger bulk-deletes every event for the project and pushes the
// (reset) settings. Used only by a full project reset.
func (r *Reconciler) ResetLedger(ctx context.Context, p progress.Project) error {
	r.mu.Lock()
	id := r.projectID
	r.snapshot = progress.Entries{}
	r.mu.Unlock()
	if id == "" {
		return nil
	}
	if err := r.remote.DeleteProjectEvents(ctx, id); err != nil {
		return err
	}
	return r.SyncSettings(ctx, p)
}

func (r *Reconciler) SupportsBaseline() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.supportsBaseline
}

// SnapshotDay returns the last server total seen for a day (0 if never).
func (r *Reconciler) SnapshotDay(day string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot[day]
}

// Snapshot returns a copy of the remembered server totals.
func (r *Reconciler) Snapshot() progress.Entries {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone()
}

func (r *Reconciler) bind(projectID, userID string) {
	r.mu.Lock()
	r.projectID = projectID
	r.userID = userID
	r.mu.Unlock()
}

// ProjectID returns the bound project id, empty before FindOrCreateProject.
func (r *Reconciler) ProjectID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projectID
}

func (r *Reconciler) noteBaselineSupport(has bool) {
	if has {
		r.mu.Lock()
		r.supportsBaseline = true
		r.mu.Unlock()
		return
	}
	r.degradeBaseline()
}

// degradeBaseline permanently (for this session) stops sending the
// baseline field and warns the user once. Baseline behaves as local-only
// from here on; this must never be treated as a failure.
func (r *Reconciler) degradeBaseline() {
	r.mu.Lock()
	if !r.supportsBaseline {
		r.mu.Unlock()
		return
	}
	r.supportsBaseline = false
	alreadyWarned := r.warned
	r.warned = true
	r.mu.Unlock()

	r.log.Warn("remote schema lacks baseline_words; keeping baseline locally")
	if !alreadyWarned {
		r.warn("Cloud schema outdated; keeping baseline locally.")
	}
}

func (r *Reconciler) projectFields(p progress.Project, includeBaseline bool) cloud.ProjectFields {
	return cloud.ProjectFields{
		Name:            p.Name,
		GoalWords:       p.GoalWords,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		BaselineWords:   p.BaselineWords,
		IncludeBaseline: includeBaseline,
	}
}
