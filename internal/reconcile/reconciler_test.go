package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mkarslan/wordsprint/internal/cloud"
	"github.com/mkarslan/wordsprint/internal/progress"
)

// fakeRemote is an in-memory Remote with switchable failure modes and a
// simulated legacy schema.
type fakeRemote struct {
	mu             sync.Mutex
	project        *cloud.Project
	events         []cloud.Event
	hasBaselineCol bool

	failList   error
	failAppend error
	failUpdate error
	failCreate error

	appends int
	updates int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{hasBaselineCol: true}
}

func (f *fakeRemote) ProjectByOwner(_ context.Context, owner string) (*cloud.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.project == nil || f.project.Owner != owner {
		return nil, nil
	}
	p := *f.project
	p.HasBaseline = f.hasBaselineCol
	return &p, nil
}

func (f *fakeRemote) FetchProject(_ context.Context, id string) (*cloud.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.project == nil || f.project.ID != id {
		return nil, errors.New("not found")
	}
	p := *f.project
	p.HasBaseline = f.hasBaselineCol
	return &p, nil
}

func (f *fakeRemote) CreateProject(_ context.Context, owner string, fl cloud.ProjectFields) (*cloud.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	if fl.IncludeBaseline && !f.hasBaselineCol {
		return nil, errors.New("table projects has no column named baseline_words")
	}
	f.project = &cloud.Project{
		ID: "proj-1", Owner: owner, Name: fl.Name, GoalWords: fl.GoalWords,
		StartDate: fl.StartDate, EndDate: fl.EndDate,
		HasBaseline: f.hasBaselineCol, CreatedAt: time.Now(),
	}
	if fl.IncludeBaseline {
		f.project.BaselineWords = fl.BaselineWords
	}
	p := *f.project
	return &p, nil
}

func (f *fakeRemote) UpdateProject(_ context.Context, id string, fl cloud.ProjectFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if fl.IncludeBaseline && !f.hasBaselineCol {
		return errors.New("no such column: baseline_words")
	}
	f.updates++
	if f.project != nil && f.project.ID == id {
		f.project.Name = fl.Name
		f.project.GoalWords = fl.GoalWords
		f.project.StartDate = fl.StartDate
		f.project.EndDate = fl.EndDate
		if fl.IncludeBaseline {
			f.project.BaselineWords = fl.BaselineWords
		}
	}
	return nil
}

func (f *fakeRemote) ListEvents(_ context.Context, projectID string) ([]cloud.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []cloud.Event
	for _, e := range f.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRemote) ListDayEvents(_ context.Context, projectID, day string) ([]cloud.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []cloud.Event
	for _, e := range f.events {
		if e.ProjectID == projectID && e.Day == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRemote) AppendEvent(_ context.Context, projectID, userID, day string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return f.failAppend
	}
	f.appends++
	f.events = append(f.events, cloud.Event{
		ID: fmt.Sprintf("ev-%d", len(f.events)), ProjectID: projectID,
		UserID: userID, Day: day, Delta: delta, CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeRemote) DeleteProjectEvents(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []cloud.Event
	for _, e := range f.events {
		if e.ProjectID != projectID {
			kept = append(kept, e)
		}
	}
	f.events = kept
	return nil
}

func (f *fakeRemote) seed(day string, deltas ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range deltas {
		f.events = append(f.events, cloud.Event{
			ID: fmt.Sprintf("ev-%d", len(f.events)), ProjectID: "proj-1",
			UserID: "user-1", Day: day, Delta: d, CreatedAt: time.Now(),
		})
	}
}

func testProject() progress.Project {
	return progress.Project{
		Name: "NaNo 2025", GoalWords: 50000,
		StartDate: "2025-11-01", EndDate: "2025-11-30", BaselineWords: 500,
	}
}

func boundReconciler(t *testing.T, f *fakeRemote, opts ...Option) *Reconciler {
	t.Helper()
	r := New(f, opts...)
	if _, err := r.FindOrCreateProject(context.Background(), "user-1", testProject()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return r
}

// ============================================================
// Fold
// ============================================================

func TestFoldSumsPerDay(t *testing.T) {
	events := []cloud.Event{
		{Day: "2025-11-01", Delta: 300},
		{Day: "2025-11-02", Delta: 500},
		{Day: "2025-11-01", Delta: -100},
	}
	got := Fold(events)
	if got["2025-11-01"] != 200 || got["2025-11-02"] != 500 {
		t.Fatalf("unexpected fold: %v", got)
	}
}

func TestFoldOrderInvariant(t *testing.T) {
	events := []cloud.Event{
		{Day: "2025-11-01", Delta: 300},
		{Day: "2025-11-01", Delta: -100},
		{Day: "2025-11-02", Delta: 500},
		{Day: "2025-11-03", Delta: 42},
	}
	want := Fold(events)

	// Rotate through every cyclic permutation; totals must not move.
	for shift := 1; shift < len(events); shift++ {
		rotated := append(append([]cloud.Event{}, events[shift:]...), events[:shift]...)
		got := Fold(rotated)
		for day, total := range want {
			if got[day] != total {
				t.Fatalf("shift %d: fold[%s] = %d, want %d", shift, day, got[day], total)
			}
		}
	}
}

func TestFoldEmpty(t *testing.T) {
	if got := Fold(nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

// ============================================================
// Project binding
// ============================================================

func TestFindOrCreateProjectCreates(t *testing.T) {
	f := newFakeRemote()
	r := New(f)
	p, err := r.FindOrCreateProject(context.Background(), "user-1", testProject())
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Owner != "user-1" {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.BaselineWords != 500 {
		t.Fatalf("baseline not written: %+v", p)
	}
	if r.ProjectID() != p.ID {
		t.Fatal("reconciler not bound to created project")
	}
}

func TestFindOrCreateProjectFindsExisting(t *testing.T) {
	f := newFakeRemote()
	r := New(f)
	ctx := context.Background()
	first, _ := r.FindOrCreateProject(ctx, "user-1", testProject())

	r2 := New(f)
	second, err := r2.FindOrCreateProject(ctx, "user-1", testProject())
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatal("should reuse the existing row")
	}
}

func TestFindOrCreateProjectLegacySchema(t *testing.T) {
	f := newFakeRemote()
	f.hasBaselineCol = false

	var warnings []string
	r := New(f, WithWarnFunc(func(m string) { warnings = append(warnings, m) }))

	p, err := r.FindOrCreateProject(context.Background(), "user-1", testProject())
	if err != nil {
		t.Fatalf("creation should succeed via the retry: %v", err)
	}
	if p.BaselineWords != 0 {
		t.Fatalf("baseline should have been omitted: %+v", p)
	}
	if r.SupportsBaseline() {
		t.Fatal("baseline support should be degraded for the session")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", warnings)
	}
}

func TestFindOrCreateProjectFatal(t *testing.T) {
	f := newFakeRemote()
	f.failCreate = errors.New("boom")
	r := New(f)
	if _, err := r.FindOrCreateProject(context.Background(), "user-1", testProject()); err == nil {
		t.Fatal("expected error")
	}
}

// ============================================================
// SyncDayTotal
// ============================================================

func TestSyncDayTotalAppendsDelta(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	f.seed("2025-11-01", 100)

	res, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Written || res.ServerTotal != 100 {
		t.Fatalf("unexpected result: %+v", res)
	}
	entries, _ := r.LoadEntries(context.Background())
	if entries["2025-11-01"] != 150 {
		t.Fatalf("server total = %d, want 150", entries["2025-11-01"])
	}
}

func TestSyncDayTotalIdempotentOnceConverged(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	f.seed("2025-11-01", 100)
	ctx := context.Background()

	if _, err := r.SyncDayTotal(ctx, "2025-11-01", 100, 150, false); err != nil {
		t.Fatal(err)
	}
	before := f.appends
	res, err := r.SyncDayTotal(ctx, "2025-11-01", 150, 150, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Written {
		t.Fatal("converged sync must not write")
	}
	if f.appends != before {
		t.Fatal("zero delta appended an event")
	}
	// Net appended delta equals target minus initial server total.
	net := 0
	for _, e := range f.events {
		if e.Day == "2025-11-01" {
			net += e.Delta
		}
	}
	if net != 150 {
		t.Fatalf("net ledger total %d, want 150", net)
	}
}

func TestSyncDayTotalConflictDeclined(t *testing.T) {
	f := newFakeRemote()
	resolved := 0
	r := boundReconciler(t, f, WithConflictResolver(func(day string, server, target int) bool {
		resolved++
		if server != 200 || target != 150 {
			t.Errorf("resolver saw server=%d target=%d", server, target)
		}
		return false
	}))
	f.seed("2025-11-01", 200) // another device wrote 200; we expected 100

	res, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, false)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != 1 {
		t.Fatalf("resolver called %d times", resolved)
	}
	if !res.Reverted || res.ServerTotal != 200 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.appends != 0 {
		t.Fatal("declined conflict must not write")
	}
	if r.SnapshotDay("2025-11-01") != 200 {
		t.Fatalf("snapshot = %d, want server total", r.SnapshotDay("2025-11-01"))
	}
}

func TestSyncDayTotalConflictOverridden(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f, WithConflictResolver(func(string, int, int) bool { return true }))
	f.seed("2025-11-01", 200)

	res, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Written {
		t.Fatal("override should write")
	}
	entries, _ := r.LoadEntries(context.Background())
	if entries["2025-11-01"] != 150 {
		t.Fatalf("server total = %d, want 150", entries["2025-11-01"])
	}
}

func TestSyncDayTotalForceBypassesConflict(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f, WithConflictResolver(func(string, int, int) bool {
		t.Fatal("resolver must not run under force")
		return false
	}))
	f.seed("2025-11-01", 200)

	if _, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, true); err != nil {
		t.Fatal(err)
	}
}

func TestSyncDayTotalReadFailure(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	f.seed("2025-11-01", 100)
	if _, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, false); err != nil {
		t.Fatal(err)
	}

	f.failList = errors.New("network down")
	if _, err := r.SyncDayTotal(context.Background(), "2025-11-01", 150, 300, false); err == nil {
		t.Fatal("expected error")
	}
	if r.SnapshotDay("2025-11-01") != 150 {
		t.Fatal("failed sync must leave the snapshot untouched")
	}
}

func TestSyncDayTotalWriteFailure(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	f.seed("2025-11-01", 100)
	f.failAppend = errors.New("network down")

	if _, err := r.SyncDayTotal(context.Background(), "2025-11-01", 100, 150, false); err == nil {
		t.Fatal("expected error")
	}
	if r.SnapshotDay("2025-11-01") != 0 {
		t.Fatal("failed write must not advance the snapshot")
	}
}

// ============================================================
// Settings sync
// ============================================================

func TestSyncSettingsRetriesWithoutBaseline(t *testing.T) {
	f := newFakeRemote()
	var warnings []string
	r := boundReconciler(t, f, WithWarnFunc(func(m string) { warnings = append(warnings, m) }))
	f.hasBaselineCol = false // schema "migrated down" after binding

	if err := r.SyncSettings(context.Background(), testProject()); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if f.updates != 1 {
		t.Fatalf("expected one successful update, got %d", f.updates)
	}
	if r.SupportsBaseline() {
		t.Fatal("baseline support should be degraded")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}

	// Subsequent pushes skip the field silently: no second warning.
	if err := r.SyncSettings(context.Background(), testProject()); err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warning should fire once per session, got %v", warnings)
	}
}

func TestSyncSettingsPropagatesOtherErrors(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	f.failUpdate = errors.New("permission denied")
	if err := r.SyncSettings(context.Background(), testProject()); err == nil {
		t.Fatal("expected error")
	}
}

// ============================================================
// Import
// ============================================================

func TestImportAllOverwritesUnion(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	ctx := context.Background()

	// Server knows day 1; the import only contains day 2.
	f.seed("2025-11-01", 100)
	if _, err := r.LoadEntries(ctx); err != nil {
		t.Fatal(err)
	}

	imported := progress.Entries{"2025-11-02": 50}
	if err := r.ImportAll(ctx, testProject(), imported); err != nil {
		t.Fatal(err)
	}

	entries, _ := r.LoadEntries(ctx)
	if entries["2025-11-01"] != 0 {
		t.Fatalf("day 1 should be forced to 0, got %d", entries["2025-11-01"])
	}
	if entries["2025-11-02"] != 50 {
		t.Fatalf("day 2 should be 50, got %d", entries["2025-11-02"])
	}
}

// ============================================================
// LoadEntries / reset
// ============================================================

func TestLoadEntriesReplacesSnapshot(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	ctx := context.Background()

	f.seed("2025-11-01", 300, -100)
	entries, err := r.LoadEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if entries["2025-11-01"] != 200 {
		t.Fatalf("fold = %d, want 200", entries["2025-11-01"])
	}
	if r.SnapshotDay("2025-11-01") != 200 {
		t.Fatal("snapshot should track the fold")
	}
}

func TestResetLedger(t *testing.T) {
	f := newFakeRemote()
	r := boundReconciler(t, f)
	ctx := context.Background()
	f.seed("2025-11-01", 300)

	if err := r.ResetLedger(ctx, testProject()); err != nil {
		t.Fatal(err)
	}
	entries, _ := r.LoadEntries(ctx)
	if len(entries) != 0 {
		t.Fatalf("ledger should be empty, got %v", entries)
	}
}

func TestIsBaselineColumnErr(t *testing.T) {
	if !IsBaselineColumnErr(errors.New("table projects has no column named baseline_words")) {
		t.Fatal("should match sqlite insert error")
	}
	if !IsBaselineColumnErr(errors.New("no such column: BASELINE_WORDS")) {
		t.Fatal("match should be case-insensitive")
	}
	if IsBaselineColumnErr(errors.New("connection refused")) {
		t.Fatal("unrelated errors must not match")
	}
	if IsBaselineColumnErr(nil) {
		t.Fatal("nil is not a schema error")
	}
}
