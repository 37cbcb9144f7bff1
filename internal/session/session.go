// Package session owns the mode state machine and the in-memory tracker
// state the UI renders. It glues the pure progress math to the two
// storage backends: device-local records in local mode, the shared
// append-only ledger in cloud mode. All mutation goes through here.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkarslan/wordsprint/internal/cloud"
	"github.com/mkarslan/wordsprint/internal/config"
	"github.com/mkarslan/wordsprint/internal/dates"
	"github.com/mkarslan/wordsprint/internal/export"
	"github.com/mkarslan/wordsprint/internal/localstore"
	"github.com/mkarslan/wordsprint/internal/progress"
	"github.com/mkarslan/wordsprint/internal/reconcile"
)

// Mode selects where tracker state lives.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

var (
	ErrSignedOut    = errors.New("sign in to edit")
	ErrOutOfRange   = errors.New("viewing day is outside the sprint window")
	ErrCloudMissing = errors.New("no cloud ledger configured")
)

// Session is the single mutable core behind the UI. All methods are
// safe for concurrent use; debounce timers and change-feed reloads run
// on their own goroutines.
type Session struct {
	mu sync.Mutex

	cfg   *config.Config
	local *localstore.Store
	db    *cloud.Store // nil when cloud is not configured
	rec   *reconcile.Reconciler
	log   *slog.Logger

	mode     Mode
	userID   string
	project  progress.Project
	entries  progress.Entries
	history  progress.History
	timeWarp string
	theme    string

	sched      *scheduler
	sub        *cloud.Subscription
	watcher    *cloud.Watcher
	feedDone   chan struct{}
	lastSynced time.Time

	notify   func(string) // transient user-facing notices
	onChange func()       // repaint hook, fired after async state changes
	confirm  func(day string, serverTotal, target int) bool
}

type Option func(*Session)

// WithNotify sets the callback for transient user-facing messages.
func WithNotify(f func(string)) Option {
	return func(s *Session) { s.notify = f }
}

// WithOnChange sets the hook fired after state changes from background
// work (debounced syncs, change-feed reloads).
func WithOnChange(f func()) Option {
	return func(s *Session) { s.onChange = f }
}

// WithConfirm sets the conflict prompt. Returning true overwrites the
// server total; the default declines every conflict.
func WithConfirm(f func(day string, serverTotal, target int) bool) Option {
	return func(s *Session) { s.confirm = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func New(cfg *config.Config, local *localstore.Store, db *cloud.Store, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg,
		local:   local,
		db:      db,
		log:     slog.New(slog.DiscardHandler),
		mode:    ModeLocal,
		project: progress.DefaultProject(),
		entries: progress.Entries{},
		theme:   localstore.Themes[0],
		notify:  func(string) {},
		onChange: func() {},
		confirm:  func(string, int, int) bool { return false },
	}
	for _, o := range opts {
		o(s)
	}
	if db != nil {
		s.rec = reconcile.New(db,
			reconcile.WithLogger(s.log),
			reconcile.WithWarnFunc(func(msg string) { s.notify(msg) }),
			reconcile.WithConflictResolver(func(day string, server, target int) bool {
				return s.confirm(day, server, target)
			}),
		)
	}
	s.sched = newScheduler(time.Duration(cfg.DebounceMS)*time.Millisecond, s.fireDaySync)
	return s
}

// Start restores the persisted mode and activates it. In cloud mode a
// configured user id signs in immediately.
func (s *Session) Start(ctx context.Context) error {
	mode, err := s.local.LoadMode()
	if err != nil {
		return fmt.Errorf("load mode: %w", err)
	}
	m := ModeLocal
	if Mode(mode) == ModeCloud && s.db != nil {
		m = ModeCloud
	}
	if err := s.ActivateMode(ctx, m); err != nil {
		return err
	}
	if m == ModeCloud && s.cfg.UserID != "" {
		if err := s.SignIn(ctx, s.cfg.UserID); err != nil {
			// Cloud landing stays unauthenticated; the UI offers retry.
			s.log.Warn("sign-in failed on start", "err", err)
			s.notify(fmt.Sprintf("Sign-in failed: %v", err))
		}
	}
	return nil
}

// ActivateMode switches storage modes. In-memory state is torn down
// wholesale and repopulated from the new mode's source; nothing carries
// over except preferences.
func (s *Session) ActivateMode(ctx context.Context, m Mode) error {
	if m == ModeCloud && s.db == nil {
		return ErrCloudMissing
	}
	s.teardown()

	s.mu.Lock()
	s.mode = m
	s.userID = ""
	s.project = progress.DefaultProject()
	s.entries = progress.Entries{}
	s.history.Clear()
	s.timeWarp = ""
	s.theme = localstore.Themes[0]
	s.lastSynced = time.Time{}
	s.mu.Unlock()

	if err := s.local.SaveMode(string(m)); err != nil {
		return fmt.Errorf("save mode: %w", err)
	}

	switch m {
	case ModeLocal:
		st, ok, err := s.local.LoadState()
		if err != nil {
			return fmt.Errorf("load local state: %w", err)
		}
		if ok {
			s.mu.Lock()
			s.project = st.Project
			s.entries = st.Entries
			s.timeWarp = st.TimeWarp
			s.theme = st.Theme
			s.mu.Unlock()
		}
	case ModeCloud:
		p, ok, err := s.local.LoadPrefs()
		if err != nil {
			return fmt.Errorf("load prefs: %w", err)
		}
		if ok {
			s.mu.Lock()
			s.timeWarp = p.TimeWarp
			s.theme = p.Theme
			s.mu.Unlock()
		}
	}
	return nil
}

// SignIn binds the session to a ledger account: finds or creates the
// account's project, folds its ledger, and starts the change feed.
func (s *Session) SignIn(ctx context.Context, userID string) error {
	s.mu.Lock()
	mode := s.mode
	local := s.project
	s.mu.Unlock()
	if mode != ModeCloud {
		return errors.New("sign-in requires cloud mode")
	}
	if userID == "" {
		return errors.New("empty user id")
	}

	p, err := s.rec.FindOrCreateProject(ctx, userID, local)
	if err != nil {
		return err
	}
	entries, err := s.rec.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	// A repeat sign-in must not leave the previous feed running.
	s.teardown()

	s.mu.Lock()
	s.userID = userID
	s.applyRemoteProject(p)
	s.entries = entries
	s.history.Clear()
	s.lastSynced = time.Now()
	s.mu.Unlock()

	return s.startFeed(p.ID)
}

// SignOut drops the account binding and all cloud-derived state. The
// primary local record is erased and the time warp cleared; the theme
// survives.
func (s *Session) SignOut(ctx context.Context) error {
	s.teardown()
	s.mu.Lock()
	s.timeWarp = ""
	s.mu.Unlock()
	if err := s.persistPrefs(); err != nil {
		return err
	}
	if err := s.local.ClearState(); err != nil {
		return fmt.Errorf("clear local state: %w", err)
	}
	return s.ActivateMode(ctx, ModeCloud)
}

// ============================================================
// Editing
// ============================================================

// AddWords adds n words to the viewing day. n must be positive and the
// viewing day must fall inside the sprint window.
func (s *Session) AddWords(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("word count must be positive")
	}
	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return ErrSignedOut
	}
	day := s.viewingDayLocked()
	if !s.project.InRange(day) {
		s.mu.Unlock()
		return ErrOutOfRange
	}
	s.entries[day] += n
	s.history.Push(day, n)
	mode := s.mode
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	if err := s.rec.AppendDelta(ctx, day, n); err != nil {
		s.recoverFromWriteFailure(ctx, "add words", err)
		return fmt.Errorf("add words: %w", err)
	}
	s.rec.BumpSnapshot(day, n)
	s.touchSynced()
	return nil
}

// Undo reverts the last AddWords. Totals never go below zero, so the
// compensating delta may be smaller than the one recorded.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	snap, ok := s.history.Pop()
	if !ok {
		s.mu.Unlock()
		return nil
	}
	cur := s.entries[snap.Day]
	next := cur - snap.Delta
	if next < 0 {
		next = 0
	}
	applied := next - cur
	s.entries[snap.Day] = next
	mode := s.mode
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	if applied == 0 {
		return nil
	}
	if err := s.rec.AppendDelta(ctx, snap.Day, applied); err != nil {
		s.recoverFromWriteFailure(ctx, "undo", err)
		return fmt.Errorf("undo: %w", err)
	}
	s.rec.BumpSnapshot(snap.Day, applied)
	s.touchSynced()
	return nil
}

// EditDayTotal sets a day's total outright. Cloud syncs are debounced
// so typing digit by digit produces one reconciliation, not five.
func (s *Session) EditDayTotal(ctx context.Context, day string, total int) error {
	if !dates.Valid(day) {
		return fmt.Errorf("invalid day %q", day)
	}
	if total < 0 {
		return fmt.Errorf("total must not be negative")
	}
	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return ErrSignedOut
	}
	s.entries[day] = total
	mode := s.mode
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	s.sched.Schedule(day)
	return nil
}

// fireDaySync is the scheduler callback: reconcile one day's total
// against the ledger using the snapshot as the expected base.
func (s *Session) fireDaySync(day string) {
	s.mu.Lock()
	target := s.entries[day]
	signedIn := s.userID != "" && s.mode == ModeCloud
	s.mu.Unlock()
	if !signedIn {
		return
	}

	res, err := s.rec.SyncDayTotal(context.Background(), day, s.rec.SnapshotDay(day), target, false)
	if err != nil {
		s.log.Warn("day sync failed", "day", day, "err", err)
		s.notify(fmt.Sprintf("Sync failed for %s: %v", dates.FmtMD(day), err))
		return
	}
	if res.Reverted {
		s.mu.Lock()
		s.entries[day] = res.ServerTotal
		s.mu.Unlock()
		s.notify(fmt.Sprintf("Kept server total for %s", dates.FmtMD(day)))
	}
	s.touchSynced()
	s.onChange()
}

// ============================================================
// Settings, reset, refresh
// ============================================================

// SaveSettings validates and applies new project settings, pushing them
// to the ledger when signed in.
func (s *Session) SaveSettings(ctx context.Context, p progress.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if p.GoalWords <= 0 {
		return fmt.Errorf("goal must be positive")
	}
	if !dates.Valid(p.StartDate) || !dates.Valid(p.EndDate) {
		return fmt.Errorf("dates must be YYYY-MM-DD")
	}
	if dates.DaysBetween(p.StartDate, p.EndDate) < 0 {
		return fmt.Errorf("end date is before start date")
	}
	if p.BaselineWords < 0 {
		p.BaselineWords = 0
	}

	s.mu.Lock()
	s.project = p
	mode := s.mode
	signedIn := s.userID != ""
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	if !signedIn {
		return nil
	}
	if err := s.rec.SyncSettings(ctx, p); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.touchSynced()
	return nil
}

// ResetAll clears the project, entries, and undo buffer. Preferences
// (theme, time warp) survive. Signed in, the ledger is emptied too.
func (s *Session) ResetAll(ctx context.Context) error {
	s.sched.CancelAll()

	s.mu.Lock()
	s.project = progress.DefaultProject()
	s.entries = progress.Entries{}
	s.history.Clear()
	p := s.project
	mode := s.mode
	signedIn := s.userID != ""
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	if !signedIn {
		return nil
	}
	if err := s.rec.ResetLedger(ctx, p); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.touchSynced()
	return nil
}

// Refresh re-fetches the project row and re-folds the full ledger.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	signedIn := s.userID != "" && s.mode == ModeCloud
	s.mu.Unlock()
	if !signedIn {
		return nil
	}
	p, err := s.rec.FetchProject(ctx)
	if err != nil {
		return fmt.Errorf("refresh project: %w", err)
	}
	entries, err := s.rec.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("refresh ledger: %w", err)
	}
	s.mu.Lock()
	s.applyRemoteProject(p)
	s.entries = entries
	s.mu.Unlock()
	s.touchSynced()
	return nil
}

// ============================================================
// Import / export
// ============================================================

// Export snapshots the current state as a portable payload.
func (s *Session) Export() export.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.Build(s.project, s.entries, string(s.mode), s.theme, s.timeWarp)
}

// Import replaces the whole tracker with the payload's contents. Signed
// in, every imported day is force-written to the ledger. Cloud mode
// without an account has nowhere to persist, so it is rejected outright.
func (s *Session) Import(ctx context.Context, payload export.Payload) error {
	payload = export.Sanitize(payload)

	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return ErrSignedOut
	}
	s.project = payload.Project
	s.entries = payload.Entries
	s.history.Clear()
	if payload.Meta.TimeWarp != "" {
		s.timeWarp = payload.Meta.TimeWarp
	}
	if payload.Meta.Theme != "" {
		s.theme = localstore.NormalizeTheme(payload.Meta.Theme)
	}
	p := s.project
	entries := s.entries
	mode := s.mode
	s.mu.Unlock()

	if mode == ModeLocal {
		return s.persistLocal()
	}
	if err := s.persistPrefs(); err != nil {
		return err
	}
	if err := s.rec.ImportAll(ctx, p, entries); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.touchSynced()
	return nil
}

// ============================================================
// Preferences
// ============================================================

// SetTimeWarp overrides the viewing day. Empty clears the override.
func (s *Session) SetTimeWarp(day string) error {
	if day != "" && !dates.Valid(day) {
		return fmt.Errorf("invalid day %q", day)
	}
	s.mu.Lock()
	s.timeWarp = day
	s.mu.Unlock()
	return s.persistPrefs()
}

func (s *Session) SetTheme(name string) error {
	s.mu.Lock()
	s.theme = localstore.NormalizeTheme(name)
	s.mu.Unlock()
	return s.persistPrefs()
}

// ============================================================
// Views
// ============================================================

// ViewingDay is today, unless a time warp override is set.
func (s *Session) ViewingDay() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewingDayLocked()
}

func (s *Session) viewingDayLocked() string {
	if s.timeWarp != "" {
		return s.timeWarp
	}
	return dates.Today()
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Interactive reports whether edits are accepted: always in local mode,
// only signed in under cloud mode.
func (s *Session) Interactive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactiveLocked()
}

func (s *Session) interactiveLocked() bool {
	return s.mode == ModeLocal || s.userID != ""
}

func (s *Session) Project() progress.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

func (s *Session) Entries() progress.Entries {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Clone()
}

func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Session) TimeWarp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeWarp
}

// CanUndo reports whether an AddWords is buffered for undo.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.history.Peek()
	return ok
}

// Series computes the chart data for the current state.
func (s *Session) Series() progress.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.ComputeSeries(s.project, s.entries)
}

// Stats computes the dashboard numbers as of the viewing day.
func (s *Session) Stats() progress.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	series := progress.ComputeSeries(s.project, s.entries)
	return progress.ComputeStats(s.project, series, s.viewingDayLocked())
}

// Motivation renders the banner line as of the viewing day.
func (s *Session) Motivation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	series := progress.ComputeSeries(s.project, s.entries)
	return progress.Motivation(s.project, series, s.viewingDayLocked())
}

// SyncLabel renders the last-synced time relative to now, empty when
// nothing has synced this session.
func (s *Session) SyncLabel() string {
	s.mu.Lock()
	t := s.lastSynced
	s.mu.Unlock()
	if t.IsZero() {
		return ""
	}
	return "Synced " + formatRelative(time.Since(t))
}

func formatRelative(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "1 min ago"
	case d < time.Hour:
		return fmt.Sprintf("%d mins ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "1 hr ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hrs ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

// Close flushes pending syncs and stops background work.
func (s *Session) Close() {
	s.sched.Flush()
	s.teardown()
}

// ============================================================
// Internals
// ============================================================

// applyRemoteProject adopts the server's project row. When the remote
// schema cannot store a baseline, the local value is kept as-is.
func (s *Session) applyRemoteProject(p *cloud.Project) {
	s.project.Name = p.Name
	s.project.GoalWords = p.GoalWords
	s.project.StartDate = p.StartDate
	s.project.EndDate = p.EndDate
	if p.HasBaseline {
		s.project.BaselineWords = p.BaselineWords
	}
}

// startFeed subscribes to ledger change notices, both in-process and
// from other processes via the file watcher.
func (s *Session) startFeed(projectID string) error {
	sub := s.db.Bus().Subscribe()
	w, err := s.db.Watch()
	if err != nil {
		sub.Close()
		return fmt.Errorf("watch ledger: %w", err)
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.sub = sub
	s.watcher = w
	s.feedDone = done
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case ch, ok := <-sub.Changes():
				if !ok {
					return
				}
				if ch.Kind != cloud.ChangeExternal && ch.ProjectID != projectID {
					continue
				}
				if err := s.Refresh(context.Background()); err != nil {
					s.log.Warn("change-feed refresh failed", "err", err)
					continue
				}
				s.onChange()
			}
		}
	}()
	return nil
}

// teardown stops timers and the change feed. Idempotent.
func (s *Session) teardown() {
	s.sched.CancelAll()
	s.mu.Lock()
	sub, w, done := s.sub, s.watcher, s.feedDone
	s.sub, s.watcher, s.feedDone = nil, nil, nil
	s.mu.Unlock()
	if done != nil {
		close(done)
	}
	if sub != nil {
		sub.Close()
	}
	w.Close()
}

// persistLocal writes the primary local record and the preferences.
func (s *Session) persistLocal() error {
	s.mu.Lock()
	st := localstore.State{
		Project:  s.project,
		Entries:  s.entries.Clone(),
		TimeWarp: s.timeWarp,
		Theme:    s.theme,
	}
	s.mu.Unlock()
	if err := s.local.SaveState(st); err != nil {
		return fmt.Errorf("save local state: %w", err)
	}
	if err := s.local.SavePrefs(localstore.Prefs{TimeWarp: st.TimeWarp, Theme: st.Theme}); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

// persistPrefs writes the preferences record, and in local mode keeps
// the primary record's copy in step.
func (s *Session) persistPrefs() error {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()
	if mode == ModeLocal {
		return s.persistLocal()
	}
	s.mu.Lock()
	p := localstore.Prefs{TimeWarp: s.timeWarp, Theme: s.theme}
	s.mu.Unlock()
	if err := s.local.SavePrefs(p); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

// recoverFromWriteFailure reloads from the ledger after a failed append
// so the optimistic local value does not drift from the server.
func (s *Session) recoverFromWriteFailure(ctx context.Context, op string, cause error) {
	s.log.Warn("write failed, reloading", "op", op, "err", cause)
	s.notify(fmt.Sprintf("%s failed: %v", op, cause))
	entries, err := s.rec.LoadEntries(ctx)
	if err != nil {
		s.log.Warn("reload after failure also failed", "err", err)
		return
	}
	s.mu.Lock()
	s.entries = entries
	s.history.Clear()
	s.mu.Unlock()
	s.onChange()
}

func (s *Session) touchSynced() {
	s.mu.Lock()
	s.lastSynced = time.Now()
	s.mu.Unlock()
}
