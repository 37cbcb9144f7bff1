// Package localstore persists device-local tracker state as small JSON
// records in a diskv key-value store. Two records are kept: the primary
// state (project, entries, time warp, theme) and a lightweight preferences
// record that survives a full project reset. The chosen storage mode is a
// third, independently keyed value.
package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"

	"github.com/mkarslan/wordsprint/internal/progress"
)

const (
	stateKey = "state"
	prefsKey = "prefs"
	modeKey  = "mode"
)

// Themes lists the selectable UI themes. The first is the default.
var Themes = []string{"spruce", "midnight", "sunset"}

// NormalizeTheme maps unknown theme names to the default.
func NormalizeTheme(name string) string {
	for _, t := range Themes {
		if t == name {
			return name
		}
	}
	return Themes[0]
}

// State is the primary persisted record.
type State struct {
	Project  progress.Project `json:"project"`
	Entries  progress.Entries `json:"entries"`
	TimeWarp string           `json:"timeWarp,omitempty"`
	Theme    string           `json:"theme"`
}

// Prefs survive a project reset.
type Prefs struct {
	TimeWarp string `json:"timeWarp,omitempty"`
	Theme    string `json:"theme"`
}

type Store struct {
	d *diskv.Diskv
}

func New(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024,
	})}
}

func (s *Store) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) read(key string, v any) (bool, error) {
	if !s.d.Has(key) {
		return false, nil
	}
	data, err := s.d.Read(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SaveState(st State) error {
	st.Theme = NormalizeTheme(st.Theme)
	return s.write(stateKey, st)
}

// LoadState returns the primary record. ok is false when none has been
// saved yet.
func (s *Store) LoadState() (st State, ok bool, err error) {
	ok, err = s.read(stateKey, &st)
	if err != nil || !ok {
		return State{}, false, err
	}
	st.Theme = NormalizeTheme(st.Theme)
	if st.Entries == nil {
		st.Entries = progress.Entries{}
	}
	return st, true, nil
}

// ClearState erases the primary record only; preferences and mode remain.
func (s *Store) ClearState() error {
	if !s.d.Has(stateKey) {
		return nil
	}
	return s.d.Erase(stateKey)
}

func (s *Store) SavePrefs(p Prefs) error {
	p.Theme = NormalizeTheme(p.Theme)
	return s.write(prefsKey, p)
}

func (s *Store) LoadPrefs() (p Prefs, ok bool, err error) {
	ok, err = s.read(prefsKey, &p)
	if err != nil || !ok {
		return Prefs{}, false, err
	}
	p.Theme = NormalizeTheme(p.Theme)
	return p, true, nil
}

// SaveMode records the chosen storage mode string ("local" or "cloud").
func (s *Store) SaveMode(mode string) error {
	return s.write(modeKey, mode)
}

// LoadMode returns the stored mode, empty when never chosen.
func (s *Store) LoadMode() (string, error) {
	var mode string
	ok, err := s.read(modeKey, &mode)
	if err != nil || !ok {
		return "", err
	}
	return mode, nil
}
