// Package editsession implements the temp-vs-base dirty-tracking model
// for in-place scene editing: each mounted scene gets a session holding
// the last-saved configuration and a working copy mutated through
// path-set operations.
package editsession

import (
	"sync"

	"github.com/scenecast/internal/configtree"
)

// PersistFunc receives the full temp snapshot on save. Implementations
// are expected to hand the snapshot off asynchronously; Save does not
// wait for, or react to, the persist outcome (at-most-once, best effort —
// a failed persist loses the remote copy of this save, by design).
type PersistFunc func(sceneID string, snapshot any)

// Session tracks one scene's editable configuration.
type Session struct {
	mu sync.Mutex

	sceneID      string
	base         any
	temp         any
	editingField string

	persist PersistFunc
	onSave  func(sceneID string, snapshot any)
}

// NewSession starts a session with base = temp = a deep copy of initial,
// so later merges into the live document cannot alias session state.
func NewSession(sceneID string, initial any, persist PersistFunc) *Session {
	return &Session{
		sceneID: sceneID,
		base:    configtree.Clone(initial),
		temp:    configtree.Clone(initial),
		persist: persist,
	}
}

// SceneID returns the scene this session tracks.
func (s *Session) SceneID() string { return s.sceneID }

// Temp returns a deep copy of the working configuration.
func (s *Session) Temp() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return configtree.Clone(s.temp)
}

// Base returns a deep copy of the last-saved configuration.
func (s *Session) Base() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return configtree.Clone(s.base)
}

// EditingField returns the path under interactive edit, "" when none.
func (s *Session) EditingField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingField
}

// StartEditingField marks a path as interactively edited. An open field
// counts as unsaved even while temp still equals base.
func (s *Session) StartEditingField(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingField = path
}

// UpdateField writes value into the working copy at path. The write is
// skipped when the current value is already deep-equal, which keeps
// spurious updates from flipping the dirty flag. Returns whether temp
// changed.
func (s *Session) UpdateField(path string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := configtree.GetPath(s.temp, path)
	if ok && configtree.Equal(cur, value) {
		return false
	}
	if !ok && value == nil {
		return false
	}
	s.temp = configtree.SetPath(s.temp, path, configtree.Clone(value))
	return true
}

// Dirty reports unsaved state: temp differs from base, or a field is
// open for interactive editing.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	return s.editingField != "" || !configtree.Equal(s.base, s.temp)
}

// Save promotes temp to base and clears the editing field. The persist
// callback fires first with the full snapshot, but the promotion does
// not depend on its outcome; after Save returns, Dirty is false. A
// second Save with no intervening edit re-persists identical state and
// changes nothing locally.
func (s *Session) Save() {
	s.mu.Lock()
	snapshot := configtree.Clone(s.temp)
	s.base = configtree.Clone(s.temp)
	s.editingField = ""
	persist := s.persist
	onSave := s.onSave
	s.mu.Unlock()

	if persist != nil {
		persist(s.sceneID, snapshot)
	}
	if onSave != nil {
		onSave(s.sceneID, snapshot)
	}
}

// Discard resets temp to the last-saved base and clears the editing
// field.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp = configtree.Clone(s.base)
	s.editingField = ""
}
