package editsession

import (
	"sync"

	"github.com/scenecast/internal/bus"
)

// Manager keys edit sessions by scene identity. A session is created when
// a scene mounts, survives across edits, and is dropped when the scene
// unmounts (dropping never persists anything). Saves publish
// SceneConfigPatched on the bus so decoupled UI regions can re-render,
// and dirty transitions publish ThemeConfigDirty.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	persist  PersistFunc
	events   *bus.Bus
}

// NewManager wires sessions to an optional persist callback and an
// optional event bus; either may be nil.
func NewManager(persist PersistFunc, events *bus.Bus) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		persist:  persist,
		events:   events,
	}
}

// Session returns the session for sceneID, creating one from initial on
// first touch. The initial document is only consulted at creation.
func (m *Manager) Session(sceneID string, initial any) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sceneID]; ok {
		return s
	}

	s := NewSession(sceneID, initial, m.persist)
	if m.events != nil {
		s.onSave = func(id string, snapshot any) {
			m.events.Publish(bus.TopicSceneConfigPatched, bus.SceneConfigPatched{
				SceneID: id,
				Config:  snapshot,
			})
			m.publishDirty()
		}
	}
	m.sessions[sceneID] = s
	return s
}

// Drop destroys a scene's session. Unsaved edits are lost; Drop fires no
// persistence.
func (m *Manager) Drop(sceneID string) {
	m.mu.Lock()
	delete(m.sessions, sceneID)
	m.mu.Unlock()
	m.publishDirty()
}

// AnyDirty reports whether any live session holds unsaved changes.
func (m *Manager) AnyDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Dirty() {
			return true
		}
	}
	return false
}

func (m *Manager) publishDirty() {
	if m.events == nil {
		return
	}
	m.events.Publish(bus.TopicThemeConfigDirty, bus.ThemeConfigDirty{Dirty: m.AnyDirty()})
}
