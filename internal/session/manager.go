// Package session tracks named conversations for the daemon so repeated
// questions over HTTP share history.
package session

import (
	"sync"
	"time"

	"github.com/nmoreau/askdesk/internal/agent"
)

// Entry pairs a conversation with its bookkeeping.
type Entry struct {
	ID        string
	StartedAt time.Time
	Session   *agent.Session

	mu sync.Mutex
}

// Do runs fn with exclusive access to the entry's conversation. The
// conversation itself is not synchronized, so concurrent requests against the
// same session ID must go through here.
func (e *Entry) Do(fn func(*agent.Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.Session)
}

// Manager holds active conversations keyed by ID. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Entry
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Entry),
	}
}

// GetOrCreate returns the conversation for id, creating it on first use.
func (m *Manager) GetOrCreate(id string) *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.sessions[id]; ok {
		return entry
	}
	entry := &Entry{
		ID:        id,
		StartedAt: time.Now(),
		Session:   agent.NewSession(),
	}
	m.sessions[id] = entry
	return entry
}

// Get retrieves a conversation, or nil if it does not exist.
func (m *Manager) Get(id string) *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Delete removes a conversation.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of active conversations.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
