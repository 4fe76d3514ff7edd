package session

import (
	"context"
	"errors"
	"sync"

	"github.com/menulink/ordercore/internal/catalog"
	catsync "github.com/menulink/ordercore/internal/catalog/sync"
	"github.com/menulink/ordercore/internal/pkg/cache"
)

// ErrSessionNotFound is returned for unknown or already closed sessions.
var ErrSessionNotFound = errors.New("session: not found")

// Manager is the registry of open sessions for the HTTP surface.
// Each Open starts its own catalog syncer so sessions for different
// businesses never share mutable state.
type Manager struct {
	loader   catalog.Loader
	notifier catsync.Notifier
	store    cache.SnapshotStore

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(loader catalog.Loader, notifier catsync.Notifier, store cache.SnapshotStore) *Manager {
	return &Manager{
		loader:   loader,
		notifier: notifier,
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Open starts a syncer for the business and registers a new session.
func (m *Manager) Open(ctx context.Context, businessID string) (*Session, error) {
	syncer, err := catsync.Start(ctx, businessID, m.loader, m.notifier, m.store)
	if err != nil {
		return nil, err
	}

	s := Open(businessID, syncer)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get returns the open session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close ends the session and removes it from the registry.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return s.Close()
}

// CloseAll ends every open session. Used on process shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
