// Package session manages editor sessions. Each session owns one layout
// store, one canvas controller and one sensor simulator; the simulator is
// started when the session begins and stopped on teardown so periodic
// callbacks never leak across sessions.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/gauge-designer/backend/internal/canvas"
	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/sensors"
	"github.com/gauge-designer/backend/internal/store"
	"github.com/gauge-designer/backend/internal/validation"
	"github.com/google/uuid"
)

// DefaultMaxSessions limits concurrent editor sessions to prevent memory
// exhaustion when no explicit limit is configured.
const DefaultMaxSessions = 10

// SessionKeepAliveWindow is how long to keep sessions that are actively
// being used.
const SessionKeepAliveWindow = 5 * time.Minute

// EditorSession bundles the per-session engine components.
type EditorSession struct {
	ID           string
	Store        *store.Store
	Controller   *canvas.Controller
	Simulator    *sensors.Simulator
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Options configures new sessions.
type Options struct {
	MaxSessions       int
	SimulatorInterval time.Duration
	Viewport          models.EditorViewport
}

// Manager handles active editor sessions.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*EditorSession
	validator *validation.Validator
	catalog   *catalog.Catalog
	opts      Options
}

// NewManager creates a session manager. A zero MaxSessions falls back to
// DefaultMaxSessions.
func NewManager(validator *validation.Validator, cat *catalog.Catalog, opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Viewport == (models.EditorViewport{}) {
		opts.Viewport = models.DefaultViewport()
	}
	return &Manager{
		sessions:  make(map[string]*EditorSession),
		validator: validator,
		catalog:   cat,
		opts:      opts,
	}
}

// StartSession creates a new editor session with an empty document and a
// running sensor simulator.
func (m *Manager) StartSession() (*EditorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.opts.MaxSessions {
		m.evictOldestLocked()
	}
	if len(m.sessions) >= m.opts.MaxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", m.opts.MaxSessions)
	}

	st := store.New(m.validator, m.catalog)
	st.SetViewport(models.ViewportUpdate{
		ZoomFactor:  &m.opts.Viewport.ZoomFactor,
		GridSize:    &m.opts.Viewport.GridSize,
		SnapEnabled: &m.opts.Viewport.SnapEnabled,
	})

	sim := sensors.NewSimulator(m.opts.SimulatorInterval)
	sim.Start()

	sess := &EditorSession{
		ID:           uuid.New().String(),
		Store:        st,
		Controller:   canvas.NewController(st),
		Simulator:    sim,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}

	m.sessions[sess.ID] = sess
	fmt.Printf("[Session %s] Editor session started\n", sess.ID[:8])
	return sess, nil
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*EditorSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	return sess, ok
}

// TouchSession updates the LastAccessed timestamp for a session. Call it
// whenever a session is actively used to prevent cleanup.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false
	}
	sess.LastAccessed = time.Now()
	return true
}

// EndSession tears down a session: the simulator is stopped and the
// session removed. Ending an unknown id is a no-op.
func (m *Manager) EndSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endSessionLocked(id)
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions removes sessions idle longer than maxAge, keeping
// those accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, sess := range m.sessions {
		if sess.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if sess.LastAccessed.Before(cutoff) {
			m.endSessionLocked(id)
			fmt.Printf("[Session %s] Cleaned up aged session (idle %s)\n",
				id[:8], time.Since(sess.LastAccessed).Round(time.Second))
		}
	}
}

// Shutdown stops every simulator and drops all sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.sessions {
		m.endSessionLocked(id)
	}
}

func (m *Manager) endSessionLocked(id string) {
	sess, ok := m.sessions[id]
	if !ok {
		return
	}
	sess.Simulator.Stop()
	delete(m.sessions, id)
}

// evictOldestLocked drops the least recently accessed session to make
// room at the limit.
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range m.sessions {
		if oldestID == "" || sess.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = sess.LastAccessed
		}
	}
	if oldestID != "" {
		m.endSessionLocked(oldestID)
		fmt.Printf("[Session %s] Evicted oldest session to free capacity\n", oldestID[:8])
	}
}
