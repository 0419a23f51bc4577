package session

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

// idAttempts bounds collision retries before widening the random suffix.
const idAttempts = 16

// Manager owns the set of live sessions. The map is guarded by mu; each
// session carries its own lock, so operations on different games never
// contend.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a new session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new waiting session with conn as provisional creator and
// returns the generated id.
func (m *Manager) Create(conn service.Sender, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.generateID()
	sess := newSession(id, conn, name)
	m.sessions[id] = sess

	log.Info().Str("game", id).Str("creator", name).Msg("game created")
	return id
}

// Join seats conn into the identified session. It fails with
// service.ErrGameNotFound, service.ErrGameFull or service.ErrGameFinished;
// on failure nothing about the session changes.
func (m *Manager) Join(id string, conn service.Sender, name string) error {
	sess, ok := m.get(id)
	if !ok {
		return service.ErrGameNotFound
	}
	return sess.join(conn, name)
}

// Play applies a move on behalf of conn. A missing session, like every other
// illegal-move condition, is silently ignored.
func (m *Manager) Play(id string, conn service.Sender, row, col int) {
	sess, ok := m.get(id)
	if !ok {
		return
	}
	sess.play(conn, row, col)
}

// ListJoinable returns the lobby view: every session with a free seat that
// has not finished, ordered by creation time.
func (m *Manager) ListJoinable() []service.GameSummary {
	open := make([]*Session, 0)
	for _, sess := range m.list() {
		if sess.joinable() {
			open = append(open, sess)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })

	result := make([]service.GameSummary, 0, len(open))
	for _, sess := range open {
		result = append(result, sess.summary())
	}
	return result
}

// Snapshot returns a read-only view of one session.
func (m *Manager) Snapshot(id string) (*service.GameInfo, error) {
	sess, ok := m.get(id)
	if !ok {
		return nil, service.ErrGameNotFound
	}
	return sess.snapshot(), nil
}

// Snapshots returns read-only views of every live session, ordered by
// creation time.
func (m *Manager) Snapshots() []*service.GameInfo {
	sessions := m.list()
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) })

	result := make([]*service.GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sess.snapshot())
	}
	return result
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneFinished removes finished sessions older than maxAge and reports how
// many were dropped. Waiting and playing sessions are never touched.
func (m *Manager) PruneFinished(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		if sess.expired(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// get looks up a session under the read lock.
func (m *Manager) get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// list copies the current session set under the read lock.
func (m *Manager) list() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// generateID returns a short id ("g" + random hex) unique among live
// sessions. Collisions retry with fresh randomness and, past idAttempts,
// widen the suffix so the loop always terminates. Caller holds mu.
func (m *Manager) generateID() string {
	size := 2
	for attempt := 0; ; attempt++ {
		if attempt > 0 && attempt%idAttempts == 0 {
			size++
		}
		buf := make([]byte, size)
		rand.Read(buf)
		id := "g" + hex.EncodeToString(buf)
		if _, taken := m.sessions[id]; !taken {
			return id
		}
	}
}
