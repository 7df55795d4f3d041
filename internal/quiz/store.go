package quiz

import (
	"sync"
	"time"
)

// Store holds live sessions. All mutation of a session flows through
// Update, which runs inside that session's critical section; operations
// on distinct sessions never contend.
type Store interface {
	// Create registers a new session under its ID.
	Create(s *Session) error

	// Snapshot returns a deep copy of the session.
	Snapshot(id string) (Session, error)

	// Update applies one atomic mutation. fn runs on a private copy;
	// returning an error discards every change (all-or-nothing).
	Update(id string, fn func(*Session) error) error

	// Touch updates LastActivityTimestamp and nothing else. Fails with
	// ErrSessionTerminal on completed/expired sessions.
	Touch(id string, now time.Time) error

	// Expire transitions the session to Expired. Idempotent on terminal
	// sessions (changed=false).
	Expire(id string, now time.Time) (s Session, changed bool, err error)

	// ExpireIdle expires every active session whose last activity is
	// before cutoff and returns copies of the newly expired sessions.
	ExpireIdle(cutoff, now time.Time) []Session

	// PruneTerminal removes terminal sessions idle since before cutoff
	// from memory and returns their IDs. They remain in the archive.
	PruneTerminal(cutoff time.Time) []string
}

type sessionEntry struct {
	mu sync.Mutex
	s  Session
}

// MemoryStore is the in-process Store: a map guarded by an RWMutex, with
// a per-session mutex so a heartbeat can never interleave with an answer
// mutation on the same session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*sessionEntry{}}
}

func (m *MemoryStore) Create(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrInvalidRequest
	}
	m.sessions[s.ID] = &sessionEntry{s: s.clone()}
	return nil
}

func (m *MemoryStore) entry(id string) (*sessionEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	return e, ok
}

func (m *MemoryStore) Snapshot(id string) (Session, error) {
	e, ok := m.entry(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.clone(), nil
}

func (m *MemoryStore) Update(id string, fn func(*Session) error) error {
	e, ok := m.entry(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tmp := e.s.clone()
	if err := fn(&tmp); err != nil {
		return err
	}
	e.s = tmp
	return nil
}

func (m *MemoryStore) Touch(id string, now time.Time) error {
	e, ok := m.entry(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s.Status.Terminal() {
		return ErrSessionTerminal
	}
	e.s.LastActivity = now
	return nil
}

func (m *MemoryStore) Expire(id string, now time.Time) (Session, bool, error) {
	e, ok := m.entry(id)
	if !ok {
		return Session{}, false, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s.Status.Terminal() {
		return e.s.clone(), false, nil
	}
	e.s.Status = StatusExpired
	e.s.EndedAt = now
	return e.s.clone(), true, nil
}

func (m *MemoryStore) ExpireIdle(cutoff, now time.Time) []Session {
	var expired []Session
	for _, e := range m.entries() {
		e.mu.Lock()
		if e.s.Status == StatusActive && e.s.LastActivity.Before(cutoff) {
			e.s.Status = StatusExpired
			e.s.EndedAt = now
			expired = append(expired, e.s.clone())
		}
		e.mu.Unlock()
	}
	return expired
}

func (m *MemoryStore) PruneTerminal(cutoff time.Time) []string {
	var prune []string
	for _, e := range m.entries() {
		e.mu.Lock()
		if e.s.Status.Terminal() && e.s.LastActivity.Before(cutoff) {
			prune = append(prune, e.s.ID)
		}
		e.mu.Unlock()
	}

	if len(prune) > 0 {
		m.mu.Lock()
		for _, id := range prune {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
	}
	return prune
}

func (m *MemoryStore) entries() []*sessionEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*sessionEntry, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e)
	}
	return out
}
