package session

import (
	"context"
	"sync"
	"time"

	. "github.com/curamyn/curamyn/internal/logging"
)

// SnapshotSaver is the durability hook for the in-memory store. A nil
// saver makes Save a no-op (pure in-memory tier).
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// Store holds all live sessions keyed by session id. The map lock is held
// only for lookups and membership changes, never across a turn, so
// unrelated sessions proceed concurrently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl   time.Duration
	saver SnapshotSaver
}

// NewStore creates a store with the given inactivity TTL. saver may be nil.
func NewStore(ttl time.Duration, saver SnapshotSaver) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		saver:    saver,
	}
}

// Load returns the session for an id, creating it if absent. Every load
// refreshes the activity timestamp and opportunistically sweeps expired
// sessions first.
func (st *Store) Load(sessionID string) *Session {
	st.Sweep()

	st.mu.RLock()
	s, ok := st.sessions[sessionID]
	st.mu.RUnlock()

	if ok {
		s.Touch()
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Re-check: another turn may have created it meanwhile.
	if s, ok = st.sessions[sessionID]; ok {
		s.Touch()
		return s
	}

	L_info("session: creating state", "sessionId", sessionID)
	s = newSession(sessionID)
	st.sessions[sessionID] = s
	return s
}

// Peek returns the session for an id without creating it or refreshing
// activity. Used by session termination.
func (st *Store) Peek(sessionID string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[sessionID]
}

// Remove deletes a session. Removal is all-or-nothing: the entry is gone
// after this call regardless of what the caller did with it.
func (st *Store) Remove(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[sessionID]; ok {
		delete(st.sessions, sessionID)
		L_info("session: state cleared", "sessionId", sessionID)
	}
}

// Sweep removes every session idle longer than the TTL and returns how
// many were removed. Activity timestamps are read atomically, so a sweep
// never blocks in-flight turns on other sessions.
func (st *Store) Sweep() int {
	st.mu.RLock()
	var expired []string
	for id, s := range st.sessions {
		if s.IdleFor() > st.ttl {
			expired = append(expired, id)
		}
	}
	st.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	st.mu.Lock()
	removed := 0
	for _, id := range expired {
		s, ok := st.sessions[id]
		if !ok {
			continue
		}
		// Re-check: the session may have been touched since the scan.
		if s.IdleFor() > st.ttl {
			delete(st.sessions, id)
			removed++
			L_info("session: expired state cleared", "sessionId", id)
		}
	}
	st.mu.Unlock()

	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Save persists a snapshot of the session to the durable tier. A failure
// here is logged and swallowed: it must never fail the interaction.
// Callers hold the session lock.
func (st *Store) Save(ctx context.Context, s *Session) {
	if st.saver == nil {
		L_debug("session: state updated", "sessionId", s.SessionID)
		return
	}

	if err := st.saver.SaveSnapshot(ctx, s.Snapshot()); err != nil {
		L_warn("session: snapshot save failed", "sessionId", s.SessionID, "error", err)
	}
}
