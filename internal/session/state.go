// Package session provides the ephemeral per-session conversational state
// store with TTL eviction.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/types"
)

// Session is the ephemeral state for one conversation. Signal lists hold
// categorical tags only, never verbatim user text. Access to the mutable
// fields is serialized per session: callers hold the session lock for the
// whole read-modify-write of a turn.
type Session struct {
	SessionID string
	StartedAt time.Time

	// Ordered signal lists; one entry appended per successful turn at most.
	Intents    []string
	Severities []string
	Emotions   []string
	Sentiments []string

	// Most-recent-value context, overwritten rather than appended.
	LastImageAnalysis *types.ImageAnalysis
	LastDocumentText  string

	mu           sync.Mutex
	lastActivity atomic.Int64 // unix nano; atomic so the sweeper never needs the session lock
}

func newSession(sessionID string) *Session {
	s := &Session{
		SessionID: sessionID,
		StartedAt: time.Now().UTC(),
	}
	s.Touch()
	return s
}

// Lock serializes turn processing for this session. Sessions with
// different ids never block each other.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch refreshes the activity timestamp.
func (s *Session) Touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the time of the most recent reference.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// IdleFor returns how long the session has been inactive.
func (s *Session) IdleFor() time.Duration {
	return time.Since(s.LastActivity())
}

// UpdateFromResult appends the signal fields present in an analyzer result
// to the corresponding lists. Absent fields are ignored; a malformed
// record is logged and the state is left untouched. Callers hold the
// session lock.
func (s *Session) UpdateFromResult(result *types.InteractionResult) {
	if err := result.Validate(); err != nil {
		L_warn("session: ignoring malformed analyzer result", "sessionId", s.SessionID, "error", err)
		return
	}

	s.Intents = append(s.Intents, result.Intent)
	if result.Severity != "" {
		s.Severities = append(s.Severities, result.Severity)
	}
	if result.Emotion != "" {
		s.Emotions = append(s.Emotions, result.Emotion)
	}
	if result.Sentiment != "" {
		s.Sentiments = append(s.Sentiments, result.Sentiment)
	}
}

// Snapshot is a point-in-time copy of a session for the durable tier.
type Snapshot struct {
	SessionID         string               `json:"session_id"`
	StartedAt         time.Time            `json:"started_at"`
	Intents           []string             `json:"intents"`
	Severities        []string             `json:"severities"`
	Emotions          []string             `json:"emotions"`
	Sentiments        []string             `json:"sentiments"`
	LastImageAnalysis *types.ImageAnalysis `json:"last_image_analysis,omitempty"`
	LastDocumentText  string               `json:"last_document_text,omitempty"`
	LastActivity      time.Time            `json:"last_activity"`
}

// Snapshot copies the session state. Callers hold the session lock.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{
		SessionID:        s.SessionID,
		StartedAt:        s.StartedAt,
		Intents:          append([]string(nil), s.Intents...),
		Severities:       append([]string(nil), s.Severities...),
		Emotions:         append([]string(nil), s.Emotions...),
		Sentiments:       append([]string(nil), s.Sentiments...),
		LastDocumentText: s.LastDocumentText,
		LastActivity:     s.LastActivity(),
	}
	if s.LastImageAnalysis != nil {
		copied := *s.LastImageAnalysis
		snap.LastImageAnalysis = &copied
	}
	return snap
}
