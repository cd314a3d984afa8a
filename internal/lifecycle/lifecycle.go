// Package lifecycle handles session termination: summarization, durable
// handoff, and removal of in-memory state.
package lifecycle

import (
	"context"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/summary"
	"github.com/curamyn/curamyn/internal/types"
)

// ConsentSource reads durable consent records.
type ConsentSource interface {
	GetConsent(ctx context.Context, userID string) (types.Consent, error)
}

// SummaryWriter persists session summaries.
type SummaryWriter interface {
	SaveSummary(ctx context.Context, sessionID, userID string, s *types.SessionSummary) error
}

// SnapshotDeleter removes a session's durable snapshot on termination.
type SnapshotDeleter interface {
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Lifecycle finalizes sessions on logout or expiry.
type Lifecycle struct {
	store      *session.Store
	consent    ConsentSource
	summarizer *summary.Summarizer
	summaries  SummaryWriter
	snapshots  SnapshotDeleter // may be nil for the pure in-memory tier
}

// New creates a lifecycle manager.
func New(store *session.Store, consent ConsentSource, summarizer *summary.Summarizer, summaries SummaryWriter, snapshots SnapshotDeleter) *Lifecycle {
	return &Lifecycle{
		store:      store,
		consent:    consent,
		summarizer: summarizer,
		summaries:  summaries,
		snapshots:  snapshots,
	}
}

// EndSession finalizes a session. The in-memory state is removed even if
// summarization or persistence fails: memory must not outlive a
// termination request.
func (l *Lifecycle) EndSession(ctx context.Context, sessionID, userID string) {
	state := l.store.Peek(sessionID)
	if state == nil {
		L_info("lifecycle: no in-memory session to end", "sessionId", sessionID)
		return
	}

	defer func() {
		l.store.Remove(sessionID)
		if l.snapshots != nil {
			if err := l.snapshots.DeleteSnapshot(ctx, sessionID); err != nil {
				L_warn("lifecycle: snapshot delete failed", "sessionId", sessionID, "error", err)
			}
		}
	}()

	if userID == "" {
		return
	}

	consent, err := l.consent.GetConsent(ctx, userID)
	if err != nil {
		L_warn("lifecycle: consent read failed, skipping summary", "sessionId", sessionID, "error", err)
		return
	}
	if !consent.Memory {
		return
	}

	state.Lock()
	snap := state.Snapshot()
	state.Unlock()

	sum := l.summarizer.Generate(ctx, snap)
	if err := l.summaries.SaveSummary(ctx, sessionID, userID, sum); err != nil {
		L_error("lifecycle: summary store failed", "sessionId", sessionID, "error", err)
		return
	}

	L_info("lifecycle: session summary stored", "sessionId", sessionID)
}
