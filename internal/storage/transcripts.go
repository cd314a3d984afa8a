package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/curamyn/curamyn/internal/types"
)

// AppendTranscript adds one line to the chat-history log. The transcript
// is display-only; orchestration never reads it back.
func (s *Store) AppendTranscript(ctx context.Context, userID, sessionID string, entry types.TranscriptEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (user_id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, sessionID, entry.Role, entry.Content, ts.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert transcript entry: %w", err)
	}

	return nil
}

// GetTranscript returns the chat-history log for a (user, session) pair
// in insertion order.
func (s *Store) GetTranscript(ctx context.Context, userID, sessionID string) ([]types.TranscriptEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM transcripts
		WHERE user_id = ? AND session_id = ?
		ORDER BY id ASC`,
		userID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var entries []types.TranscriptEntry
	for rows.Next() {
		var entry types.TranscriptEntry
		var ts int64
		if err := rows.Scan(&entry.Role, &entry.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		entry.Timestamp = time.Unix(ts, 0).UTC()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteTranscript removes the chat-history log for a (user, session) pair.
func (s *Store) DeleteTranscript(ctx context.Context, userID, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM transcripts WHERE user_id = ? AND session_id = ?",
		userID, sessionID); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}
