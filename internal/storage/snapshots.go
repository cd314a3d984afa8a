package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/curamyn/curamyn/internal/session"
)

// SaveSnapshot upserts a durable session snapshot. Implements
// session.SnapshotSaver.
func (s *Store) SaveSnapshot(ctx context.Context, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_snapshots (session_id, snapshot_json, last_activity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			last_activity = excluded.last_activity,
			updated_at = excluded.updated_at`,
		snap.SessionID, string(data), snap.LastActivity.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}

// DeleteSnapshot removes a session's durable snapshot (on termination).
func (s *Store) DeleteSnapshot(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM session_snapshots WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// DeleteExpiredSnapshots removes snapshots older than the durable TTL and
// returns how many were deleted. Implements session.DurableCleaner.
func (s *Store) DeleteExpiredSnapshots(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl).Unix()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM session_snapshots WHERE last_activity < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired snapshots: %w", err)
	}

	n, _ := res.RowsAffected()
	return int(n), nil
}
