package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/curamyn/curamyn/internal/types"
)

// SaveSummary persists an end-of-session summary.
func (s *Store) SaveSummary(ctx context.Context, sessionID, userID string, summary *types.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_summaries (id, session_id, user_id, summary_json, ended_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		newID(), sessionID, userID, string(data),
		summary.EndedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return nil
}

// LoadSummary returns the most recent summary for a (user, session) pair,
// or nil if none exists.
func (s *Store) LoadSummary(ctx context.Context, userID, sessionID string) (*types.SessionSummary, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT summary_json FROM session_summaries
		WHERE user_id = ? AND session_id = ?
		ORDER BY created_at DESC LIMIT 1`,
		userID, sessionID,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	var summary types.SessionSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}

// ListSummaries returns all summaries for a user, newest first.
func (s *Store) ListSummaries(ctx context.Context, userID string) ([]types.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT summary_json FROM session_summaries
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.SessionSummary
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		var summary types.SessionSummary
		if err := json.Unmarshal([]byte(data), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}
