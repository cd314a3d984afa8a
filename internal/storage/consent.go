package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/curamyn/curamyn/internal/types"
)

// GetConsent returns the consent record for a user. A missing record
// means all flags false: privacy by default.
func (s *Store) GetConsent(ctx context.Context, userID string) (types.Consent, error) {
	var consent types.Consent
	if userID == "" {
		return consent, nil
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT memory, voice, image, document FROM consent WHERE user_id = ?`,
		userID,
	).Scan(&consent.Memory, &consent.Voice, &consent.Image, &consent.Document)

	if errors.Is(err, sql.ErrNoRows) {
		return types.Consent{}, nil
	}
	if err != nil {
		return types.Consent{}, fmt.Errorf("query consent: %w", err)
	}

	return consent, nil
}

// SetConsent upserts the consent record for a user.
func (s *Store) SetConsent(ctx context.Context, userID string, consent types.Consent) error {
	if userID == "" {
		return fmt.Errorf("user id required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consent (user_id, memory, voice, image, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			memory = excluded.memory,
			voice = excluded.voice,
			image = excluded.image,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		userID, consent.Memory, consent.Voice, consent.Image, consent.Document,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert consent: %w", err)
	}

	return nil
}
