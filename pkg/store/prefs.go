package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetPreference returns a scalar preference value, or "" with found
// false when the key has never been set.
func (s *Store) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference upserts a scalar preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// Credential returns the stored API key for a provider, or "" when no
// key is configured. A missing key is a normal condition, not an error.
func (s *Store) Credential(ctx context.Context, provider string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT api_key FROM credentials WHERE provider = ?`, provider).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get credential for %s: %w", provider, err)
	}
	return key, nil
}

// SetCredential upserts a provider API key.
func (s *Store) SetCredential(ctx context.Context, provider, apiKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (provider, api_key) VALUES (?, ?)
		ON CONFLICT(provider) DO UPDATE SET api_key = excluded.api_key
	`, provider, apiKey)
	if err != nil {
		return fmt.Errorf("failed to set credential for %s: %w", provider, err)
	}
	return nil
}

// DeleteCredential removes a provider API key.
func (s *Store) DeleteCredential(ctx context.Context, provider string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("failed to delete credential for %s: %w", provider, err)
	}
	return nil
}

// ClearAll wipes nodes, edges, and images in one transaction.
// Preferences and credentials are deliberately preserved: a canvas
// reset must not re-trigger dismissed UI or force re-entry of API keys.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "images"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}
