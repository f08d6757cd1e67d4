package store

import (
	"context"
	"encoding/json"
	"time"
)

// GetSettings returns the single platform settings document.
func (s *Store) GetSettings(ctx context.Context) (json.RawMessage, time.Time, error) {
	var data json.RawMessage
	var updatedAt time.Time
	err := s.db.QueryRow(ctx, `SELECT data, updated_at FROM settings WHERE id = 1`).Scan(&data, &updatedAt)
	return data, updatedAt, err
}

// UpsertSettings replaces the platform settings document.
func (s *Store) UpsertSettings(ctx context.Context, data json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO settings (id, data) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, data)
	return err
}
