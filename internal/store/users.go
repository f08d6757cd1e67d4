package store

import (
	"context"
	"time"
)

const userColumns = `id, name, email, phone, password_hash, roles, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a new account and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, name, email, phone, passwordHash string, roles []string) (User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		name, email, phone, passwordHash, roles)
	return scanUser(row)
}

// GetUserByEmail looks a user up by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// InsertRefreshToken stores the hash of an issued refresh token.
func (s *Store) InsertRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	return err
}

// GetRefreshToken fetches a refresh token row by hash.
func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error) {
	var t RefreshToken
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	return t, err
}

// RevokeRefreshToken marks a refresh token as revoked.
func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL`, tokenHash)
	return err
}

// UpsertDevice registers or refreshes a push token for a user.
func (s *Store) UpsertDevice(ctx context.Context, userID, token, platform string) (Device, error) {
	var d Device
	row := s.db.QueryRow(ctx, `
		INSERT INTO devices (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING id, user_id, token, platform, created_at`,
		userID, token, platform)
	err := row.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt)
	return d, err
}

// ListDeviceTokens returns the push tokens registered for a user.
func (s *Store) ListDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT token FROM devices WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// DeleteDevice removes a push token owned by the user.
func (s *Store) DeleteDevice(ctx context.Context, userID, token string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM devices WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}
