package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/tahmid/habit-tracker/internal/repository"
)

// BlacklistRepo implements repository.TokenBlacklist.
type BlacklistRepo struct {
	db *DB
}

var _ repository.TokenBlacklist = (*BlacklistRepo)(nil)

// Add records a revoked refresh token by its jti. INSERT OR IGNORE keeps a
// double revoke harmless at the storage level; the service rejects it
// earlier with the fixed token error.
func (r *BlacklistRepo) Add(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO token_blacklist (token_id, expires_at) VALUES (?, ?)`,
		tokenID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: blacklisting token %s: %w", tokenID, err)
	}
	return nil
}

// Contains reports whether the token jti has been revoked.
func (r *BlacklistRepo) Contains(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM token_blacklist WHERE token_id = ?`,
		tokenID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking token blacklist: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired prunes entries whose tokens can no longer pass signature
// validation anyway.
func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at <= ?`,
		now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: pruning token blacklist: %w", err)
	}
	return nil
}
