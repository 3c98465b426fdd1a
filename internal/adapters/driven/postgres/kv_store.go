package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.KVStore = (*KVStore)(nil)
	_ driven.Taker   = (*KVStore)(nil)
	_ driven.Pinger  = (*KVStore)(nil)
)

// KVStore implements driven.KVStore on the ephemeral_kv table.
// Expiry is emulated with an expires_at column; expired rows are invisible
// to reads and removed by Cleanup.
type KVStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVStore creates a new PostgreSQL-backed KVStore.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// Set upserts value under key, resetting its expiry.
func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: ttl must be positive", key)
	}

	now := s.now()
	query := `
		INSERT INTO ephemeral_kv (key, value, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, now, now.Add(ttl)); err != nil {
		return fmt.Errorf("set key: %w", err)
	}
	return nil
}

// Get returns the value under key, or nil if it is absent or expired.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM ephemeral_kv WHERE key = $1 AND expires_at > $2`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key, s.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	return value, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ephemeral_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

// Take atomically retrieves and deletes key.
// Uses DELETE ... RETURNING for single-use semantics.
func (s *KVStore) Take(ctx context.Context, key string) ([]byte, error) {
	query := `
		DELETE FROM ephemeral_kv
		WHERE key = $1 AND expires_at > $2
		RETURNING value
	`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key, s.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take key: %w", err)
	}
	return value, nil
}

// Cleanup removes expired rows and returns how many were deleted.
func (s *KVStore) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM ephemeral_kv WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired keys: %w", err)
	}
	return result.RowsAffected()
}

// Ping checks if the database is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
