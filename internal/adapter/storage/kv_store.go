package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// KVStore is a namespaced key-value table backing the place cache and
// mute preferences. Values are opaque strings; callers own the encoding.
type KVStore struct {
	db *pgxpool.Pool
}

// NewKVStore creates a new key-value store.
func NewKVStore(db *pgxpool.Pool) *KVStore {
	return &KVStore{
		db: db,
	}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating kv_entries table: %w", err)
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`

	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value under key, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = $2, updated_at = now()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("error writing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing an absent key is not an error.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`

	if _, err := s.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("error deleting key %q: %w", key, err)
	}
	return nil
}
