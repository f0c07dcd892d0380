package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSlotsTable = `CREATE TABLE IF NOT EXISTS storage_slots (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend keeps slots as rows of a single JSONB table.
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgresBackend builds the backend and makes sure its table exists.
func NewPostgresBackend(ctx context.Context, db *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := db.Exec(ctx, createSlotsTable); err != nil {
		return nil, err
	}
	return &PostgresBackend{db: db}, nil
}

// Get fetches the payload stored under key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := b.db.QueryRow(ctx, `SELECT value FROM storage_slots WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Put upserts the payload for key.
func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.db.Exec(ctx, `INSERT INTO storage_slots (key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, value)
	return err
}

// Delete removes the row for key.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.Exec(ctx, `DELETE FROM storage_slots WHERE key = $1`, key)
	return err
}
