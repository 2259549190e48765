// Package postgres implements the versioned KV store contract on a single
// kv_entries table. CAS is a conditional UPDATE on the version column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradequest/tradequest/internal/store"
)

// Store is the pgx-backed implementation of store.Store.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store on the given pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, bucket, key string) (store.Record, error) {
	rec := store.Record{Key: key}
	err := s.db.QueryRow(ctx, `
		SELECT value, version
		FROM kv_entries
		WHERE bucket = $1 AND key = $2
	`, bucket, key).Scan(&rec.Value, &rec.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Record{}, store.ErrNotFound
		}
		return store.Record{}, fmt.Errorf("failed to get %s/%s: %w", bucket, key, err)
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, bucket, key string, value []byte) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO kv_entries (bucket, key, value, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (bucket, key) DO NOTHING
	`, bucket, key, value)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create %s/%s: %w", bucket, key, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, bucket, key string, value []byte, expectedVersion int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE kv_entries
		SET value = $4, version = version + 1, updated_at = now()
		WHERE bucket = $1 AND key = $2 AND version = $3
	`, bucket, key, expectedVersion, value)
	if err != nil {
		return fmt.Errorf("failed to cas %s/%s: %w", bucket, key, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the key is gone or the version moved under us.
	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM kv_entries WHERE bucket = $1 AND key = $2)
	`, bucket, key).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", bucket, key, err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrVersionConflict
}

func (s *Store) List(ctx context.Context, bucket, prefix string) ([]store.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT key, value, version
		FROM kv_entries
		WHERE bucket = $1 AND key LIKE $2 || '%'
		ORDER BY key
	`, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s/%s*: %w", bucket, prefix, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", bucket, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", bucket, err)
	}
	return out, nil
}
