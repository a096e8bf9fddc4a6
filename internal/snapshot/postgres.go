package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores snapshots as JSONB rows keyed by <namespace>:<key>.
type PostgresBackend struct {
	pool      *pgxpool.Pool
	namespace string
}

// OpenPostgres connects to databaseURL and creates the snapshots table.
func OpenPostgres(ctx context.Context, databaseURL, namespace string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	backend := &PostgresBackend{pool: pool, namespace: namespace}
	if err := backend.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return backend, nil
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key        TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := b.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("migrate snapshots table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) rowKey(key string) string {
	if b.namespace == "" {
		return key
	}
	return b.namespace + ":" + key
}

// Load implements Backend.
func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx, `SELECT data::text FROM snapshots WHERE key = $1`, b.rowKey(key)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *PostgresBackend) Save(ctx context.Context, key string, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO snapshots (key, data, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		b.rowKey(key), string(data))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
