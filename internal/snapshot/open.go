package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/cadence/internal/config"
)

// connectTimeout bounds connecting to network backends.
const connectTimeout = 5 * time.Second

// Open returns the Backend selected by cfg.
func Open(cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case "", config.BackendFile:
		return NewFileBackend(cfg.Dir), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return OpenRedis(ctx, cfg.RedisURL, cfg.Namespace)
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return OpenPostgres(ctx, cfg.PostgresURL, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
