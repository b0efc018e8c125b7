// Package store persists the board and the players as JSON snapshots in a key-value store.
package store

import (
	"context"

	"github.com/victornm/jeopardy/internal/errors"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// KV is a durable key-value store. Get returns an error with errors.CodeNotFound when the key
// is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

func notFound(key string) error {
	return errors.New(errors.CodeNotFound, errors.WithMessagef("key not found: %s", key))
}
