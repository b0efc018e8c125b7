package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/victornm/jeopardy/internal/store"
)

// OpenStore opens the snapshot backend selected by c.Driver. rc is only used by the redis
// driver and may be nil otherwise. The returned func releases the backend.
func OpenStore(ctx context.Context, c StoreConfig, rc redis.UniversalClient, prefix string) (store.KV, func(), error) {
	noop := func() {}

	switch c.Driver {
	case store.DriverMemory:
		return store.NewMemory(), noop, nil

	case store.DriverRedis:
		if rc == nil {
			return nil, nil, fmt.Errorf("redis: no client")
		}
		return store.NewRedis(rc, prefix), noop, nil

	case store.DriverPostgres:
		db, err := ConnectPostgres(ctx, c.Postgres.Addr, c.Postgres.User, c.Postgres.Pass, c.Postgres.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}

		kv, err := store.NewPostgres(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}

		return kv, db.Close, nil

	case store.DriverSQLite:
		db, err := store.OpenSQLite(ctx, c.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}

		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("server: close sqlite failed", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

func ConnectPostgres(ctx context.Context, addr, user, pass, name string) (*pgxpool.Pool, error) {
	cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", user, pass, addr, name))
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
