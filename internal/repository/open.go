package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CRTOsp3ck/mwce/internal/database"

	"github.com/rs/zerolog"
)

// Store is a persisted key/value store for client state.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	io.Closer
}

// Open selects a backend from dsn: "memory://", "redis://host:port/db" or
// "sqlite://path".
func Open(ctx context.Context, dsn string, log zerolog.Logger) (Store, error) {
	switch {
	case dsn == "" || strings.HasPrefix(dsn, "memory://"):
		return NewMemoryTokenStore(), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		rdb, err := DialRedis(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewRedisTokenStore(rdb, ""), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err := database.Open(ctx, strings.TrimPrefix(dsn, "sqlite://"), log)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewSQLiteTokenStore(db), nil
	}
	return nil, fmt.Errorf("unsupported token store %q", dsn)
}
