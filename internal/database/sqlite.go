package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Open opens the sqlite database at path, retrying while the file is
// locked by another process.
func Open(ctx context.Context, path string, log zerolog.Logger) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		var db *sql.DB
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		db.SetMaxOpenConns(1)
		if err = db.PingContext(ctx); err == nil {
			log.Debug().Str("path", path).Int("attempt", attempt).Msg("sqlite opened")
			return db, nil
		}
		_ = db.Close()
		log.Warn().Err(err).Int("attempt", attempt).Msg("sqlite ping failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("open sqlite %s after 5 attempts: %w", path, err)
}
