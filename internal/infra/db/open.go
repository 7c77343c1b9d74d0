// Package db opens and migrates the embedded SQLite cache database.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Open creates the SQLite connection for the local cache at the given path
// and applies the pragmas the cache relies on. A single writer connection is
// enough for a rolling cache and sidesteps SQLITE_BUSY under concurrent
// refreshes.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: sql.Open: %w", err)
	}

	database.SetMaxOpenConns(1)
	database.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("Open: PingContext: %w", err)
	}

	slog.Info("cache database opened", slog.String("path", path))
	return database, nil
}
