// Package sqlstore implements the association store over database/sql via
// sqlx. Queries are written with '?' placeholders and rebound per driver, so
// the same repository serves Postgres in production and SQLite locally.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"cotdex/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to url with driver and verifies the connection.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}
	if url == "" {
		return nil, errors.ConfigInvalid("database URL is required")
	}

	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, errors.DataSource("open database", err)
	}
	if driver == DriverSQLite && isSQLiteMemory(url) {
		// Every new connection to :memory: is a separate, empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DataSource("ping database", err)
	}
	return db, nil
}

func isSQLiteMemory(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory")
}
