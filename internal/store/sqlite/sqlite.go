package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // remote libsql/Turso driver
	_ "modernc.org/sqlite"                               // local SQLite driver
)

// OpenOptions configures the database connection.
type OpenOptions struct {
	URL         string        // sqlite path/DSN, or libsql:// / wss:// URL
	PingTimeout time.Duration // timeout for the initial ping
}

// Open connects to the database named by opts.URL and runs migrations.
// Remote libsql URLs use the libsql driver, everything else modernc sqlite.
func Open(ctx context.Context, opts OpenOptions) (*sql.DB, error) {
	driver := driverFor(opts.URL)
	dsn := opts.URL
	if driver == "sqlite" {
		dsn = sqliteDSN(opts.URL)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if isMemory(opts.URL) {
		// Every new connection to ":memory:" is a fresh, empty database.
		db.SetMaxOpenConns(1)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func driverFor(url string) string {
	if strings.HasPrefix(url, "libsql://") || strings.HasPrefix(url, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

// sqliteDSN adds the per-connection pragmas. They go in the DSN because
// database/sql opens connections lazily and a PRAGMA run through the pool
// only reaches one of them.
func sqliteDSN(url string) string {
	pragmas := []string{"_pragma=busy_timeout(5000)", "_pragma=foreign_keys(1)"}
	if !isMemory(url) {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(pragmas, "&")
}

func isMemory(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory")
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS bookmarks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT    NOT NULL CHECK (title <> ''),
		url         TEXT    NOT NULL CHECK (url <> ''),
		description TEXT    NOT NULL DEFAULT '',
		rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
	)`)
	return err
}
