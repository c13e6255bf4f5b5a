// Package dbconn adapts database/sql handles to the profiler's
// Connection capability. It is the only place in the tool that owns a
// connection lifecycle; the profiler itself never opens, closes, or
// pools anything.
package dbconn

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver via pgx
	_ "modernc.org/sqlite"             // pure Go sqlite driver
)

// driverNames maps the names accepted from configuration to the names
// the drivers register with database/sql.
var driverNames = map[string]string{
	"mysql":    "mysql",
	"pgx":      "pgx",
	"postgres": "pgx",
	"sqlite":   "sqlite",
}

// DB wraps a *sql.DB as a profiler Connection.
type DB struct {
	db *sql.DB
}

// Open opens a database handle for the given driver name and DSN and
// verifies it with a ping. The handle is limited to a single
// connection: the profiler runs strictly sequentially, and one
// connection keeps the timing signal comparable across queries.
func Open(driver, dsn string) (*DB, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q (supported: %s)", driver, strings.Join(Drivers(), ", "))
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}

	return &DB{db: db}, nil
}

// Execute runs one statement. The sql.Result is returned as the opaque
// value the profiler discards.
func (d *DB) Execute(query string) (any, error) {
	return d.db.Exec(query)
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Drivers returns the accepted driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(driverNames))
	for name := range driverNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
