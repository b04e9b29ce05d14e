package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted in DATABASE_DRIVER.
const (
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLiteCgo = "sqlite3" // github.com/mattn/go-sqlite3
)

// DetectDriver picks a driver for dsn. A non-empty override wins.
func DetectDriver(dsn, override string) (string, error) {
	switch strings.ToLower(override) {
	case "":
	case DriverPostgres, "postgresql":
		return DriverPostgres, nil
	case DriverSQLite:
		return DriverSQLite, nil
	case DriverSQLiteCgo:
		return DriverSQLiteCgo, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_DRIVER %q", override)
	}

	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case lower == "":
		return "", fmt.Errorf("empty database url")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, nil
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		return DriverPostgres, nil
	case strings.HasPrefix(lower, "file:"), lower == ":memory:",
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("cannot infer database driver from url; set DATABASE_DRIVER")
	}
}

func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == DriverPostgres {
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
		return sql.OpenDB(connector), nil
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return db, nil
}

type dialect struct {
	driver string
}

func (d dialect) placeholder(n int) string {
	if d.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
