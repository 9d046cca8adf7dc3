package database

import (
	"errors"
	"fmt"
	"strings"
)

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// ErrUnsupportedDriver is returned for driver names folio cannot open.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ParseDriver resolves a configured driver name. An empty name is inferred
// from url: postgres URLs select Postgres, anything else the local SQLite file.
func ParseDriver(name, url string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
			return DriverPostgres, nil
		}
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}
}
