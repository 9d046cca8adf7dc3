package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds database configuration.
type Config struct {
	// Driver may be empty; see ParseDriver.
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to ~/.folio/folio.db. MemoryPath opens a private
	// in-memory database.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

// Opener opens a Connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

// Drivers register themselves from their package init, so a binary links only
// the backends it imports.
var openers = map[Driver]Opener{}

// Register makes a driver available to NewConnection.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// NewConnection opens the database described by cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := ParseDriver(string(cfg.Driver), cfg.URL)
	if err != nil {
		return nil, err
	}
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("%s driver not linked in", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".folio", "folio.db")
}

// MemoryPath selects an in-memory SQLite database.
const MemoryPath = ":memory:"

// EnsureDirectory creates the parent directory of a database file.
func EnsureDirectory(path string) error {
	if path == MemoryPath {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
