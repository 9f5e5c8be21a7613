// Package sqlite implements the game storage interfaces over SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/duskhaven/duskhaven/internal/platform/storage/sqlitemigrate"
	"github.com/duskhaven/duskhaven/internal/services/game/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides a SQLite-backed store implementing the game storage
// interfaces and the playerio step collaborators.
//
// A Store is bound to one world partition: every player fetch and presence
// row it touches is scoped to that world id, the way a single game server
// process serves a single world.
type Store struct {
	sqlDB   *sql.DB
	worldID uint32
}

// Open opens the game SQLite store at path for one world partition and
// applies bundled migrations. This keeps startup and schema evolution in one
// place, instead of requiring callers to coordinate migrations independently.
func Open(path string, worldID uint32) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if worldID == 0 {
		return nil, fmt.Errorf("world id is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, worldID: worldID}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB returns the raw database handle; the save transaction orchestrator uses
// it to begin transactions.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// WorldID returns the world partition this store serves.
func (s *Store) WorldID() uint32 {
	if s == nil {
		return 0
	}
	return s.worldID
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
