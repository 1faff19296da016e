package sqlite

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open creates a GORM *DB backed by SQLite.
//
// SQLite allows a single writer, so the pool is capped at one connection:
// transactions queue on the pool instead of failing with SQLITE_BUSY, and an
// in-memory database stays on the one connection that created it.
func Open(path string, cfg *gorm.Config) (*gorm.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	return db, nil
}
