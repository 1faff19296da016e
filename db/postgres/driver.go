package postgres

import (
	"github.com/krtchnt/zenki/db/pool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open creates a GORM *DB backed by PostgreSQL (pgx) with a connection pool.
func Open(dsn string, p pool.Pool, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(db); err != nil {
		return nil, err
	}
	return db, nil
}
