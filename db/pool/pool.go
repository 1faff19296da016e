package pool

import (
	"time"

	"gorm.io/gorm"
)

// Pool configures the database/sql connection pool behind a gorm handle.
type Pool struct {
	MaxOpen int
	MaxIdle int
	MaxLife time.Duration
}

// Apply sets the pool limits on db. Zero values keep the database/sql defaults.
func (p Pool) Apply(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if p.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(p.MaxLife)
	return nil
}
