package mysql

import (
	"github.com/krtchnt/zenki/db/pool"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open creates a GORM *DB backed by MySQL with a connection pool.
// The DSN should include parseTime=true so timestamps scan into time.Time.
func Open(dsn string, p pool.Pool, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(db); err != nil {
		return nil, err
	}
	return db, nil
}
