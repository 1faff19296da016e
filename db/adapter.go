package db

import (
	"fmt"

	"github.com/krtchnt/zenki/config"
	dbmysql "github.com/krtchnt/zenki/db/mysql"
	"github.com/krtchnt/zenki/db/pool"
	dbpostgres "github.com/krtchnt/zenki/db/postgres"
	dbsqlite "github.com/krtchnt/zenki/db/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ModeSQLite   = "sqlite"
	ModeMySQL    = "mysql"
	ModePostgres = "postgres"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.LogQueries {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}
	p := pool.Pool{MaxOpen: cfg.MaxOpen, MaxIdle: cfg.MaxIdle, MaxLife: cfg.MaxLife}

	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath, gcfg)
	case ModeMySQL:
		return dbmysql.Open(cfg.DSN, p, gcfg)
	case ModePostgres:
		return dbpostgres.Open(cfg.DSN, p, gcfg)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
