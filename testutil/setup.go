package testutil

import (
	"testing"

	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/config"
	dbadapter "github.com/krtchnt/zenki/db"
	dbsqlite "github.com/krtchnt/zenki/db/sqlite"
	"github.com/krtchnt/zenki/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: dbsqlite.MemoryPath,
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache creates a local Cache and PubSub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	cfg := cache.CacheConfig{} // empty RedisAddr → local
	c, err := cache.NewCache(cfg)
	require.NoError(t, err, "SetupTestCache: NewCache")
	ps, err := cache.NewPubSub(cfg)
	require.NoError(t, err, "SetupTestCache: NewPubSub")
	return c, ps
}

// Logger returns a development logger for tests.
func Logger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := zap.NewDevelopment()
	require.NoError(t, err)
	return l
}

// SeedUser inserts a user with the given name.
func SeedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedGame inserts a game with the given name.
func SeedGame(t *testing.T, db *gorm.DB, name string) *model.Game {
	t.Helper()
	g := &model.Game{Name: name, Rating: model.RatingGeneral}
	require.NoError(t, db.Create(g).Error)
	return g
}

// SeedPurchase inserts a purchase of kind typ for game gid.
func SeedPurchase(t *testing.T, db *gorm.DB, gid int64, typ model.PurchaseType, descr string) *model.Purchase {
	t.Helper()
	p := &model.Purchase{GID: gid, PurchaseType: typ, Price: 19.99, Descr: &descr}
	require.NoError(t, db.Create(p).Error)
	return p
}
