// Package core holds the collaborators shared by the friendship, activity and
// transaction services.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krtchnt/zenki/audit"
	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultLockTTL bounds how long a pair lock outlives a crashed holder.
const DefaultLockTTL = 10 * time.Second

// Deps is what every core service is built from. DB, Cache and Logger are
// required; Events and Audit may be nil.
type Deps struct {
	DB      *gorm.DB
	Cache   cache.Cache
	Events  *events.Publisher
	Audit   *audit.Service
	Logger  *zap.Logger
	LockTTL time.Duration
	// Now overrides the wall clock in tests.
	Now func() time.Time
}

// Clock returns the current UTC time at the database's microsecond precision.
func (d Deps) Clock() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().UTC().Truncate(time.Microsecond)
}

// Lock takes the pair lock for key, mapping contention to coreerr.ErrBusy.
func (d Deps) Lock(ctx context.Context, key string) (func(), error) {
	ttl := d.LockTTL
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	release, err := cache.Lock(ctx, d.Cache, key, ttl)
	if errors.Is(err, cache.ErrLocked) {
		return nil, fmt.Errorf("%s: %w", key, coreerr.ErrBusy)
	}
	if err != nil {
		return nil, coreerr.Storage("lock", err)
	}
	return release, nil
}

// Tx runs fn in one database transaction bound to ctx. Any error rolls back.
func (d Deps) Tx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return coreerr.Storage(op, d.DB.WithContext(ctx).Transaction(fn))
}

// Finish logs and audits a completed mutation.
func (d Deps) Finish(ctx context.Context, uid int64, action string, req any, err error, started time.Time) {
	if err != nil && !errors.Is(err, coreerr.ErrPreconditionViolation) && !errors.Is(err, coreerr.ErrBusy) {
		d.Logger.Error(action+" failed", zap.Int64("uid", uid), zap.Any("request", req), zap.Error(err))
	} else {
		d.Logger.Debug(action, zap.Int64("uid", uid), zap.Any("request", req), zap.Error(err))
	}
	if d.Audit != nil {
		d.Audit.Record(ctx, uid, action, req, err, started)
	}
}

// Publish emits ev to recipients once the change is committed.
func (d Deps) Publish(ctx context.Context, ev events.Event, recipients ...int64) {
	d.Events.Publish(ctx, ev, recipients...)
}
