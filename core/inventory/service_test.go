package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/krtchnt/zenki/audit"
	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/events"
	"github.com/krtchnt/zenki/model"
	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_WishlistAuditedAndPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := testutil.Logger(t)
	u := testutil.SeedUser(t, db, "alice")
	g := testutil.SeedGame(t, db, "Zenki Quest")

	auditSvc := audit.New(db, logger)
	pub := events.NewPublisher(ps, logger)
	svc := NewService(core.Deps{DB: db, Cache: c, Events: pub, Audit: auditSvc, Logger: logger})

	ch, cancel, err := pub.Subscribe(context.Background(), u.UID)
	require.NoError(t, err)
	defer cancel()

	next := func() events.Type {
		select {
		case ev := <-ch:
			return ev.Type
		case <-time.After(200 * time.Millisecond):
			return ""
		}
	}

	ctx := audit.WithTraceID(context.Background(), "trace-w")
	require.NoError(t, svc.AddToWishlist(ctx, u.UID, g.GID))
	assert.Equal(t, events.WishlistAdded, next())

	// Already wishlisted: audited, nothing published.
	require.NoError(t, svc.AddToWishlist(ctx, u.UID, g.GID))
	assert.Empty(t, next())

	st, err := svc.WishlistStatus(ctx, u.UID, g.GID)
	require.NoError(t, err)
	assert.Equal(t, InWishlist, st)

	require.NoError(t, svc.RemoveFromWishlist(ctx, u.UID, g.GID))
	assert.Equal(t, events.WishlistRemoved, next())
	require.NoError(t, svc.RemoveFromWishlist(ctx, u.UID, g.GID))
	assert.Empty(t, next())

	auditSvc.Stop(ctx)
	var logs []model.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 4)
	assert.Equal(t, "inventory.add_wishlist", logs[0].Action)
	assert.Equal(t, "inventory.remove_wishlist", logs[3].Action)
	assert.Equal(t, "trace-w", logs[0].TraceID)
	assert.Equal(t, u.UID, logs[0].UID)
}

func TestService_OwnedGameRemoveIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	u := testutil.SeedUser(t, db, "alice")
	g := testutil.SeedGame(t, db, "Zenki Quest")
	svc := NewService(core.Deps{DB: db, Cache: c, Logger: testutil.Logger(t)})
	ctx := context.Background()

	require.NoError(t, New(db).AddToLibrary(ctx, u.UID, g.GID))
	require.NoError(t, svc.RemoveFromWishlist(ctx, u.UID, g.GID))

	lib, err := svc.Library(ctx, u.UID)
	require.NoError(t, err)
	assert.Len(t, lib, 1)
}
