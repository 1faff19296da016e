package inventory

import (
	"context"
	"testing"

	"github.com/krtchnt/zenki/model"
	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Store, *gorm.DB, *model.User, *model.Game) {
	db := testutil.SetupTestDB(t)
	u := testutil.SeedUser(t, db, "alice")
	g := testutil.SeedGame(t, db, "Zenki Quest")
	return New(db), db, u, g
}

func status(t *testing.T, s *Store, uid, gid int64) Status {
	t.Helper()
	st, err := s.WishlistStatus(context.Background(), uid, gid)
	require.NoError(t, err)
	return st
}

func TestWishlistRoundTrip(t *testing.T) {
	s, _, u, g := setup(t)
	ctx := context.Background()

	assert.Equal(t, NotInWishlist, status(t, s, u.UID, g.GID))

	require.NoError(t, s.AddToWishlist(ctx, u.UID, g.GID))
	require.NoError(t, s.AddToWishlist(ctx, u.UID, g.GID))
	assert.Equal(t, InWishlist, status(t, s, u.UID, g.GID))

	list, err := s.Wishlist(ctx, u.UID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Zenki Quest", list[0].Name)

	require.NoError(t, s.RemoveFromWishlist(ctx, u.UID, g.GID))
	assert.Equal(t, NotInWishlist, status(t, s, u.UID, g.GID))
	require.NoError(t, s.RemoveFromWishlist(ctx, u.UID, g.GID))
}

func TestAddToLibrary_ReplacesWishlist(t *testing.T) {
	s, db, u, g := setup(t)
	ctx := context.Background()

	require.NoError(t, s.AddToWishlist(ctx, u.UID, g.GID))
	require.NoError(t, s.AddToLibrary(ctx, u.UID, g.GID))
	require.NoError(t, s.AddToLibrary(ctx, u.UID, g.GID))
	assert.Equal(t, Owned, status(t, s, u.UID, g.GID))

	var count int64
	db.Model(&model.GameUser{}).Where("uid = ? AND gid = ?", u.UID, g.GID).Count(&count)
	assert.Equal(t, int64(1), count)

	wish, err := s.Wishlist(ctx, u.UID)
	require.NoError(t, err)
	assert.Empty(t, wish)
	lib, err := s.Library(ctx, u.UID)
	require.NoError(t, err)
	require.Len(t, lib, 1)
	assert.Equal(t, g.GID, lib[0].GID)
}

func TestOwnedGameNotDowngraded(t *testing.T) {
	s, _, u, g := setup(t)
	ctx := context.Background()

	require.NoError(t, s.AddToLibrary(ctx, u.UID, g.GID))
	require.NoError(t, s.AddToWishlist(ctx, u.UID, g.GID))
	require.NoError(t, s.RemoveFromWishlist(ctx, u.UID, g.GID))
	assert.Equal(t, Owned, status(t, s, u.UID, g.GID))
}

func TestWithTx_RollsBack(t *testing.T) {
	s, db, u, g := setup(t)
	ctx := context.Background()

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, s.WithTx(tx).AddToLibrary(ctx, u.UID, g.GID))
		return gorm.ErrInvalidTransaction
	})
	assert.Equal(t, NotInWishlist, status(t, s, u.UID, g.GID))
}

func TestLists_EmptyNotNil(t *testing.T) {
	s, _, u, _ := setup(t)
	lib, err := s.Library(context.Background(), u.UID)
	require.NoError(t, err)
	assert.NotNil(t, lib)
	assert.Empty(t, lib)
}
