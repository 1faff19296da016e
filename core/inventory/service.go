package inventory

import (
	"context"
	"time"

	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/events"
)

// Service is the user-facing side of the inventory: wishlist changes made by
// the user are audited and published. Library changes only happen through a
// purchase, which records its own audit entry.
type Service struct {
	deps  core.Deps
	store *Store
}

// NewService returns a Service on deps.DB.
func NewService(deps core.Deps) *Service {
	return &Service{deps: deps, store: New(deps.DB)}
}

// AddToWishlist wishlists gid for uid. See Store.AddToWishlist.
func (s *Service) AddToWishlist(ctx context.Context, uid, gid int64) error {
	return s.mutate(ctx, "inventory.add_wishlist", events.WishlistAdded, uid, gid, s.store.addWishlist)
}

// RemoveFromWishlist drops the wishlist entry for (uid, gid). See
// Store.RemoveFromWishlist.
func (s *Service) RemoveFromWishlist(ctx context.Context, uid, gid int64) error {
	return s.mutate(ctx, "inventory.remove_wishlist", events.WishlistRemoved, uid, gid, s.store.removeWishlist)
}

func (s *Service) mutate(ctx context.Context, op string, evType events.Type, uid, gid int64,
	fn func(context.Context, int64, int64) (bool, error)) (err error) {
	started := time.Now()
	changed := false
	defer func() {
		s.deps.Finish(ctx, uid, op, map[string]int64{"gid": gid}, err, started)
		if err == nil && changed {
			s.deps.Publish(ctx, events.Event{Type: evType, UID: uid, Data: map[string]any{"gid": gid}}, uid)
		}
	}()
	changed, err = fn(ctx, uid, gid)
	return err
}

// Wishlist lists the games uid has wishlisted.
func (s *Service) Wishlist(ctx context.Context, uid int64) ([]GameRef, error) {
	return s.store.Wishlist(ctx, uid)
}

// Library lists the games uid owns.
func (s *Service) Library(ctx context.Context, uid int64) ([]GameRef, error) {
	return s.store.Library(ctx, uid)
}

// WishlistStatus reports uid's relation to gid.
func (s *Service) WishlistStatus(ctx context.Context, uid, gid int64) (Status, error) {
	return s.store.WishlistStatus(ctx, uid, gid)
}
