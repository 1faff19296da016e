// Package inventory implements the wishlist and library primitives over the
// game_user table. A row with wishlist=true is a wishlist entry; a row with
// wishlist=false is an owned game.
package inventory

import (
	"context"

	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status is a user's relation to one game.
type Status string

const (
	NotInWishlist Status = "not_in_wishlist"
	InWishlist    Status = "in_wishlist"
	Owned         Status = "owned"
)

// GameRef is a game as listed in a wishlist or library.
type GameRef struct {
	GID    int64            `gorm:"column:gid" json:"gid"`
	Name   string           `gorm:"column:name" json:"gname"`
	Rating model.GameRating `gorm:"column:rating" json:"rating"`
}

// Store reads and writes inventory rows.
type Store struct {
	db *gorm.DB
}

// New returns a Store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store whose statements run inside tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// AddToWishlist wishlists gid for uid. An existing row, wishlisted or owned,
// is left untouched so ownership is never downgraded.
func (s *Store) AddToWishlist(ctx context.Context, uid, gid int64) error {
	_, err := s.addWishlist(ctx, uid, gid)
	return err
}

func (s *Store) addWishlist(ctx context.Context, uid, gid int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.GameUser{UID: uid, GID: gid, Wishlist: true})
	if res.Error != nil {
		return false, coreerr.Storage("inventory.add_wishlist", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RemoveFromWishlist deletes the wishlist entry for (uid, gid). Owned rows are
// kept. Missing rows are not an error.
func (s *Store) RemoveFromWishlist(ctx context.Context, uid, gid int64) error {
	_, err := s.removeWishlist(ctx, uid, gid)
	return err
}

func (s *Store) removeWishlist(ctx context.Context, uid, gid int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("uid = ? AND gid = ? AND wishlist = ?", uid, gid, true).
		Delete(&model.GameUser{})
	if res.Error != nil {
		return false, coreerr.Storage("inventory.remove_wishlist", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AddToLibrary marks gid as owned by uid, replacing a wishlist entry if one
// is present. Idempotent.
func (s *Store) AddToLibrary(ctx context.Context, uid, gid int64) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}, {Name: "gid"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"wishlist": false}),
		}).
		Create(&model.GameUser{UID: uid, GID: gid, Wishlist: false}).Error
	return coreerr.Storage("inventory.add_library", err)
}

// Wishlist lists the games uid has wishlisted, by name.
func (s *Store) Wishlist(ctx context.Context, uid int64) ([]GameRef, error) {
	return s.list(ctx, "inventory.wishlist", uid, true)
}

// Library lists the games uid owns, by name.
func (s *Store) Library(ctx context.Context, uid int64) ([]GameRef, error) {
	return s.list(ctx, "inventory.library", uid, false)
}

func (s *Store) list(ctx context.Context, op string, uid int64, wishlist bool) ([]GameRef, error) {
	refs := make([]GameRef, 0)
	err := s.db.WithContext(ctx).
		Table("game_user AS gu").
		Select("g.gid AS gid, g.gname AS name, g.rating AS rating").
		Joins("JOIN games AS g ON g.gid = gu.gid").
		Where("gu.uid = ? AND gu.wishlist = ?", uid, wishlist).
		Order("g.gname ASC, g.gid ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, coreerr.Storage(op, err)
	}
	return refs, nil
}

// WishlistStatus reports whether gid is wishlisted, owned, or neither for uid.
func (s *Store) WishlistStatus(ctx context.Context, uid, gid int64) (Status, error) {
	var rows []model.GameUser
	err := s.db.WithContext(ctx).
		Where("uid = ? AND gid = ?", uid, gid).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", coreerr.Storage("inventory.status", err)
	}
	switch {
	case len(rows) == 0:
		return NotInWishlist, nil
	case rows[0].Wishlist:
		return InWishlist, nil
	default:
		return Owned, nil
	}
}
