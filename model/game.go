package model

import "time"

// GameRating is the content rating of a game.
type GameRating string

const (
	RatingGeneral   GameRating = "general"
	RatingMature    GameRating = "mature"
	RatingSensitive GameRating = "sensitive"
)

// Game is a catalog entry. Read-only to the consistency core.
type Game struct {
	GID       int64      `gorm:"column:gid;primaryKey;autoIncrement" json:"gid"`
	Name      string     `gorm:"column:gname;size:128;not null" json:"gname"`
	Descr     *string    `gorm:"column:descr;type:text" json:"descr,omitempty"`
	Rating    GameRating `gorm:"column:rating;size:16;default:general" json:"rating"`
	ReleaseAt *time.Time `gorm:"column:release_at" json:"release_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Game) TableName() string { return "games" }

// GameUser is a user's inventory entry for a game: wishlisted or owned.
// The composite key keeps one row per pair, so ownership replaces a wishlist
// entry instead of coexisting with it.
type GameUser struct {
	UID      int64 `gorm:"column:uid;primaryKey" json:"uid"`
	GID      int64 `gorm:"column:gid;primaryKey" json:"gid"`
	Wishlist bool  `gorm:"column:wishlist;not null" json:"wishlist"`
}

func (GameUser) TableName() string { return "game_user" }
