package model

import (
	"fmt"
	"time"
)

// GameInteraction is a play session of a user in a game.
// DurationUs is nil while the session is open. OpenSlot mirrors that state
// under a unique index so the database rejects a second open session for the
// same (uid, gid).
type GameInteraction struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID         int64     `gorm:"column:uid;not null;index:idx_interaction_pair,priority:1" json:"uid"`
	GID         int64     `gorm:"column:gid;not null;index:idx_interaction_pair,priority:2" json:"gid"`
	StartplayAt time.Time `gorm:"column:startplay_at;not null;index:idx_interaction_pair,priority:3" json:"startplay_at"`
	DurationUs  *int64    `gorm:"column:duration" json:"duration_us"`
	OpenSlot    *string   `gorm:"column:open_slot;size:48;uniqueIndex:idx_interaction_open" json:"-"`
}

func (GameInteraction) TableName() string { return "game_interaction" }

// Open reports whether the session is still in progress.
func (g *GameInteraction) Open() bool { return g.DurationUs == nil }

// Duration returns the closed session length, or zero while open.
func (g *GameInteraction) Duration() time.Duration {
	if g.DurationUs == nil {
		return 0
	}
	return time.Duration(*g.DurationUs) * time.Microsecond
}

// OpenSlotKey is the value stored in OpenSlot while (uid, gid) has an open session.
func OpenSlotKey(uid, gid int64) string {
	return fmt.Sprintf("%d:%d", uid, gid)
}
