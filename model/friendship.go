package model

import "time"

// Friendship is one directed edge of the friend graph.
// A pending edge is an open request from UID to FID; an accepted friendship
// is stored as two non-pending edges, one per direction.
type Friendship struct {
	UID     int64     `gorm:"column:uid;primaryKey" json:"uid"`
	FID     int64     `gorm:"column:fid;primaryKey;index:idx_friends_fid" json:"fid"`
	Pending bool      `gorm:"column:pending;not null" json:"pending"`
	AddedAt time.Time `gorm:"column:added_at" json:"added_at"`
}

func (Friendship) TableName() string { return "friends" }
