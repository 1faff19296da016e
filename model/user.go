package model

import "time"

// User is the identity subsystem's account row. The core only reads uid and uname.
type User struct {
	UID       int64     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Name      string    `gorm:"column:uname;size:64;not null" json:"uname"`
	Email     *string   `gorm:"column:email;size:128" json:"email,omitempty"`
	Bio       *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
