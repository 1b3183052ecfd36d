package models

import (
	"strconv"
	"time"
)

type User struct {
	UserID     string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	UserName   string    `json:"user_name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastActive time.Time `gorm:"index" json:"last_active"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// ChatID parses the user identifier as a Telegram chat id.
func (u *User) ChatID() (int64, bool) {
	id, err := strconv.ParseInt(u.UserID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// DisplayName falls back to the identifier when no name is known.
func (u *User) DisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.UserID
}
