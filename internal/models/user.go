package models

import (
	"time"
)

const DefaultBio = "No bio provided."

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Bio       string    `gorm:"size:500" json:"bio"`
	AvatarURL string    `gorm:"type:text" json:"avatarUrl,omitempty"` // http(s) or data:image URL
	Karma     int       `gorm:"default:0;not null" json:"karma"`
	CreatedAt time.Time `json:"joinDate"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Filled by the store from memberships, not a column.
	JoinedSubreddits []uint `gorm:"-" json:"joinedSubreddits"`
}
