package models

import (
	"time"
)

type Subreddit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex;size:64" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description,omitempty"`
	CreatorID   uint      `gorm:"not null;index" json:"creatorId,omitempty"`
	MemberCount int       `gorm:"default:0;not null" json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Filled from memberships on point lookups.
	ModeratorIDs []uint `gorm:"-" json:"moderators,omitempty"`
}

// Membership links a user to a subreddit. Moderators are members with
// IsModerator set; the creator is both.
type Membership struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SubredditID uint      `gorm:"not null;uniqueIndex:idx_member_sub_user" json:"subredditId"`
	Subreddit   Subreddit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_member_sub_user" json:"userId"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	IsModerator bool      `gorm:"default:false" json:"isModerator"`
	CreatedAt   time.Time `json:"createdAt"`
}
