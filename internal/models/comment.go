package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"authorId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ParentID  *uint     `gorm:"index" json:"parentId,omitempty"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Votes     int       `gorm:"default:0;not null" json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Ordered reply ids in the order they were appended. The store fills it;
	// gormstore derives it from ParentID.
	ReplyIDs []uint `gorm:"-" json:"replyIds"`
}
