package models

import (
	"time"
)

// SavedPost 收藏模型 - 用户收藏帖子
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_saved_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_saved_user_post" json:"postId"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	CreatedAt time.Time `json:"createdAt"`
}
