package models

import (
	"time"
)

type PostKind string

const (
	PostKindText PostKind = "text"
	PostKindLink PostKind = "link"
)

type PostStatus string

const (
	PostStatusVisible PostStatus = "visible"
	PostStatusRemoved PostStatus = "removed"
)

type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"authorId"`
	User          User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	SubredditID   uint       `gorm:"not null;index" json:"subredditId"`
	Subreddit     Subreddit  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"subreddit"`
	Title         string     `gorm:"not null" json:"title"`
	Content       string     `gorm:"type:text" json:"content,omitempty"`
	Kind          PostKind   `gorm:"type:varchar(8);not null;default:'text'" json:"postType"`
	LinkURL       string     `gorm:"type:text" json:"linkUrl,omitempty"`
	ImageURL      string     `gorm:"type:text" json:"imageUrl,omitempty"`
	Votes         int        `gorm:"default:0;not null" json:"votes"`
	CommentsCount int        `gorm:"default:0;not null" json:"commentsCount"`
	Status        PostStatus `gorm:"type:varchar(10);not null;default:'visible';index" json:"status"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// 非数据库字段，详情页渲染后的 HTML
	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}
