// Package store defines the persistence collaborator consumed by the feed and
// comment engines. Implementations live in gormstore (Postgres) and memstore
// (in-process, used for local runs and tests).
package store

import (
	"context"
	"errors"

	"subhive/internal/models"
)

var (
	// ErrNotFound is returned by point lookups and targeted updates when the
	// referenced row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique name or email is already taken.
	ErrDuplicate = errors.New("store: duplicate")
)

// Store groups the entity stores. InTx runs fn against a view of the store
// whose operations commit or fail together.
type Store interface {
	Posts() PostStore
	Comments() CommentStore
	Users() UserStore
	Subreddits() SubredditStore
	Notifications() NotificationStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// PostFilter narrows a post range query. Zero values mean "no constraint";
// a non-nil but empty SubredditIDs matches nothing.
type PostFilter struct {
	SubredditIDs []uint
	AuthorID     uint
	Status       models.PostStatus
	Query        string // case-insensitive substring over title and content
	Limit        int
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id uint) (*models.Post, error)
	// List returns matching posts in storage (id) order.
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdateContent(ctx context.Context, id uint, title, content string) error
	SetStatus(ctx context.Context, id uint, status models.PostStatus) error
	AddVotes(ctx context.Context, id uint, delta int) error
	AddCommentsCount(ctx context.Context, id uint, delta int) error
	// Delete removes the post together with its comments and saved entries.
	Delete(ctx context.Context, id uint) error

	ToggleSaved(ctx context.Context, userID, postID uint) (saved bool, err error)
	ListSaved(ctx context.Context, userID uint) ([]models.Post, error)
}

type CommentStore interface {
	// Create inserts the comment. When ParentID is set the new id is
	// appended to the parent's reply list.
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns every comment of the post in storage order with
	// ReplyIDs populated.
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	// ListByAuthor returns the author's comments newest first with Post set.
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Comment, error)
	Search(ctx context.Context, query string, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	AddVotes(ctx context.Context, id uint, delta int) error
	// Delete removes the given comments in order.
	Delete(ctx context.Context, ids []uint) error
	// DetachReply removes childID from parentID's reply list.
	DetachReply(ctx context.Context, parentID, childID uint) error
}

// UserUpdate carries optional profile fields; nil fields are left as is.
type UserUpdate struct {
	Bio       *string
	AvatarURL *string
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uint, update UserUpdate) error
	// AddKarma writes a ledger row and applies delta to the user's karma.
	AddKarma(ctx context.Context, userID uint, delta int, action string) error
	KarmaLogs(ctx context.Context, userID uint, limit int) ([]models.KarmaLog, error)
}

type SubredditStore interface {
	// Create inserts the subreddit and makes its creator a moderator member.
	Create(ctx context.Context, sub *models.Subreddit) error
	Get(ctx context.Context, id uint) (*models.Subreddit, error)
	GetByName(ctx context.Context, name string) (*models.Subreddit, error)
	List(ctx context.Context) ([]models.Subreddit, error)
	Search(ctx context.Context, query string, limit int) ([]models.Subreddit, error)
	// AddMember and RemoveMember have set semantics and keep MemberCount
	// equal to the member set size.
	AddMember(ctx context.Context, subID, userID uint) error
	RemoveMember(ctx context.Context, subID, userID uint) error
	JoinedBy(ctx context.Context, userID uint) ([]uint, error)
	IsModerator(ctx context.Context, subID, userID uint) (bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, userID, id uint) error
}
