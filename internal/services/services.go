package services

import (
	"time"

	"subhive/internal/models"
	"subhive/internal/observability"
	"subhive/internal/store"
	"subhive/internal/utils"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	feedCacheSize   = 500
	defaultPageSize = 25
	listLimit       = 50
	searchLimit     = 20
)

type Options struct {
	FeedCacheTTL time.Duration // 0 disables the feed cache
	FeedPageSize int
	Metrics      *observability.Metrics
}

// Services wires every engine over one store.
type Services struct {
	Feed          *FeedService
	Posts         *PostService
	Comments      *CommentService
	Votes         *VoteService
	Subreddits    *SubredditService
	Users         *UserService
	Search        *SearchService
	Notifications *NotificationService
	Karma         *KarmaService
}

func New(st store.Store, opts Options) (*Services, error) {
	if opts.FeedPageSize <= 0 {
		opts.FeedPageSize = defaultPageSize
	}
	cache, err := utils.NewCache[[]models.Post](feedCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create feed cache")
	}

	feed := &FeedService{
		store:    st,
		cache:    cache,
		ttl:      opts.FeedCacheTTL,
		pageSize: opts.FeedPageSize,
		metrics:  opts.Metrics,
	}
	notifications := &NotificationService{store: st}

	return &Services{
		Feed:          feed,
		Posts:         &PostService{store: st, feed: feed},
		Comments:      &CommentService{store: st, feed: feed, notifications: notifications, metrics: opts.Metrics},
		Votes:         &VoteService{store: st, feed: feed, metrics: opts.Metrics},
		Subreddits:    &SubredditService{store: st},
		Users:         &UserService{store: st, notifications: notifications, hashCost: bcrypt.DefaultCost},
		Search:        &SearchService{store: st},
		Notifications: notifications,
		Karma:         &KarmaService{store: st},
	}, nil
}
