package services

import (
	"context"
	"fmt"
	"time"

	"subhive/internal/models"
	"subhive/internal/observability"
	"subhive/internal/store"
	"subhive/internal/utils"

	"github.com/pkg/errors"
)

const (
	scopeGlobal    = "global"
	scopeSubreddit = "subreddit"
	scopeHome      = "home"
	scopeUser      = "user"

	feedCachePrefix = "feed:"
)

// FeedQuery selects a feed. Subreddit takes precedence over ViewerID; with
// neither set the global feed is returned.
type FeedQuery struct {
	Sort      string
	Page      int
	Subreddit string
	ViewerID  uint
}

type FeedPage struct {
	Posts   []models.Post `json:"posts"`
	Sort    PostSort      `json:"sort"`
	Page    int           `json:"page"`
	HasMore bool          `json:"hasMore"`
}

// FeedService ranks visible posts. Global and per-subreddit rankings are
// cached until the TTL passes or a post changes.
type FeedService struct {
	store    store.Store
	cache    *utils.Cache[[]models.Post]
	ttl      time.Duration
	pageSize int
	metrics  *observability.Metrics
}

func (s *FeedService) ListFeed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	key := ParsePostSort(q.Sort)

	var (
		ranked []models.Post
		scope  string
		err    error
	)
	switch {
	case q.Subreddit != "":
		scope = scopeSubreddit
		sub, lookup := s.store.Subreddits().GetByName(ctx, q.Subreddit)
		if lookup != nil {
			return nil, lookupErr(lookup, "subreddit")
		}
		ranked, err = s.cached(ctx, fmt.Sprintf("%sr:%d:%s", feedCachePrefix, sub.ID, key), store.PostFilter{
			SubredditIDs: []uint{sub.ID},
			Status:       models.PostStatusVisible,
		}, key)
	case q.ViewerID != 0:
		scope = scopeHome
		ranked, err = s.home(ctx, q.ViewerID, key)
	default:
		scope = scopeGlobal
		ranked, err = s.cached(ctx, feedCachePrefix+"global:"+string(key), store.PostFilter{
			Status: models.PostStatusVisible,
		}, key)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordFeedRequest(string(key), scope)
	return s.page(ranked, key, q.Page), nil
}

// ListByAuthor ranks a user's visible posts, newest first unless sortKey says otherwise.
func (s *FeedService) ListByAuthor(ctx context.Context, name, sortKey string, page int) (*FeedPage, error) {
	author, err := s.store.Users().GetByName(ctx, name)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	key := SortNew
	if sortKey != "" {
		key = ParsePostSort(sortKey)
	}
	posts, err := s.store.Posts().List(ctx, store.PostFilter{AuthorID: author.ID, Status: models.PostStatusVisible})
	if err != nil {
		return nil, errors.Wrap(err, "list user posts")
	}
	s.metrics.RecordFeedRequest(string(key), scopeUser)
	return s.page(RankPosts(posts, key), key, page), nil
}

// Invalidate drops every cached ranking. Call after any post mutation.
func (s *FeedService) Invalidate() {
	s.cache.DeletePrefix(feedCachePrefix)
}

func (s *FeedService) home(ctx context.Context, viewerID uint, key PostSort) ([]models.Post, error) {
	viewer, err := s.store.Users().Get(ctx, viewerID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	// 未加入任何社区时返回空流，不回退到全站
	if len(viewer.JoinedSubreddits) == 0 {
		return []models.Post{}, nil
	}
	posts, err := s.store.Posts().List(ctx, store.PostFilter{
		SubredditIDs: viewer.JoinedSubreddits,
		Status:       models.PostStatusVisible,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list home feed")
	}
	return RankPosts(posts, key), nil
}

func (s *FeedService) cached(ctx context.Context, cacheKey string, filter store.PostFilter, key PostSort) ([]models.Post, error) {
	if s.ttl > 0 {
		if posts, ok := s.cache.Get(cacheKey); ok {
			s.metrics.RecordFeedCacheHit()
			return posts, nil
		}
	}
	posts, err := s.store.Posts().List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list feed")
	}
	ranked := RankPosts(posts, key)
	if s.ttl > 0 {
		s.cache.Set(cacheKey, ranked, s.ttl)
	}
	return ranked, nil
}

func (s *FeedService) page(ranked []models.Post, key PostSort, page int) *FeedPage {
	if page < 1 {
		page = 1
	}
	posts, more := paginate(ranked, page, s.pageSize)
	return &FeedPage{Posts: posts, Sort: key, Page: page, HasMore: more}
}
