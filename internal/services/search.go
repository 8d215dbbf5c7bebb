package services

import (
	"context"
	"strings"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type SearchResults struct {
	Query      string             `json:"query"`
	Posts      []models.Post      `json:"posts"`
	Comments   []models.Comment   `json:"comments"`
	Subreddits []models.Subreddit `json:"subreddits"`
}

type SearchService struct {
	store store.Store
}

// Search matches q as a case-insensitive substring against visible posts,
// comments and subreddits. The three lookups run concurrently.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResults, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("search query is required")
	}

	results := &SearchResults{Query: q}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := s.store.Posts().List(gctx, store.PostFilter{
			Query:  q,
			Status: models.PostStatusVisible,
		})
		if err != nil {
			return errors.Wrap(err, "search posts")
		}
		posts = RankPosts(posts, SortNew)
		if len(posts) > searchLimit {
			posts = posts[:searchLimit]
		}
		results.Posts = posts
		return nil
	})

	g.Go(func() error {
		comments, err := s.store.Comments().Search(gctx, q, searchLimit)
		if err != nil {
			return errors.Wrap(err, "search comments")
		}
		visible := comments[:0]
		for _, c := range comments {
			if c.Post == nil || c.Post.Status == models.PostStatusVisible {
				visible = append(visible, c)
			}
		}
		results.Comments = visible
		return nil
	})

	g.Go(func() error {
		subs, err := s.store.Subreddits().Search(gctx, q, searchLimit)
		if err != nil {
			return errors.Wrap(err, "search subreddits")
		}
		results.Subreddits = subs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
