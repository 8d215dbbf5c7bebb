package services

import (
	"context"
	"testing"
	"time"

	"subhive/internal/models"
	"subhive/internal/observability"
	"subhive/internal/store/memstore"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	ctx     context.Context
	st      *memstore.Store
	svc     *Services
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, Options{FeedCacheTTL: time.Minute})
}

func newFixtureWith(t *testing.T, opts Options) *fixture {
	t.Helper()
	st := memstore.New()
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	svc, err := New(st, opts)
	require.NoError(t, err)
	svc.Users.hashCost = bcrypt.MinCost
	return &fixture{ctx: context.Background(), st: st, svc: svc, metrics: opts.Metrics}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.svc.Users.Register(f.ctx, RegisterInput{Name: name, Email: name + "@example.com", Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) subreddit(t *testing.T, creator *models.User, name string) *models.Subreddit {
	t.Helper()
	sub, err := f.svc.Subreddits.Create(f.ctx, creator, CreateSubredditInput{Name: name, Description: "about " + name})
	require.NoError(t, err)
	return sub
}

func (f *fixture) post(t *testing.T, author *models.User, sub *models.Subreddit, title string) *models.Post {
	t.Helper()
	p, err := f.svc.Posts.Create(f.ctx, author, CreatePostInput{Title: title, Content: "body of " + title, Subreddit: sub.Name})
	require.NoError(t, err)
	return p
}

// rawPost inserts a post with fixed counters and timestamp, bypassing validation.
func (f *fixture) rawPost(t *testing.T, author *models.User, sub *models.Subreddit, title string, votes, comments int, createdAt time.Time) *models.Post {
	t.Helper()
	p := models.Post{
		UserID:        author.ID,
		SubredditID:   sub.ID,
		Title:         title,
		Votes:         votes,
		CommentsCount: comments,
		CreatedAt:     createdAt,
		Status:        models.PostStatusVisible,
	}
	require.NoError(t, f.st.Posts().Create(f.ctx, &p))
	return &p
}

func (f *fixture) comment(t *testing.T, author *models.User, postID uint, content string) *CommentNode {
	t.Helper()
	c, err := f.svc.Comments.Create(f.ctx, author, postID, content)
	require.NoError(t, err)
	return c
}

func (f *fixture) reply(t *testing.T, author *models.User, parentID uint, content string) *CommentNode {
	t.Helper()
	c, err := f.svc.Comments.Reply(f.ctx, author, parentID, content)
	require.NoError(t, err)
	return c
}

func (f *fixture) reloadPost(t *testing.T, id uint) *models.Post {
	t.Helper()
	p, err := f.st.Posts().Get(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	u, err := f.st.Users().Get(f.ctx, id)
	require.NoError(t, err)
	return u
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
