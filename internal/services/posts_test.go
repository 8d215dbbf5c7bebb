package services

import (
	"testing"

	"subhive/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	sub := f.subreddit(t, alice, "golang")

	p, err := f.svc.Posts.Create(f.ctx, alice, CreatePostInput{
		Title:     "  Generics in practice ",
		Content:   "Look:\n\n![chart](https://img.example.com/chart.png)",
		Subreddit: "golang",
	})
	require.NoError(t, err)

	assert.Equal(t, "Generics in practice", p.Title)
	assert.Equal(t, models.PostKindText, p.Kind)
	assert.Equal(t, models.PostStatusVisible, p.Status)
	assert.Equal(t, 1, p.Votes)
	assert.Equal(t, 0, p.CommentsCount)
	assert.Equal(t, "https://img.example.com/chart.png", p.ImageURL)
	assert.Equal(t, sub.ID, p.SubredditID)
	assert.Equal(t, "alice", p.User.Name)
	assert.Contains(t, p.ContentHTML, "<img")
	// 作者自带的一票不计 karma
	assert.Equal(t, 0, f.reloadUser(t, alice.ID).Karma)
}

func TestPostService_CreateLink(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.subreddit(t, alice, "golang")

	p, err := f.svc.Posts.Create(f.ctx, alice, CreatePostInput{
		Title: "Go 1.23 released", Subreddit: "golang", Kind: "link", LinkURL: "https://go.dev/blog",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostKindLink, p.Kind)
	assert.Equal(t, "https://go.dev/blog", p.LinkURL)
}

func TestPostService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.subreddit(t, alice, "golang")

	cases := map[string]CreatePostInput{
		"missing title":     {Subreddit: "golang"},
		"missing subreddit": {Title: "t"},
		"link without url":  {Title: "t", Subreddit: "golang", Kind: "link"},
		"link relative url": {Title: "t", Subreddit: "golang", Kind: "link", LinkURL: "/go.dev"},
		"link ftp url":      {Title: "t", Subreddit: "golang", Kind: "link", LinkURL: "ftp://go.dev"},
		"text with url":     {Title: "t", Subreddit: "golang", LinkURL: "https://go.dev"},
		"unknown kind":      {Title: "t", Subreddit: "golang", Kind: "video"},
		"bad image url":     {Title: "t", Subreddit: "golang", ImageURL: "javascript:alert(1)"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Posts.Create(f.ctx, alice, in)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}

	_, err := f.svc.Posts.Create(f.ctx, alice, CreatePostInput{Title: "t", Subreddit: "nowhere"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.Posts.Create(f.ctx, nil, CreatePostInput{Title: "t", Subreddit: "golang"})
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestPostService_Update(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, alice, sub, "before")

	_, err := f.svc.Posts.Update(f.ctx, bob, p.ID, "stolen", "x")
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.svc.Posts.Update(f.ctx, alice, p.ID, " ", "x")
	assert.True(t, errors.Is(err, ErrValidation))

	updated, err := f.svc.Posts.Update(f.ctx, alice, p.ID, "after", "**new** body")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Contains(t, updated.ContentHTML, "<strong>new</strong>")

	_, err = f.svc.Posts.Get(f.ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, bob, sub, "P")
	c := f.comment(t, alice, p.ID, "c")
	f.reply(t, bob, c.ID, "r")
	_, err := f.svc.Posts.ToggleSaved(f.ctx, alice, p.ID)
	require.NoError(t, err)

	mallory := f.user(t, "mallory")
	assert.True(t, errors.Is(f.svc.Posts.Delete(f.ctx, mallory, p.ID), ErrForbidden))
	assert.True(t, errors.Is(f.svc.Posts.Delete(f.ctx, nil, p.ID), ErrUnauthenticated))

	// alice 是 r/golang 的版主
	require.NoError(t, f.svc.Posts.Delete(f.ctx, alice, p.ID))

	_, err = f.st.Posts().Get(f.ctx, p.ID)
	assert.Error(t, err)
	left, err := f.st.Comments().ListByPost(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	saved, err := f.svc.Posts.ListSaved(f.ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, saved)

	assert.True(t, errors.Is(f.svc.Posts.Delete(f.ctx, alice, p.ID), ErrNotFound))
}

func TestPostService_SetStatus(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, bob, sub, "spam")

	_, err := f.svc.Posts.SetStatus(f.ctx, bob, p.ID, "removed")
	assert.True(t, errors.Is(err, ErrForbidden))
	_, err = f.svc.Posts.SetStatus(f.ctx, alice, p.ID, "deleted")
	assert.True(t, errors.Is(err, ErrValidation))

	removed, err := f.svc.Posts.SetStatus(f.ctx, alice, p.ID, "removed")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusRemoved, removed.Status)

	page, err := f.svc.Feed.ListFeed(f.ctx, FeedQuery{Subreddit: "golang"})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)

	_, err = f.svc.Posts.SetStatus(f.ctx, alice, p.ID, "visible")
	require.NoError(t, err)
	page, err = f.svc.Feed.ListFeed(f.ctx, FeedQuery{Subreddit: "golang"})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
}

func TestPostService_ToggleSaved(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	sub := f.subreddit(t, alice, "golang")
	p1 := f.post(t, alice, sub, "one")
	p2 := f.post(t, alice, sub, "two")

	saved, err := f.svc.Posts.ToggleSaved(f.ctx, alice, p1.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	_, err = f.svc.Posts.ToggleSaved(f.ctx, alice, p2.ID)
	require.NoError(t, err)

	list, err := f.svc.Posts.ListSaved(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, titles(list))

	saved, err = f.svc.Posts.ToggleSaved(f.ctx, alice, p1.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	list, err = f.svc.Posts.ListSaved(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, titles(list))

	_, err = f.svc.Posts.ToggleSaved(f.ctx, alice, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = f.svc.Posts.ListSaved(f.ctx, nil)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}
