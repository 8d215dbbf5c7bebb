package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteService_PostVotesAccumulate(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, alice, sub, "P")
	require.Equal(t, 1, p.Votes)

	seq := []string{"up", "up", "down", "up", "up"}
	var res *VoteResult
	var err error
	for _, dir := range seq {
		res, err = f.svc.Votes.Vote(f.ctx, "post", p.ID, dir)
		require.NoError(t, err)
	}

	require.NotNil(t, res.Post)
	assert.Nil(t, res.Comment)
	assert.Equal(t, VoteKindPost, res.Kind)
	assert.Equal(t, 1+3, res.Post.Votes)
	assert.Equal(t, 3, f.reloadUser(t, alice.ID).Karma)
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.VotesTotal.WithLabelValues("post", "up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VotesTotal.WithLabelValues("post", "down")))

	logs, err := f.svc.Karma.Logs(f.ctx, alice)
	require.NoError(t, err)
	require.Len(t, logs, len(seq))
	assert.Equal(t, ActionPostUpvoted, logs[0].Action)
	assert.Equal(t, ActionPostDownvoted, logs[2].Action)
	assert.Equal(t, -1, logs[2].Amount)
}

func TestVoteService_CommentVotes(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, alice, sub, "P")
	c := f.comment(t, bob, p.ID, "hello")

	res, err := f.svc.Votes.Vote(f.ctx, "comment", c.ID, "down")
	require.NoError(t, err)
	require.NotNil(t, res.Comment)
	assert.Equal(t, -1, res.Comment.Votes)
	assert.Equal(t, -1, f.reloadUser(t, bob.ID).Karma)
	assert.Equal(t, 0, f.reloadUser(t, alice.ID).Karma)

	logs, err := f.svc.Karma.Logs(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionCommentDownvoted, logs[0].Action)
}

func TestVoteService_InvalidDirection(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	sub := f.subreddit(t, alice, "golang")
	p := f.post(t, alice, sub, "P")

	_, err := f.svc.Votes.Vote(f.ctx, "post", p.ID, "sideways")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 1, f.reloadPost(t, p.ID).Votes)
	assert.Equal(t, 0, f.reloadUser(t, alice.ID).Karma)

	// direction is checked before the lookup
	_, err = f.svc.Votes.Vote(f.ctx, "post", 999, "sideways")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestVoteService_InvalidKindAndMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Votes.Vote(f.ctx, "user", 1, "up")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = f.svc.Votes.Vote(f.ctx, "post", 999, "up")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = f.svc.Votes.Vote(f.ctx, "comment", 999, "down")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKarmaAction(t *testing.T) {
	assert.Equal(t, ActionPostUpvoted, karmaAction(VoteKindPost, 1))
	assert.Equal(t, ActionPostDownvoted, karmaAction(VoteKindPost, -1))
	assert.Equal(t, ActionCommentUpvoted, karmaAction(VoteKindComment, 1))
	assert.Equal(t, ActionCommentDownvoted, karmaAction(VoteKindComment, -1))
}

func TestKarmaService_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Karma.Logs(f.ctx, nil)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}
