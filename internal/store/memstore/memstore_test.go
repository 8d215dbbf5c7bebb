package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Store, *models.User, *models.Subreddit, *models.Post) {
	t.Helper()
	ctx := context.Background()
	s := New()
	u := &models.User{Name: "alice", Email: "alice@example.com"}
	require.NoError(t, s.Users().Create(ctx, u))
	sub := &models.Subreddit{Name: "golang", Description: "Gophers", CreatorID: u.ID}
	require.NoError(t, s.Subreddits().Create(ctx, sub))
	p := &models.Post{UserID: u.ID, SubredditID: sub.ID, Title: "hello"}
	require.NoError(t, s.Posts().Create(ctx, p))
	return s, u, sub, p
}

func TestUsers_UniqueNameAndEmail(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, &models.User{Name: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	err = s.Users().Create(ctx, &models.User{Name: "bob", Email: "alice@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Users().Get(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPosts_ViewAttachesRelations(t *testing.T) {
	s, u, sub, p := seed(t)
	ctx := context.Background()

	assert.Equal(t, models.PostKindText, p.Kind)
	assert.Equal(t, models.PostStatusVisible, p.Status)
	assert.Equal(t, u.Name, p.User.Name)
	assert.Equal(t, sub.Name, p.Subreddit.Name)

	got, err := s.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	got.Title = "mutated"
	again, err := s.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Title)
}

func TestPosts_ListFilter(t *testing.T) {
	s, u, sub, _ := seed(t)
	ctx := context.Background()
	other := &models.Subreddit{Name: "rust", Description: "Crabs", CreatorID: u.ID}
	require.NoError(t, s.Subreddits().Create(ctx, other))
	require.NoError(t, s.Posts().Create(ctx, &models.Post{UserID: u.ID, SubredditID: other.ID, Title: "Borrow checker"}))

	all, err := s.Posts().List(ctx, store.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.Posts().List(ctx, store.PostFilter{SubredditIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	golang, err := s.Posts().List(ctx, store.PostFilter{SubredditIDs: []uint{sub.ID}})
	require.NoError(t, err)
	require.Len(t, golang, 1)
	assert.Equal(t, "hello", golang[0].Title)

	found, err := s.Posts().List(ctx, store.PostFilter{Query: "BORROW"})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestComments_ReplyListAndDelete(t *testing.T) {
	s, u, _, p := seed(t)
	ctx := context.Background()

	root := &models.Comment{PostID: p.ID, UserID: u.ID, Content: "root"}
	require.NoError(t, s.Comments().Create(ctx, root))
	child := &models.Comment{PostID: p.ID, UserID: u.ID, ParentID: &root.ID, Content: "child"}
	require.NoError(t, s.Comments().Create(ctx, child))

	missing := uint(999)
	err := s.Comments().Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, ParentID: &missing})
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Comments().ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []uint{child.ID}, list[0].ReplyIDs)
	assert.Equal(t, []uint{}, list[1].ReplyIDs)

	require.NoError(t, s.Comments().Delete(ctx, []uint{child.ID}))
	require.NoError(t, s.Comments().DetachReply(ctx, root.ID, child.ID))
	got, err := s.Comments().Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ReplyIDs)
}

func TestPosts_DeleteCascades(t *testing.T) {
	s, u, _, p := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "c"}))
	saved, err := s.Posts().ToggleSaved(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	require.NoError(t, s.Posts().Delete(ctx, p.ID))

	comments, err := s.Comments().ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	list, err := s.Posts().ListSaved(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID), store.ErrNotFound)
}

func TestSubreddits_MembershipSetSemantics(t *testing.T) {
	s, u, sub, _ := seed(t)
	ctx := context.Background()
	bob := &models.User{Name: "bob", Email: "bob@example.com"}
	require.NoError(t, s.Users().Create(ctx, bob))

	require.NoError(t, s.Subreddits().AddMember(ctx, sub.ID, bob.ID))
	require.NoError(t, s.Subreddits().AddMember(ctx, sub.ID, bob.ID))
	got, err := s.Subreddits().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MemberCount)
	assert.Equal(t, []uint{u.ID}, got.ModeratorIDs)

	isMod, err := s.Subreddits().IsModerator(ctx, sub.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, isMod)

	require.NoError(t, s.Subreddits().RemoveMember(ctx, sub.ID, bob.ID))
	require.NoError(t, s.Subreddits().RemoveMember(ctx, sub.ID, bob.ID))
	got, err = s.Subreddits().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberCount)

	assert.ErrorIs(t, s.Subreddits().AddMember(ctx, 404, bob.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.Subreddits().Create(ctx, &models.Subreddit{Name: "golang"}), store.ErrDuplicate)
}

func TestUsers_AddKarmaWritesLedger(t *testing.T) {
	s, u, _, _ := seed(t)
	ctx := context.Background()

	require.NoError(t, s.Users().AddKarma(ctx, u.ID, 1, "post upvoted"))
	require.NoError(t, s.Users().AddKarma(ctx, u.ID, -1, "post downvoted"))
	require.NoError(t, s.Users().AddKarma(ctx, u.ID, 1, "post upvoted"))

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Karma)

	logs, err := s.Users().KarmaLogs(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 1, logs[0].Amount)
	assert.Equal(t, -1, logs[1].Amount)
	assert.ErrorIs(t, s.Users().AddKarma(ctx, 404, 1, "x"), store.ErrNotFound)
}

func TestInTx_NestedCallsDoNotDeadlock(t *testing.T) {
	s, _, _, p := seed(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.Posts().AddVotes(ctx, p.ID, 1))
		return tx.InTx(ctx, func(inner store.Store) error {
			return inner.Posts().AddCommentsCount(ctx, p.ID, 2)
		})
	})
	require.NoError(t, err)

	sentinel := errors.New("boom")
	assert.ErrorIs(t, s.InTx(ctx, func(tx store.Store) error { return sentinel }), sentinel)

	got, err := s.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestConcurrentVotes(t *testing.T) {
	s, _, _, p := seed(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Posts().AddVotes(ctx, p.ID, 1)
		}()
	}
	wg.Wait()

	got, err := s.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Votes)
}

func TestNotifications_Ownership(t *testing.T) {
	s, u, _, p := seed(t)
	ctx := context.Background()
	n := &models.Notification{UserID: u.ID, ActorID: u.ID, Type: models.NotificationTypeCommentPost, PostID: p.ID}
	require.NoError(t, s.Notifications().Create(ctx, n))

	assert.ErrorIs(t, s.Notifications().MarkRead(ctx, u.ID+1, n.ID), store.ErrNotFound)
	require.NoError(t, s.Notifications().MarkRead(ctx, u.ID, n.ID))
	count, err := s.Notifications().UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	require.NoError(t, s.Notifications().Delete(ctx, u.ID, n.ID))
	assert.ErrorIs(t, s.Notifications().Delete(ctx, u.ID, n.ID), store.ErrNotFound)
}
