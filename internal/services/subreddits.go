package services

import (
	"context"
	"regexp"
	"strings"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
)

var subredditName = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

type CreateSubredditInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SubredditService struct {
	store store.Store
}

// Create makes the caller creator, first member and moderator.
func (s *SubredditService) Create(ctx context.Context, caller *models.User, in CreateSubredditInput) (*models.Subreddit, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(in.Name)
	if !subredditName.MatchString(name) {
		return nil, invalid("name must be 3-21 letters, digits or underscores")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalid("description is required")
	}

	sub := models.Subreddit{Name: name, Description: description, CreatorID: caller.ID}
	if err := s.store.Subreddits().Create(ctx, &sub); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("subreddit r/" + name + " already exists")
		}
		return nil, errors.Wrap(err, "create subreddit")
	}
	return s.Get(ctx, name)
}

func (s *SubredditService) Get(ctx context.Context, name string) (*models.Subreddit, error) {
	sub, err := s.store.Subreddits().GetByName(ctx, name)
	if err != nil {
		return nil, lookupErr(err, "subreddit")
	}
	return sub, nil
}

func (s *SubredditService) List(ctx context.Context) ([]models.Subreddit, error) {
	subs, err := s.store.Subreddits().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list subreddits")
	}
	return subs, nil
}

// Join is idempotent.
func (s *SubredditService) Join(ctx context.Context, caller *models.User, name string) (*models.Subreddit, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	sub, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.Subreddits().AddMember(ctx, sub.ID, caller.ID); err != nil {
		return nil, lookupErr(err, "subreddit")
	}
	return s.Get(ctx, name)
}

// Leave is idempotent. The creator stays a member.
func (s *SubredditService) Leave(ctx context.Context, caller *models.User, name string) (*models.Subreddit, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	sub, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if sub.CreatorID == caller.ID {
		return nil, invalid("the creator cannot leave r/%s", sub.Name)
	}
	if err := s.store.Subreddits().RemoveMember(ctx, sub.ID, caller.ID); err != nil {
		return nil, lookupErr(err, "subreddit")
	}
	return s.Get(ctx, name)
}
