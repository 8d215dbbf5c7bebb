package services

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"subhive/internal/models"
	"subhive/internal/store"
	"subhive/internal/utils"

	"github.com/pkg/errors"
)

const maxTitleLength = 300

type CreatePostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Subreddit string `json:"subreddit"`
	Kind      string `json:"postType"`
	LinkURL   string `json:"linkUrl"`
	ImageURL  string `json:"imageUrl"`
}

type PostService struct {
	store store.Store
	feed  *FeedService
}

// isHTTPURL 仅接受带主机名的 http(s) 绝对地址
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", invalid("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func withHTML(post *models.Post) *models.Post {
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	return post
}

func (s *PostService) Create(ctx context.Context, author *models.User, in CreatePostInput) (*models.Post, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Subreddit)
	if name == "" {
		return nil, invalid("subreddit is required")
	}

	kind := models.PostKind(strings.TrimSpace(in.Kind))
	if kind == "" {
		kind = models.PostKindText
	}
	link := strings.TrimSpace(in.LinkURL)
	switch kind {
	case models.PostKindLink:
		if !isHTTPURL(link) {
			return nil, invalid("link posts need an http(s) linkUrl")
		}
	case models.PostKindText:
		if link != "" {
			return nil, invalid("text posts cannot carry a linkUrl")
		}
	default:
		return nil, invalid("unknown postType %q", in.Kind)
	}

	image := strings.TrimSpace(in.ImageURL)
	if image != "" && !isHTTPURL(image) {
		return nil, invalid("imageUrl must be an http(s) URL")
	}
	if image == "" {
		image = utils.FirstImage(in.Content)
	}

	sub, err := s.store.Subreddits().GetByName(ctx, name)
	if err != nil {
		return nil, lookupErr(err, "subreddit")
	}

	// 作者默认投了一票，不计入 karma
	post := models.Post{
		UserID:      author.ID,
		SubredditID: sub.ID,
		Title:       title,
		Content:     in.Content,
		Kind:        kind,
		LinkURL:     link,
		ImageURL:    image,
		Votes:       1,
		Status:      models.PostStatusVisible,
	}
	if err := s.store.Posts().Create(ctx, &post); err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	s.feed.Invalidate()
	return withHTML(&post), nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	return withHTML(post), nil
}

// Update replaces title and content. Only the author may edit.
func (s *PostService) Update(ctx context.Context, caller *models.User, id uint, title, content string) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	if post.UserID != caller.ID {
		return nil, forbidden("only the author can edit this post")
	}
	title, err = validTitle(title)
	if err != nil {
		return nil, err
	}
	if err := s.store.Posts().UpdateContent(ctx, id, title, content); err != nil {
		return nil, lookupErr(err, "post")
	}
	s.feed.Invalidate()
	return s.Get(ctx, id)
}

// Delete removes the post and, through the store, all of its comments. The
// author or a moderator of the post's subreddit may delete.
func (s *PostService) Delete(ctx context.Context, caller *models.User, id uint) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return lookupErr(err, "post")
	}
	if post.UserID != caller.ID {
		mod, err := s.store.Subreddits().IsModerator(ctx, post.SubredditID, caller.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return errors.Wrap(err, "check moderator")
		}
		if !mod {
			return forbidden("only the author or a moderator can delete this post")
		}
	}
	if err := s.store.Posts().Delete(ctx, id); err != nil {
		return lookupErr(err, "post")
	}
	s.feed.Invalidate()
	return nil
}

// SetStatus hides or restores a post. Moderators of the post's subreddit only.
func (s *PostService) SetStatus(ctx context.Context, caller *models.User, id uint, status string) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	st := models.PostStatus(status)
	if st != models.PostStatusVisible && st != models.PostStatusRemoved {
		return nil, invalid("status must be visible or removed")
	}
	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	mod, err := s.store.Subreddits().IsModerator(ctx, post.SubredditID, caller.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "check moderator")
	}
	if !mod {
		return nil, forbidden("only moderators can change post status")
	}
	if err := s.store.Posts().SetStatus(ctx, id, st); err != nil {
		return nil, lookupErr(err, "post")
	}
	s.feed.Invalidate()
	return s.Get(ctx, id)
}

// ToggleSaved 切换收藏状态，返回切换后是否已收藏
func (s *PostService) ToggleSaved(ctx context.Context, caller *models.User, id uint) (bool, error) {
	if caller == nil {
		return false, ErrUnauthenticated
	}
	saved, err := s.store.Posts().ToggleSaved(ctx, caller.ID, id)
	if err != nil {
		return false, lookupErr(err, "post")
	}
	return saved, nil
}

func (s *PostService) ListSaved(ctx context.Context, caller *models.User) ([]models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	posts, err := s.store.Posts().ListSaved(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list saved posts")
	}
	return posts, nil
}
