package services

import (
	"context"
	"strings"

	"subhive/internal/models"
	"subhive/internal/observability"
	"subhive/internal/store"
	"subhive/internal/utils"

	"github.com/pkg/errors"
)

// CommentNode is one comment of an assembled thread.
type CommentNode struct {
	models.Comment
	ContentHTML string         `json:"contentHtml"`
	Replies     []*CommentNode `json:"replies"`
}

type CommentService struct {
	store         store.Store
	feed          *FeedService
	notifications *NotificationService
	metrics       *observability.Metrics
}

// AssembleThread nests a post's flat comment set. Top-level comments are
// those no other comment lists as a reply, ordered by key; replies keep the
// order they were appended. Unknown reply ids are skipped and no comment is
// emitted twice.
func AssembleThread(flat []models.Comment, key CommentSort) []*CommentNode {
	byID := make(map[uint]*models.Comment, len(flat))
	referenced := make(map[uint]bool)
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}
	for _, c := range flat {
		for _, id := range c.ReplyIDs {
			if id != c.ID {
				referenced[id] = true
			}
		}
	}

	emitted := make(map[uint]bool, len(flat))
	var build func(c *models.Comment) *CommentNode
	build = func(c *models.Comment) *CommentNode {
		emitted[c.ID] = true
		node := &CommentNode{Comment: *c, Replies: []*CommentNode{}}
		node.ReplyIDs = append([]uint{}, c.ReplyIDs...)
		for _, id := range c.ReplyIDs {
			child, ok := byID[id]
			if !ok || emitted[id] {
				continue
			}
			node.Replies = append(node.Replies, build(child))
		}
		return node
	}

	roots := make([]*CommentNode, 0)
	for i := range flat {
		c := &flat[i]
		if referenced[c.ID] || emitted[c.ID] {
			continue
		}
		roots = append(roots, build(c))
	}
	sortComments(roots, ParseCommentSort(string(key)))
	return roots
}

func renderThread(nodes []*CommentNode) {
	for _, n := range nodes {
		n.ContentHTML = utils.RenderMarkdown(n.Content)
		renderThread(n.Replies)
	}
}

func newNode(c *models.Comment) *CommentNode {
	return &CommentNode{
		Comment:     *c,
		ContentHTML: utils.RenderMarkdown(c.Content),
		Replies:     []*CommentNode{},
	}
}

func validContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", invalid("content is required")
	}
	return content, nil
}

// GetComments returns the post's comment forest with rendered content.
func (s *CommentService) GetComments(ctx context.Context, postID uint, sortKey string) ([]*CommentNode, error) {
	if _, err := s.store.Posts().Get(ctx, postID); err != nil {
		return nil, lookupErr(err, "post")
	}
	flat, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	thread := AssembleThread(flat, ParseCommentSort(sortKey))
	renderThread(thread)
	return thread, nil
}

// Create adds a top-level comment to a visible post.
func (s *CommentService) Create(ctx context.Context, author *models.User, postID uint, content string) (*CommentNode, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	post, err := s.store.Posts().Get(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	if post.Status != models.PostStatusVisible {
		return nil, forbidden("post has been removed")
	}

	comment := models.Comment{PostID: post.ID, UserID: author.ID, Content: content}
	if err := s.insert(ctx, &comment); err != nil {
		return nil, err
	}
	s.metrics.RecordCommentCreated("comment")

	s.notifications.notify(ctx, models.Notification{
		UserID:    post.UserID,
		ActorID:   author.ID,
		Type:      models.NotificationTypeCommentPost,
		PostID:    post.ID,
		CommentID: comment.ID,
	})
	return newNode(&comment), nil
}

// Reply answers an existing comment on the same post.
func (s *CommentService) Reply(ctx context.Context, author *models.User, parentID uint, content string) (*CommentNode, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	parent, err := s.store.Comments().Get(ctx, parentID)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	post, err := s.store.Posts().Get(ctx, parent.PostID)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	if post.Status != models.PostStatusVisible {
		return nil, forbidden("post has been removed")
	}

	comment := models.Comment{
		PostID:   parent.PostID,
		UserID:   author.ID,
		ParentID: &parent.ID,
		Content:  content,
	}
	if err := s.insert(ctx, &comment); err != nil {
		return nil, err
	}
	s.metrics.RecordCommentCreated("reply")

	s.notifications.notify(ctx, models.Notification{
		UserID:    parent.UserID,
		ActorID:   author.ID,
		Type:      models.NotificationTypeReplyComment,
		PostID:    parent.PostID,
		CommentID: comment.ID,
	})
	return newNode(&comment), nil
}

// insert creates the comment and bumps the post counter together.
func (s *CommentService) insert(ctx context.Context, comment *models.Comment) error {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return lookupErr(err, "comment")
		}
		if err := tx.Posts().AddCommentsCount(ctx, comment.PostID, 1); err != nil {
			return lookupErr(err, "post")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.feed.Invalidate()
	return nil
}

// Edit replaces the content of the caller's own comment.
func (s *CommentService) Edit(ctx context.Context, caller *models.User, id uint, content string) (*models.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	comment, err := s.store.Comments().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	if comment.UserID != caller.ID {
		return nil, forbidden("only the author can edit this comment")
	}
	if _, err := validContent(content); err != nil {
		return nil, err
	}
	if err := s.store.Comments().UpdateContent(ctx, id, content); err != nil {
		return nil, lookupErr(err, "comment")
	}
	updated, err := s.store.Comments().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	return updated, nil
}

// Delete removes the caller's comment and every reply beneath it, then
// lowers the post counter by the number of removed nodes.
func (s *CommentService) Delete(ctx context.Context, caller *models.User, id uint) (int, error) {
	if caller == nil {
		return 0, ErrUnauthenticated
	}

	deleted := 0
	err := s.store.InTx(ctx, func(tx store.Store) error {
		target, err := tx.Comments().Get(ctx, id)
		if err != nil {
			return lookupErr(err, "comment")
		}
		if target.UserID != caller.ID {
			return forbidden("only the author can delete this comment")
		}

		all, err := tx.Comments().ListByPost(ctx, target.PostID)
		if err != nil {
			return errors.Wrap(err, "list comments")
		}
		ids := subtree(all, target.ID)
		parentID := parentOf(all, target)

		// 先删后代，再从父评论摘除，最后扣减计数
		if err := tx.Comments().Delete(ctx, ids); err != nil {
			return errors.Wrap(err, "delete comments")
		}
		if parentID != 0 {
			if err := tx.Comments().DetachReply(ctx, parentID, target.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return errors.Wrap(err, "detach reply")
			}
		}
		if err := tx.Posts().AddCommentsCount(ctx, target.PostID, -len(ids)); err != nil && !errors.Is(err, store.ErrNotFound) {
			return errors.Wrap(err, "update comment count")
		}
		deleted = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordCommentsDeleted(deleted)
	s.feed.Invalidate()
	return deleted, nil
}

// subtree lists rootID and its descendants, descendants first.
func subtree(all []models.Comment, rootID uint) []uint {
	byID := make(map[uint]*models.Comment, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	visited := make(map[uint]bool)
	ids := make([]uint, 0)
	var walk func(id uint)
	walk = func(id uint) {
		if visited[id] {
			return
		}
		visited[id] = true
		c, ok := byID[id]
		if !ok {
			return
		}
		for _, child := range c.ReplyIDs {
			walk(child)
		}
		ids = append(ids, id)
	}
	walk(rootID)
	return ids
}

// parentOf uses the stored back-pointer and falls back to scanning reply lists.
func parentOf(all []models.Comment, target *models.Comment) uint {
	if target.ParentID != nil {
		return *target.ParentID
	}
	for _, c := range all {
		for _, id := range c.ReplyIDs {
			if id == target.ID && c.ID != target.ID {
				return c.ID
			}
		}
	}
	return 0
}
