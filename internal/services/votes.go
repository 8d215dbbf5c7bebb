package services

import (
	"context"

	"subhive/internal/models"
	"subhive/internal/observability"
	"subhive/internal/store"

	"github.com/pkg/errors"
)

type VoteKind string

const (
	VoteKindPost    VoteKind = "post"
	VoteKindComment VoteKind = "comment"
)

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteResult carries the entity after the vote; exactly one of Post and
// Comment is set.
type VoteResult struct {
	Kind    VoteKind        `json:"kind"`
	Post    *models.Post    `json:"post,omitempty"`
	Comment *models.Comment `json:"comment,omitempty"`
}

type VoteService struct {
	store   store.Store
	feed    *FeedService
	metrics *observability.Metrics
}

// Vote applies +1 or -1 to the entity and the same delta to its author's
// karma. Votes are not tracked per user; repeated calls accumulate.
func (s *VoteService) Vote(ctx context.Context, kind string, id uint, direction string) (*VoteResult, error) {
	var delta int
	switch VoteDirection(direction) {
	case VoteUp:
		delta = 1
	case VoteDown:
		delta = -1
	default:
		return nil, invalid("vote must be up or down")
	}
	k := VoteKind(kind)
	if k != VoteKindPost && k != VoteKindComment {
		return nil, invalid("unknown vote target %q", kind)
	}

	result := &VoteResult{Kind: k}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		switch k {
		case VoteKindPost:
			post, err := tx.Posts().Get(ctx, id)
			if err != nil {
				return lookupErr(err, "post")
			}
			if err := tx.Posts().AddVotes(ctx, id, delta); err != nil {
				return lookupErr(err, "post")
			}
			if err := addKarma(ctx, tx, post.UserID, delta, karmaAction(k, delta)); err != nil {
				return err
			}
			if result.Post, err = tx.Posts().Get(ctx, id); err != nil {
				return lookupErr(err, "post")
			}
		case VoteKindComment:
			comment, err := tx.Comments().Get(ctx, id)
			if err != nil {
				return lookupErr(err, "comment")
			}
			if err := tx.Comments().AddVotes(ctx, id, delta); err != nil {
				return lookupErr(err, "comment")
			}
			if err := addKarma(ctx, tx, comment.UserID, delta, karmaAction(k, delta)); err != nil {
				return err
			}
			if result.Comment, err = tx.Comments().Get(ctx, id); err != nil {
				return lookupErr(err, "comment")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordVote(string(k), direction)
	if k == VoteKindPost {
		s.feed.Invalidate()
	}
	return result, nil
}

func addKarma(ctx context.Context, tx store.Store, userID uint, delta int, action string) error {
	err := tx.Users().AddKarma(ctx, userID, delta, action)
	// 作者账号已不存在时只更新票数
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return errors.Wrap(err, "add karma")
}
