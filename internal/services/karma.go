package services

import (
	"context"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
)

// karma 明细动作
const (
	ActionPostUpvoted      = "post upvoted"
	ActionPostDownvoted    = "post downvoted"
	ActionCommentUpvoted   = "comment upvoted"
	ActionCommentDownvoted = "comment downvoted"
)

func karmaAction(kind VoteKind, delta int) string {
	switch {
	case kind == VoteKindPost && delta > 0:
		return ActionPostUpvoted
	case kind == VoteKindPost:
		return ActionPostDownvoted
	case delta > 0:
		return ActionCommentUpvoted
	default:
		return ActionCommentDownvoted
	}
}

type KarmaService struct {
	store store.Store
}

// Logs returns the caller's most recent karma changes, newest first.
func (s *KarmaService) Logs(ctx context.Context, caller *models.User) ([]models.KarmaLog, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	logs, err := s.store.Users().KarmaLogs(ctx, caller.ID, listLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list karma logs")
	}
	return logs, nil
}
