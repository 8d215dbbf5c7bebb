package services

import (
	"context"
	"log/slog"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
)

type NotificationService struct {
	store store.Store
}

// notify 创建通知；不通知自己，失败只记录日志
func (s *NotificationService) notify(ctx context.Context, n models.Notification) {
	if n.UserID == 0 || n.UserID == n.ActorID {
		return
	}
	if err := s.store.Notifications().Create(ctx, &n); err != nil {
		slog.Warn("Failed to create notification",
			"type", n.Type, "user_id", n.UserID, "comment_id", n.CommentID, "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, caller *models.User) ([]models.Notification, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	list, err := s.store.Notifications().List(ctx, caller.ID, listLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.store.Notifications().UnreadCount(ctx, userID)
	return count, errors.Wrap(err, "count unread notifications")
}

func (s *NotificationService) MarkRead(ctx context.Context, caller *models.User, id uint) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if err := s.store.Notifications().MarkRead(ctx, caller.ID, id); err != nil {
		return lookupErr(err, "notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	return errors.Wrap(s.store.Notifications().MarkAllRead(ctx, caller.ID), "mark notifications read")
}

func (s *NotificationService) Delete(ctx context.Context, caller *models.User, id uint) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if err := s.store.Notifications().Delete(ctx, caller.ID, id); err != nil {
		return lookupErr(err, "notification")
	}
	return nil
}
