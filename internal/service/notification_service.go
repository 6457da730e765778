package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
)

// NotificationService exposes a user's notification inbox. Fan-out itself
// happens inside the report-gone transaction; this service only reads and
// acknowledges.
type NotificationService interface {
	List(ctx context.Context, user *model.User) ([]model.Notification, error)
	UnreadCount(ctx context.Context, user *model.User) (int64, error)
	MarkRead(ctx context.Context, user *model.User, id uuid.UUID) error
	MarkAllRead(ctx context.Context, user *model.User) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notifRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo}
}

// List returns the user's notifications, newest activity first.
func (s *notificationService) List(ctx context.Context, user *model.User) ([]model.Notification, error) {
	return s.notifRepo.ListByUser(ctx, user.ID)
}

// UnreadCount returns how many notifications the user has not read.
func (s *notificationService) UnreadCount(ctx context.Context, user *model.User) (int64, error) {
	return s.notifRepo.CountUnread(ctx, user.ID)
}

// MarkRead marks one of the user's notifications as read.
func (s *notificationService) MarkRead(ctx context.Context, user *model.User, id uuid.UUID) error {
	notification, err := s.notifRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotificationNotFound
		}
		return err
	}
	if notification.UserID != user.ID {
		return errors.ErrNotificationNotFound
	}
	if notification.IsRead {
		return nil
	}
	notification.IsRead = true
	return s.notifRepo.Update(ctx, notification)
}

// MarkAllRead marks every notification of the user as read.
func (s *notificationService) MarkAllRead(ctx context.Context, user *model.User) error {
	return s.notifRepo.MarkAllRead(ctx, user.ID)
}
