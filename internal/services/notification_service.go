package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecentNotificationsLimit is the size of the "recent" notification strip.
const RecentNotificationsLimit = 5

// NotificationService dispatches and reads notifications. Dispatch always runs on the
// transaction of the write that caused it.
type NotificationService struct {
	store  *repositories.Store
	logger *zap.Logger
}

func NewNotificationService(store *repositories.Store, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// Notify records a notification on tx. An error here must abort the caller's transaction.
func (s *NotificationService) Notify(ctx context.Context, tx *repositories.Store, recipientID, senderID uint, typ models.NotificationType, message string, relatedPostID *uint) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID:   recipientID,
		SenderID:      senderID,
		Type:          typ,
		Message:       message,
		RelatedPostID: relatedPostID,
	}
	if err := tx.Notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create %s notification: %w", typ, err)
	}
	return n, nil
}

// RetractFollowNotification removes the follow notification sent from senderID to recipientID.
func (s *NotificationService) RetractFollowNotification(ctx context.Context, tx *repositories.Store, senderID, recipientID uint) error {
	if _, err := tx.Notifications.DeleteFollowNotification(ctx, senderID, recipientID); err != nil {
		return fmt.Errorf("retract follow notification: %w", err)
	}
	return nil
}

// List returns a page of the user's notifications, newest first, and the total count.
func (s *NotificationService) List(ctx context.Context, userID uint, offset, limit int) ([]models.Notification, int64, error) {
	return s.store.Notifications.GetByRecipientID(ctx, userID, offset, limit)
}

func (s *NotificationService) Recent(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.store.Notifications.GetRecent(ctx, userID, RecentNotificationsLimit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Notifications.GetUnreadCount(ctx, userID)
}

// MarkRead flags one notification as read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, p permissions.Principal, notificationID uint) error {
	n, err := s.store.Notifications.GetByID(ctx, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if !permissions.IsRecipient(p, n.RecipientID) {
		return ErrNotRecipient
	}
	return s.store.Notifications.MarkAsRead(ctx, notificationID)
}

// MarkAllRead flags every unread notification of userID and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.store.Notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("notifications marked read", zap.Uint("user_id", userID), zap.Int64("count", n))
	return n, nil
}

func followMessage(sender *models.User) string {
	return sender.Username + " started following you"
}

func likeMessage(sender *models.User) string {
	return sender.Username + " liked your post"
}

func commentMessage(sender *models.User) string {
	return sender.Username + " commented on your post"
}
