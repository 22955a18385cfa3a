package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	GetByRecipientID(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error)
	GetRecent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	DeleteFollowNotification(ctx context.Context, senderID, recipientID uint) (int64, error)
	DeleteByPostIDs(ctx context.Context, postIDs []uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetByRecipientID returns one page of a recipient's notifications, newest first,
// together with the recipient's total.
func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GetRecent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", notificationID).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Update("is_read", true)
	return res.RowsAffected, res.Error
}

// DeleteFollowNotification removes the follow notification sent by senderID to recipientID.
func (r *postgresNotificationRepository) DeleteFollowNotification(ctx context.Context, senderID, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sender_id = ? AND recipient_id = ? AND type = ?", senderID, recipientID, models.NotificationFollow).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteByPostIDs(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("related_post_id IN ?", postIDs).Delete(&models.Notification{}).Error
}

// DeleteByUserID removes notifications the user sent or received.
func (r *postgresNotificationRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("recipient_id = ? OR sender_id = ?", userID, userID).Delete(&models.Notification{}).Error
}
