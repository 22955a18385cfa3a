package models

import "time"

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification represents a user notification. Rows are produced only as a side effect
// of a follow, like or comment write and share that write's transaction.
type Notification struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	RecipientID   uint             `json:"-" gorm:"not null;index;index:idx_recipient_read,priority:1;index:idx_recipient_created,priority:1"`
	Recipient     *User            `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	SenderID      uint             `json:"-" gorm:"not null;index"`
	Sender        *User            `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Type          NotificationType `json:"notification_type" gorm:"size:20;not null;check:chk_notification_type,type IN ('follow','like','comment')"`
	Message       string           `json:"message" gorm:"size:255;not null"`
	RelatedPostID *uint            `json:"related_post"`
	RelatedPost   *Post            `json:"-" gorm:"foreignKey:RelatedPostID;constraint:OnDelete:CASCADE"`
	IsRead        bool             `json:"is_read" gorm:"not null;default:false;index:idx_recipient_read,priority:2"`
	CreatedAt     time.Time        `json:"created_at" gorm:"index:idx_recipient_created,priority:2,sort:desc"`
}

type NotificationView struct {
	Notification
	Sender UserCompact `json:"sender"`
}

func (n *Notification) View() NotificationView {
	v := NotificationView{Notification: *n}
	if n.Sender != nil {
		v.Sender = n.Sender.ToCompact()
	}
	return v
}
