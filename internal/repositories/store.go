package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Posts         PostRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Notifications NotificationRepository
}

// NewStore creates a Store whose repositories all run on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
