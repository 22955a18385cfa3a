package services

import (
	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
)

// Services wires every service over one store.
type Services struct {
	Users         *UserService
	Follows       *FollowService
	Posts         *PostService
	Comments      *CommentService
	Notifications *NotificationService
	Feed          *FeedService
}

func New(store *repositories.Store, hasher auth.PasswordHasher, authors cache.AuthorSetCache, logger *zap.Logger) *Services {
	if authors == nil {
		authors = cache.NewNoopAuthorSetCache()
	}
	notifications := NewNotificationService(store, logger)
	return &Services{
		Users:         NewUserService(store, hasher, authors, logger),
		Follows:       NewFollowService(store, notifications, authors, logger),
		Posts:         NewPostService(store, notifications, logger),
		Comments:      NewCommentService(store, notifications, logger),
		Notifications: notifications,
		Feed:          NewFeedService(store, authors, logger),
	}
}
