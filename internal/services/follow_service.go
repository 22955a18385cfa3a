package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowResult is the outcome of a follow request. Created is false when the edge
// already existed.
type FollowResult struct {
	Follow  *models.Follow
	Created bool
}

// FollowService maintains the follow graph.
type FollowService struct {
	store         *repositories.Store
	notifications *NotificationService
	authors       cache.AuthorSetCache
	logger        *zap.Logger
}

func NewFollowService(store *repositories.Store, notifications *NotificationService, authors cache.AuthorSetCache, logger *zap.Logger) *FollowService {
	return &FollowService{store: store, notifications: notifications, authors: authors, logger: logger}
}

// Follow creates the edge followerID -> targetID and notifies the target on first creation.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	result := &FollowResult{}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		follower, err := lookupUser(ctx, tx, followerID)
		if err != nil {
			return err
		}
		if _, err := lookupUser(ctx, tx, targetID); err != nil {
			return err
		}

		follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
		created, err := tx.Follows.CreateFollowIfAbsent(ctx, follow)
		if err != nil {
			return err
		}
		if !created {
			if follow, err = tx.Follows.GetFollow(ctx, followerID, targetID); err != nil {
				return err
			}
			result.Follow = follow
			return nil
		}

		result.Follow, result.Created = follow, true
		_, err = s.notifications.Notify(ctx, tx, targetID, followerID, models.NotificationFollow, followMessage(follower), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		s.invalidateAuthors(ctx, followerID)
		s.logger.Info("user followed", zap.Uint("follower_id", followerID), zap.Uint("following_id", targetID))
	}
	return result, nil
}

// Unfollow removes the edge followerID -> targetID together with its follow
// notification. It fails with ErrNotFollowing when there is no edge.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lookupUser(ctx, tx, targetID); err != nil {
			return err
		}
		removed, err := tx.Follows.DeleteFollow(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFollowing
		}
		return s.notifications.RetractFollowNotification(ctx, tx, followerID, targetID)
	})
	if err != nil {
		return err
	}

	s.invalidateAuthors(ctx, followerID)
	s.logger.Info("user unfollowed", zap.Uint("follower_id", followerID), zap.Uint("following_id", targetID))
	return nil
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.store.Follows.GetFollowers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.store.Follows.GetFollowing(ctx, userID)
}

func (s *FollowService) FollowersCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Follows.GetFollowersCount(ctx, userID)
}

func (s *FollowService) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Follows.GetFollowingCount(ctx, userID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.store.Follows.IsFollowing(ctx, followerID, targetID)
}

// invalidateAuthors runs after commit. A failed invalidation is logged and the
// stale entry ages out with its TTL.
func (s *FollowService) invalidateAuthors(ctx context.Context, viewerID uint) {
	if err := s.authors.Invalidate(ctx, viewerID); err != nil {
		s.logger.Warn("author set invalidation failed", zap.Uint("viewer_id", viewerID), zap.Error(err))
	}
}

func lookupUser(ctx context.Context, store *repositories.Store, id uint) (*models.User, error) {
	user, err := store.Users.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func lookupPost(ctx context.Context, store *repositories.Store, id uint) (*models.Post, error) {
	post, err := store.Posts.GetPostByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}
