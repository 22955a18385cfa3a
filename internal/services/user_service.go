package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService owns accounts and their profiles.
type UserService struct {
	store   *repositories.Store
	hasher  auth.PasswordHasher
	authors cache.AuthorSetCache
	logger  *zap.Logger
}

func NewUserService(store *repositories.Store, hasher auth.PasswordHasher, authors cache.AuthorSetCache, logger *zap.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, authors: authors, logger: logger}
}

// CreateUser registers an account. The unique indexes on email and username are the
// final arbiter; the pre-checks only select the error to report.
func (s *UserService) CreateUser(ctx context.Context, email, username, password, bio string) (*models.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Username: username, Password: hashed, Bio: bio}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := checkAvailable(ctx, tx, email, username); err != nil {
			return err
		}
		return tx.Users.CreateUser(ctx, user)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent registration
		if err := checkAvailable(ctx, s.store, email, username); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func checkAvailable(ctx context.Context, store *repositories.Store, email, username string) error {
	taken, err := store.Users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}
	taken, err = store.Users.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateUsername
	}
	return nil
}

// Authenticate resolves an account from its email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return lookupUser(ctx, s.store, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail is used by identity providers that only carry an email claim.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile changes the principal's bio and avatar. Nil fields are left as is.
func (s *UserService) UpdateProfile(ctx context.Context, p permissions.Principal, bio, avatarURL *string) (*models.User, error) {
	user, err := lookupUser(ctx, s.store, p.UserID)
	if err != nil {
		return nil, err
	}
	if bio != nil {
		user.Bio = *bio
	}
	if avatarURL != nil {
		if *avatarURL == "" {
			user.AvatarURL = nil
		} else {
			user.AvatarURL = avatarURL
		}
	}
	if err := s.store.Users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ListUsers returns every account except the viewer, ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint) ([]models.User, error) {
	return s.store.Users.ListUsersExcept(ctx, viewerID)
}

// Profile renders username's account with follow counts as seen by viewerID.
func (s *UserService) Profile(ctx context.Context, username string, viewerID uint) (*models.UserProfile, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile := &models.UserProfile{User: *user}
	if profile.FollowersCount, err = s.store.Follows.GetFollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.store.Follows.GetFollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != user.ID {
		if profile.IsFollowing, err = s.store.Follows.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// DeleteUser removes the principal's account and everything that references it:
// follow edges, posts with their comments, likes and notifications, and the user's
// own comments, likes and notifications.
func (s *UserService) DeleteUser(ctx context.Context, p permissions.Principal) error {
	var followerIDs []uint
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lookupUser(ctx, tx, p.UserID); err != nil {
			return err
		}
		followers, err := tx.Follows.GetFollowers(ctx, p.UserID)
		if err != nil {
			return err
		}
		for _, f := range followers {
			followerIDs = append(followerIDs, f.FollowerID)
		}

		postIDs, err := tx.Posts.GetPostIDsByAuthor(ctx, p.UserID)
		if err != nil {
			return err
		}
		if err := deletePostsCascade(ctx, tx, postIDs); err != nil {
			return err
		}
		if err := tx.Follows.DeleteFollowsOf(ctx, p.UserID); err != nil {
			return err
		}
		if err := tx.Likes.DeleteByUserID(ctx, p.UserID); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByAuthorID(ctx, p.UserID); err != nil {
			return err
		}
		if err := tx.Notifications.DeleteByUserID(ctx, p.UserID); err != nil {
			return err
		}
		return tx.Users.DeleteUser(ctx, p.UserID)
	})
	if err != nil {
		return err
	}

	for _, id := range append(followerIDs, p.UserID) {
		if err := s.authors.Invalidate(ctx, id); err != nil {
			s.logger.Warn("author set invalidation failed", zap.Uint("viewer_id", id), zap.Error(err))
		}
	}
	s.logger.Info("user deleted", zap.Uint("user_id", p.UserID))
	return nil
}
