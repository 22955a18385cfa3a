package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LikeResult is the outcome of a like request. Created is false when the user had
// already liked the post.
type LikeResult struct {
	Like    *models.Like
	Created bool
}

// PostService owns posts and likes.
type PostService struct {
	store         *repositories.Store
	notifications *NotificationService
	logger        *zap.Logger
}

func NewPostService(store *repositories.Store, notifications *NotificationService, logger *zap.Logger) *PostService {
	return &PostService{store: store, notifications: notifications, logger: logger}
}

// CreatePost publishes a post for authorID. Media permission is checked by the caller.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, content string, mediaURL *string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	author, err := lookupUser(ctx, s.store, authorID)
	if err != nil {
		return nil, err
	}
	post := &models.Post{AuthorID: authorID, Content: content, MediaURL: emptyToNil(mediaURL)}
	if err := s.store.Posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = author
	s.logger.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("author_id", authorID))
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return lookupPost(ctx, s.store, postID)
}

// UpdatePost changes content and media of a post written by p. Nil fields are left as is.
func (s *PostService) UpdatePost(ctx context.Context, p permissions.Principal, postID uint, content, mediaURL *string) (*models.Post, error) {
	if content != nil && strings.TrimSpace(*content) == "" {
		return nil, ErrEmptyContent
	}
	post, err := lookupPost(ctx, s.store, postID)
	if err != nil {
		return nil, err
	}
	if !permissions.IsAuthor(p, post.AuthorID) {
		return nil, ErrNotAuthor
	}
	if content != nil {
		post.Content = *content
	}
	if mediaURL != nil {
		post.MediaURL = emptyToNil(mediaURL)
	}
	if err := s.store.Posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// DeletePost removes a post written by p along with its comments, likes and the
// notifications that reference it.
func (s *PostService) DeletePost(ctx context.Context, p permissions.Principal, postID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := lookupPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if !permissions.IsAuthor(p, post.AuthorID) {
			return ErrNotAuthor
		}
		return deletePostsCascade(ctx, tx, []uint{postID})
	})
	if err != nil {
		return err
	}
	s.logger.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("author_id", p.UserID))
	return nil
}

func deletePostsCascade(ctx context.Context, tx *repositories.Store, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := tx.Notifications.DeleteByPostIDs(ctx, postIDs); err != nil {
		return err
	}
	if err := tx.Likes.DeleteByPostIDs(ctx, postIDs); err != nil {
		return err
	}
	if err := tx.Comments.DeleteByPostIDs(ctx, postIDs); err != nil {
		return err
	}
	for _, id := range postIDs {
		if err := tx.Posts.DeletePost(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
	}
	return nil
}

// ListByAuthor returns every post written by authorID, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.store.Posts.GetPostsByAuthorIDs(ctx, []uint{authorID}, 0, 0)
}

// Enrich attaches author, counts and the viewer's like state to posts, in order.
func (s *PostService) Enrich(ctx context.Context, posts []models.Post, viewerID uint) ([]models.EnrichedPost, error) {
	enriched := make([]models.EnrichedPost, len(posts))
	if len(posts) == 0 {
		return enriched, nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likes, err := s.store.Likes.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked := map[uint]bool{}
	if viewerID != 0 {
		if liked, err = s.store.Likes.LikedPostIDs(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for i, p := range posts {
		enriched[i] = models.EnrichedPost{
			Post:          p,
			LikesCount:    likes[p.ID],
			CommentsCount: comments[p.ID],
			IsLiked:       liked[p.ID],
		}
		if p.Author != nil {
			enriched[i].Author = p.Author.ToCompact()
		}
	}
	return enriched, nil
}

// Like records userID's like on postID and notifies the author on first creation,
// unless the author liked their own post.
func (s *PostService) Like(ctx context.Context, postID, userID uint) (*LikeResult, error) {
	result := &LikeResult{}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := lookupPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		liker, err := lookupUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		like := &models.Like{PostID: postID, UserID: userID}
		created, err := tx.Likes.CreateLikeIfAbsent(ctx, like)
		if err != nil {
			return err
		}
		if !created {
			if like, err = tx.Likes.GetLike(ctx, postID, userID); err != nil {
				return err
			}
			result.Like = like
			return nil
		}

		like.User = liker
		result.Like, result.Created = like, true
		if userID == post.AuthorID {
			return nil
		}
		_, err = s.notifications.Notify(ctx, tx, post.AuthorID, userID, models.NotificationLike, likeMessage(liker), &post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Created {
		s.logger.Info("post liked", zap.Uint("post_id", postID), zap.Uint("user_id", userID))
	}
	return result, nil
}

// Unlike removes userID's like. It fails with ErrNotLiked when there is none.
func (s *PostService) Unlike(ctx context.Context, postID, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lookupPost(ctx, tx, postID); err != nil {
			return err
		}
		removed, err := tx.Likes.DeleteLike(ctx, postID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotLiked
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("post unliked", zap.Uint("post_id", postID), zap.Uint("user_id", userID))
	return nil
}

// ListLikes returns the likes on postID with the liking user, newest first.
func (s *PostService) ListLikes(ctx context.Context, postID uint) ([]models.Like, error) {
	if _, err := lookupPost(ctx, s.store, postID); err != nil {
		return nil, err
	}
	return s.store.Likes.GetLikesByPostID(ctx, postID)
}

func (s *PostService) LikesCount(ctx context.Context, postID uint) (int64, error) {
	counts, err := s.store.Likes.CountByPostIDs(ctx, []uint{postID})
	if err != nil {
		return 0, err
	}
	return counts[postID], nil
}

func (s *PostService) CommentsCount(ctx context.Context, postID uint) (int64, error) {
	counts, err := s.store.Comments.CountByPostIDs(ctx, []uint{postID})
	if err != nil {
		return 0, err
	}
	return counts[postID], nil
}

func (s *PostService) IsLikedBy(ctx context.Context, postID, userID uint) (bool, error) {
	return s.store.Likes.HasUserLikedPost(ctx, postID, userID)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
