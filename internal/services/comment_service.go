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

// CommentService owns comments on posts.
type CommentService struct {
	store         *repositories.Store
	notifications *NotificationService
	logger        *zap.Logger
}

func NewCommentService(store *repositories.Store, notifications *NotificationService, logger *zap.Logger) *CommentService {
	return &CommentService{store: store, notifications: notifications, logger: logger}
}

// CreateComment adds a comment to postID. The post author is notified unless they
// commented on their own post.
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := lookupPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		author, err := lookupUser(ctx, tx, authorID)
		if err != nil {
			return err
		}

		comment = &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		comment.Author = author

		if authorID == post.AuthorID {
			return nil
		}
		_, err = s.notifications.Notify(ctx, tx, post.AuthorID, authorID, models.NotificationComment, commentMessage(author), &post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment created", zap.Uint("comment_id", comment.ID), zap.Uint("post_id", postID))
	return comment, nil
}

// ListComments returns the comments on postID, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := lookupPost(ctx, s.store, postID); err != nil {
		return nil, err
	}
	return s.store.Comments.GetCommentsByPostID(ctx, postID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.store.Comments.GetCommentByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	return comment, err
}

func (s *CommentService) UpdateComment(ctx context.Context, p permissions.Principal, id uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permissions.IsAuthor(p, comment.AuthorID) {
		return nil, ErrNotAuthor
	}
	comment.Content = content
	if err := s.store.Comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, p permissions.Principal, id uint) error {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if !permissions.IsAuthor(p, comment.AuthorID) {
		return ErrNotAuthor
	}
	if err := s.store.Comments.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}
