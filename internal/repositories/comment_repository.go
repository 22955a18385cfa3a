package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	DeleteByPostIDs(ctx context.Context, postIDs []uint) error
	DeleteByAuthorID(ctx context.Context, authorID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID with its author loaded
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves the comments of a post, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CountByPostIDs counts comments per post. Posts without comments are absent from the map.
func (r *PostgresCommentRepository) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countByPost(ctx, r.db, &models.Comment{}, postIDs)
}

func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("content", "updated_at").Updates(comment).Error
}

func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *PostgresCommentRepository) DeleteByPostIDs(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error
}

func (r *PostgresCommentRepository) DeleteByAuthorID(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Comment{}).Error
}

type postCount struct {
	PostID uint
	Total  int64
}

func countByPost(ctx context.Context, db *gorm.DB, model any, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []postCount
	err := db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}
