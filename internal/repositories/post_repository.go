package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByAuthorIDs(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Post, error)
	GetPostsByAuthorIDsAfter(ctx context.Context, authorIDs []uint, cursor *PostCursor, limit int) ([]models.Post, error)
	CountPostsByAuthorIDs(ctx context.Context, authorIDs []uint) (int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	GetPostIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
}

// PostCursor marks a position in newest-first post order.
type PostCursor struct {
	CreatedAt time.Time
	ID        uint
}

// CursorOf returns the cursor positioned at post.
func CursorOf(post models.Post) *PostCursor {
	return &PostCursor{CreatedAt: post.CreatedAt, ID: post.ID}
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID retrieves a post by ID with its author loaded
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthorIDs returns posts written by any of authorIDs, newest first.
// Ties on created_at are broken by id so that offsets stay stable between pages.
// A non-positive limit returns everything from offset on.
func (r *PostgresPostRepository) GetPostsByAuthorIDs(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	if len(authorIDs) == 0 {
		return posts, nil
	}
	q := r.db.WithContext(ctx).Preload("Author").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&posts).Error
	return posts, err
}

// GetPostsByAuthorIDsAfter returns up to limit posts by authorIDs that come after
// cursor in newest-first order. A nil cursor starts at the newest post.
func (r *PostgresPostRepository) GetPostsByAuthorIDsAfter(ctx context.Context, authorIDs []uint, cursor *PostCursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	if len(authorIDs) == 0 {
		return posts, nil
	}
	q := r.db.WithContext(ctx).Preload("Author").Where("author_id IN ?", authorIDs)
	if cursor != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) CountPostsByAuthorIDs(ctx context.Context, authorIDs []uint) (int64, error) {
	var count int64
	if len(authorIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id IN ?", authorIDs).Count(&count).Error
	return count, err
}

// UpdatePost writes content and media of an existing post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).Select("content", "media_url", "updated_at").Updates(post).Error
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) GetPostIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, err
}
