package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error)
	GetLike(ctx context.Context, postID, userID uint) (*models.Like, error)
	DeleteLike(ctx context.Context, postID, userID uint) (bool, error)
	GetLikesByPostID(ctx context.Context, postID uint) ([]models.Like, error)
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error)
	DeleteByPostIDs(ctx context.Context, postIDs []uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLikeIfAbsent inserts the like unless the (post, user) pair already exists.
func (r *PostgresLikeRepository) CreateLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetLike retrieves a specific like by postID and userID
func (r *PostgresLikeRepository) GetLike(ctx context.Context, postID, userID uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// DeleteLike removes the like and reports whether one existed
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetLikesByPostID retrieves all likes for a post with the liking user, newest first
func (r *PostgresLikeRepository) GetLikesByPostID(ctx context.Context, postID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error
	return likes, err
}

func (r *PostgresLikeRepository) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countByPost(ctx, r.db, &models.Like{}, postIDs)
}

// LikedPostIDs reports which of postIDs userID has liked
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) DeleteByPostIDs(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{}).Error
}
