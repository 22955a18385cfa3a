package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollowIfAbsent(ctx context.Context, follow *models.Follow) (bool, error)
	GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	DeleteFollowsOf(ctx context.Context, userID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollowIfAbsent inserts the edge unless the (follower, following) pair already
// exists. The unique index decides, so concurrent callers cannot both report created.
func (r *PostgresFollowRepository) CreateFollowIfAbsent(ctx context.Context, follow *models.Follow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// DeleteFollow hard-deletes the edge and reports whether one existed.
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteFollowsOf removes every edge touching userID in either direction.
func (r *PostgresFollowRepository) DeleteFollowsOf(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers returns the edges pointing at userID with both endpoints loaded, newest first.
func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.withEndpoints(ctx).Where("following_id = ?", userID).Order("created_at DESC, id DESC").Find(&follows).Error
	return follows, err
}

// GetFollowing returns the edges leaving userID with both endpoints loaded, newest first.
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.withEndpoints(ctx).Where("follower_id = ?", userID).Order("created_at DESC, id DESC").Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) withEndpoints(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Follower").Preload("Following")
}
