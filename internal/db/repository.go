package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medforo/medforo/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-directory database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// IncForumCount adjusts the owned-forum counter
func (r *UserRepository) IncForumCount(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("forum_count", counterExpr("forum_count", delta)).Error
}

// IncJoinedForumCount adjusts the joined-forum counter
func (r *UserRepository) IncJoinedForumCount(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("joined_forum_count", counterExpr("joined_forum_count", delta)).Error
}

// SetJoinedForumCount overwrites the joined-forum counter with a recomputed value
func (r *UserRepository) SetJoinedForumCount(ctx context.Context, id string, n int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("joined_forum_count", n).Error
}

// IncPostStats adjusts post_count and contribution_count together
func (r *UserRepository) IncPostStats(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"post_count":         counterExpr("post_count", delta),
			"contribution_count": counterExpr("contribution_count", delta),
		}).Error
}

// IncCommentStats adjusts comment_count and contribution_count together
func (r *UserRepository) IncCommentStats(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"comment_count":      counterExpr("comment_count", delta),
			"contribution_count": counterExpr("contribution_count", delta),
		}).Error
}

// counterExpr builds an atomic counter patch, floor-clamped at zero for decrements
func counterExpr(column string, delta int64) interface{} {
	if delta < 0 {
		return gorm.Expr("GREATEST(0, "+column+" - ?)", -delta)
	}
	return gorm.Expr(column+" + ?", delta)
}
