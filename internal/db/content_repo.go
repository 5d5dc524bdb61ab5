package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/medforo/medforo/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a post with its image rows in one transaction
func (r *PostRepository) Create(ctx context.Context, post *models.Post, images []models.PostImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Updates applies a field patch to the post row
func (r *PostRepository) Updates(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// Delete removes the post and its image rows
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
}

// ListByCommunity retrieves every post of the community
func (r *PostRepository) ListByCommunity(ctx context.Context, communityID string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListPendingByCommunity retrieves the community's pending posts
func (r *PostRepository) ListPendingByCommunity(ctx context.Context, communityID string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, models.PostStatusPending).
		Order("created_at ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Images retrieves the post's attached images in attachment order
func (r *PostRepository) Images(ctx context.Context, postID string) ([]models.PostImage, error) {
	var images []models.PostImage
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("position ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// ReplaceImages swaps the post's image rows for a new ordered set
func (r *PostRepository) ReplaceImages(ctx context.Context, postID string, images []models.PostImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IncCommentCount adjusts the post's denormalized comment counter
func (r *PostRepository) IncCommentCount(ctx context.Context, postID string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Update("comment_count", counterExpr("comment_count", delta)).Error
}

// Activate transitions a post to active, stamping who validated it
func (r *PostRepository) Activate(ctx context.Context, postID, validatedBy string, when time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"status":       models.PostStatusActive,
			"validated_at": when,
			"validated_by": validatedBy,
		}).Error
}

// ActivateAll transitions a batch of posts to active in one
// collection-scoped transaction
func (r *PostRepository) ActivateAll(ctx context.Context, postIDs []string, validatedBy string, when time.Time) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id IN ?", postIDs).
		Updates(map[string]interface{}{
			"status":       models.PostStatusActive,
			"validated_at": when,
			"validated_by": validatedBy,
		}).Error
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Updates applies a field patch to the comment row
func (r *CommentRepository) Updates(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// ListByPost retrieves every comment of the post (flat, the whole tree)
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteByIDs removes a batch of comments in one collection-scoped write
func (r *CommentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Comment{}).Error
}
