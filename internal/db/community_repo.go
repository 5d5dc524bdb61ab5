package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/medforo/medforo/internal/models"
)

// CommunityRepository provides community-related database operations.
//
// The community row together with its member, pending-member, moderator
// and ban rows forms one logical document: mutations that stay inside
// that boundary may share a transaction. Anything touching users, posts
// or comments lives outside it and is sequenced by the service layer.
type CommunityRepository struct {
	*Repository
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(repo *Repository) *CommunityRepository {
	return &CommunityRepository{Repository: repo}
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// ListActive retrieves all non-deleted communities (used for the
// case-folded name uniqueness scan)
func (r *CommunityRepository) ListActive(ctx context.Context) ([]*models.Community, error) {
	var communities []*models.Community
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

// Create creates a community with its owner membership and moderator
// rows in one transaction
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		member := &models.Member{
			CommunityID: community.ID,
			UserID:      community.OwnerID,
			CreatedAt:   community.CreatedAt,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		moderator := &models.Moderator{
			CommunityID: community.ID,
			UserID:      community.OwnerID,
			AddedAt:     community.CreatedAt,
			AddedBy:     community.OwnerID,
		}
		return tx.Create(moderator).Error
	})
}

// Updates applies a field patch to the community row
func (r *CommunityRepository) Updates(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// Delete removes the community document: the community row and every
// member, pending, moderator and ban row it owns
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&models.PendingMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&models.Moderator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&models.Ban{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Community{}, "id = ?", id).Error
	})
}

// IncPostCount adjusts the denormalized post counter, optionally
// touching last_post_at
func (r *CommunityRepository) IncPostCount(ctx context.Context, id string, delta int64, touchLastPost bool) error {
	patch := map[string]interface{}{
		"post_count": counterExpr("post_count", delta),
	}
	if touchLastPost {
		patch["last_post_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// IsMember reports whether the user has a membership row
func (r *CommunityRepository) IsMember(ctx context.Context, communityID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember inserts a membership row and bumps member_count in one transaction
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &models.Member{
			CommunityID: communityID,
			UserID:      userID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			FirstOrCreate(member).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", counterExpr("member_count", 1)).Error
	})
}

// RemoveMember deletes the membership row and decrements member_count
// in one transaction
func (r *CommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.Member{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", counterExpr("member_count", -1)).Error
	})
}

// ListMemberIDs returns every member user id of the community
func (r *CommunityRepository) ListMemberIDs(ctx context.Context, communityID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("community_id = ?", communityID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountMemberships returns how many communities the user currently belongs to
func (r *CommunityRepository) CountMemberships(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetPending retrieves a pending membership request, nil if absent
func (r *CommunityRepository) GetPending(ctx context.Context, communityID, userID string) (*models.PendingMember, error) {
	var pending models.PendingMember
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pending, nil
}

// ListPending retrieves all pending membership requests for the community
func (r *CommunityRepository) ListPending(ctx context.Context, communityID string) ([]*models.PendingMember, error) {
	var pending []*models.PendingMember
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("requested_at ASC").
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

// AddPending inserts a membership request
func (r *CommunityRepository) AddPending(ctx context.Context, pending *models.PendingMember) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

// RemovePending deletes a membership request
func (r *CommunityRepository) RemovePending(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.PendingMember{}).Error
}

// PromotePending moves a request to full membership: the pending row is
// deleted, a member row inserted and member_count bumped, atomically
// inside the community document
func (r *CommunityRepository) PromotePending(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.PendingMember{}).Error; err != nil {
			return err
		}
		member := &models.Member{
			CommunityID: communityID,
			UserID:      userID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			FirstOrCreate(member).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", counterExpr("member_count", 1)).Error
	})
}

// GetModerator retrieves a moderator assignment, nil if absent
func (r *CommunityRepository) GetModerator(ctx context.Context, communityID, userID string) (*models.Moderator, error) {
	var moderator models.Moderator
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&moderator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &moderator, nil
}

// ListModerators retrieves all moderator assignments for the community
func (r *CommunityRepository) ListModerators(ctx context.Context, communityID string) ([]*models.Moderator, error) {
	var moderators []*models.Moderator
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&moderators).Error; err != nil {
		return nil, err
	}
	return moderators, nil
}

// AddModerator inserts or refreshes a moderator assignment
func (r *CommunityRepository) AddModerator(ctx context.Context, moderator *models.Moderator) error {
	return r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", moderator.CommunityID, moderator.UserID).
		FirstOrCreate(moderator).Error
}

// RemoveModerator deletes a moderator assignment
func (r *CommunityRepository) RemoveModerator(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.Moderator{}).Error
}

// ListBans retrieves the community's ban list
func (r *CommunityRepository) ListBans(ctx context.Context, communityID string) ([]*models.Ban, error) {
	var bans []*models.Ban
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&bans).Error; err != nil {
		return nil, err
	}
	return bans, nil
}

// GetActiveBan retrieves the user's active ban record, nil if absent
func (r *CommunityRepository) GetActiveBan(ctx context.Context, communityID, userID string) (*models.Ban, error) {
	var ban models.Ban
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ? AND is_active = ?", communityID, userID, true).
		First(&ban).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ban, nil
}

// RemoveBans deletes every ban record for the user in the community.
// Deleting nothing is not an error, which keeps unban idempotent.
func (r *CommunityRepository) RemoveBans(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.Ban{}).Error
}

// ApplyBan folds the whole community-side effect of a ban into one
// document update: the ban record is appended and any membership,
// pending request or moderator assignment of the target is revoked
func (r *CommunityRepository) ApplyBan(ctx context.Context, ban *models.Ban, wasMember, wasModerator, wasPending bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ban).Error; err != nil {
			return err
		}
		if wasMember {
			if err := tx.Where("community_id = ? AND user_id = ?", ban.CommunityID, ban.UserID).
				Delete(&models.Member{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Community{}).
				Where("id = ?", ban.CommunityID).
				Update("member_count", counterExpr("member_count", -1)).Error; err != nil {
				return err
			}
		}
		if wasModerator {
			if err := tx.Where("community_id = ? AND user_id = ?", ban.CommunityID, ban.UserID).
				Delete(&models.Moderator{}).Error; err != nil {
				return err
			}
		}
		if wasPending {
			if err := tx.Where("community_id = ? AND user_id = ?", ban.CommunityID, ban.UserID).
				Delete(&models.PendingMember{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TransferOwnership reassigns the owner and removes the previous owner
// from the moderator and member sets, in one document update
func (r *CommunityRepository) TransferOwnership(ctx context.Context, communityID, previousOwnerID, newOwnerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("owner_id", newOwnerID).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, previousOwnerID).
			Delete(&models.Moderator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, previousOwnerID).
			Delete(&models.Member{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", counterExpr("member_count", -1)).Error
	})
}
