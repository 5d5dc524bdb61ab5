package service

import (
	"context"
	"time"

	"github.com/medforo/medforo/internal/models"
)

// The services talk to persistence through these narrow interfaces.
// internal/db's repositories are the production implementations; tests
// substitute in-memory ones.

type communityStore interface {
	GetByID(ctx context.Context, id string) (*models.Community, error)
	ListActive(ctx context.Context) ([]*models.Community, error)
	Create(ctx context.Context, community *models.Community) error
	Updates(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	IncPostCount(ctx context.Context, id string, delta int64, touchLastPost bool) error
	IsMember(ctx context.Context, communityID, userID string) (bool, error)
	AddMember(ctx context.Context, communityID, userID string) error
	RemoveMember(ctx context.Context, communityID, userID string) error
	ListMemberIDs(ctx context.Context, communityID string) ([]string, error)
	CountMemberships(ctx context.Context, userID string) (int64, error)
	GetPending(ctx context.Context, communityID, userID string) (*models.PendingMember, error)
	ListPending(ctx context.Context, communityID string) ([]*models.PendingMember, error)
	AddPending(ctx context.Context, pending *models.PendingMember) error
	RemovePending(ctx context.Context, communityID, userID string) error
	PromotePending(ctx context.Context, communityID, userID string) error
	GetModerator(ctx context.Context, communityID, userID string) (*models.Moderator, error)
	ListModerators(ctx context.Context, communityID string) ([]*models.Moderator, error)
	AddModerator(ctx context.Context, moderator *models.Moderator) error
	RemoveModerator(ctx context.Context, communityID, userID string) error
	ListBans(ctx context.Context, communityID string) ([]*models.Ban, error)
	GetActiveBan(ctx context.Context, communityID, userID string) (*models.Ban, error)
	RemoveBans(ctx context.Context, communityID, userID string) error
	ApplyBan(ctx context.Context, ban *models.Ban, wasMember, wasModerator, wasPending bool) error
	TransferOwnership(ctx context.Context, communityID, previousOwnerID, newOwnerID string) error
}

type userStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	IncForumCount(ctx context.Context, id string, delta int64) error
	IncJoinedForumCount(ctx context.Context, id string, delta int64) error
	SetJoinedForumCount(ctx context.Context, id string, n int64) error
	IncPostStats(ctx context.Context, id string, delta int64) error
	IncCommentStats(ctx context.Context, id string, delta int64) error
}

type postStore interface {
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, images []models.PostImage) error
	Updates(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListByCommunity(ctx context.Context, communityID string) ([]*models.Post, error)
	ListPendingByCommunity(ctx context.Context, communityID string) ([]*models.Post, error)
	Images(ctx context.Context, postID string) ([]models.PostImage, error)
	ReplaceImages(ctx context.Context, postID string, images []models.PostImage) error
	IncCommentCount(ctx context.Context, postID string, delta int64) error
	Activate(ctx context.Context, postID, validatedBy string, when time.Time) error
	ActivateAll(ctx context.Context, postIDs []string, validatedBy string, when time.Time) error
}

type commentStore interface {
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Updates(ctx context.Context, id string, patch map[string]interface{}) error
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteRead(ctx context.Context, userID string) (int64, error)
}
