package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/db"
	"github.com/medforo/medforo/internal/models"
	"github.com/medforo/medforo/pkg/logging"
)

// CommunityService implements the community lifecycle: creation,
// membership, moderation, bans, ownership transfer and deletion.
//
// Writes that cross from the community document into users or posts
// are sequenced, not atomic: each step is applied on its own and a
// failure mid-flow leaves the earlier steps in place.
type CommunityService struct {
	communities communityStore
	users       userStore
	posts       postStore
	comments    commentStore
	notifier    *Notifier
	logger      *zap.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(repo *db.Repository, notifier *Notifier) *CommunityService {
	return &CommunityService{
		communities: db.NewCommunityRepository(repo),
		users:       db.NewUserRepository(repo),
		posts:       db.NewPostRepository(repo),
		comments:    db.NewCommentRepository(repo),
		notifier:    notifier,
		logger:      logging.GetLogger().With(zap.String("component", "community_service")),
	}
}

// UpdateSettingsInput is a partial settings patch; nil fields are untouched
type UpdateSettingsInput struct {
	Name                 *string
	Description          *string
	Rules                *string
	RequiresApproval     *bool
	RequiresPostApproval *bool
}

// SettingsResult reports the bulk side effects of relaxing approval settings
type SettingsResult struct {
	ActivatedPosts  int `json:"activatedPosts"`
	ApprovedMembers int `json:"approvedMembers"`
}

// DeleteResult reports the scale of a community deletion cascade
type DeleteResult struct {
	DeletedPosts    int `json:"deletedPosts"`
	DeletedComments int `json:"deletedComments"`
	UpdatedUsers    int `json:"updatedUsers"`
}

// nameTaken reports whether another community already uses the name,
// compared case-insensitively
func nameTaken(communities []*models.Community, name, excludeID string) bool {
	for _, c := range communities {
		if c.ID == excludeID {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// pickSuccessor chooses the moderator who inherits ownership: the
// longest-standing assignment excluding the departing owner, ties
// broken by user id
func pickSuccessor(moderators []*models.Moderator, excludeID string) string {
	var best *models.Moderator
	for _, m := range moderators {
		if m.UserID == excludeID {
			continue
		}
		if best == nil ||
			m.AddedAt.Before(best.AddedAt) ||
			(m.AddedAt.Equal(best.AddedAt) && m.UserID < best.UserID) {
			best = m
		}
	}
	if best == nil {
		return ""
	}
	return best.UserID
}

// getActive loads a community, treating missing and soft-deleted the same way
func (s *CommunityService) getActive(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community == nil || community.IsDeleted {
		return nil, NotFoundError("community %s not found", id)
	}
	return community, nil
}

// canModerate reports whether the user may govern the community: its
// owner or one of its moderators. Platform roles carry no standing
// here; community governance belongs to the community.
func (s *CommunityService) canModerate(ctx context.Context, community *models.Community, userID string) (bool, error) {
	if community.OwnerID == userID {
		return true, nil
	}
	moderator, err := s.communities.GetModerator(ctx, community.ID, userID)
	if err != nil {
		return false, err
	}
	return moderator != nil, nil
}

// IsUserBanned checks the user's ban state with lazy expiry: a timed
// ban that has run out is deleted on the spot and reported as no ban.
func (s *CommunityService) IsUserBanned(ctx context.Context, communityID, userID string) (bool, error) {
	ban, err := s.communities.GetActiveBan(ctx, communityID, userID)
	if err != nil {
		return false, err
	}
	if ban == nil {
		return false, nil
	}
	if banExpired(ban, time.Now().UTC()) {
		if err := s.communities.RemoveBans(ctx, communityID, userID); err != nil {
			return false, err
		}
		s.logger.Info("Expired ban compacted",
			zap.String("community_id", communityID),
			zap.String("user_id", userID))
		return false, nil
	}
	return true, nil
}

// Create creates a community, making the creator its owner, first
// member and first moderator
func (s *CommunityService) Create(ctx context.Context, ownerID, name, description, rules string, requiresApproval, requiresPostApproval bool) (*models.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidInputError("community name is required")
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, NotFoundError("user %s not found", ownerID)
	}
	if !owner.CanPublish() {
		return nil, ForbiddenError("role %s cannot create communities", owner.Role)
	}

	existing, err := s.communities.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if nameTaken(existing, name, "") {
		return nil, ConflictError("a community named %q already exists", name)
	}

	if strings.TrimSpace(rules) == "" {
		rules = models.DefaultRules
	}

	now := time.Now().UTC()
	community := &models.Community{
		ID:                   uuid.NewString(),
		Name:                 name,
		Description:          description,
		Rules:                rules,
		OwnerID:              ownerID,
		Status:               models.CommunityStatusActive,
		RequiresApproval:     requiresApproval,
		RequiresPostApproval: requiresPostApproval,
		MemberCount:          1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}

	if err := s.users.IncForumCount(ctx, ownerID, 1); err != nil {
		s.logger.Warn("Failed to bump owner forum count", zap.String("user_id", ownerID), zap.Error(err))
	}
	if err := s.users.IncJoinedForumCount(ctx, ownerID, 1); err != nil {
		s.logger.Warn("Failed to bump owner joined count", zap.String("user_id", ownerID), zap.Error(err))
	}

	s.logger.Info("Community created",
		zap.String("community_id", community.ID),
		zap.String("owner_id", ownerID),
		zap.String("name", name))
	return community, nil
}

// Get retrieves a community
func (s *CommunityService) Get(ctx context.Context, id string) (*models.Community, error) {
	return s.getActive(ctx, id)
}

// CheckNameAvailable reports whether a community name is free, compared
// case-insensitively against every non-deleted community
func (s *CommunityService) CheckNameAvailable(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, InvalidInputError("community name is required")
	}
	existing, err := s.communities.ListActive(ctx)
	if err != nil {
		return false, err
	}
	return !nameTaken(existing, name, ""), nil
}

// List retrieves all non-deleted communities
func (s *CommunityService) List(ctx context.Context) ([]*models.Community, error) {
	return s.communities.ListActive(ctx)
}

// ListModerators retrieves the community's moderator assignments
func (s *CommunityService) ListModerators(ctx context.Context, communityID string) ([]*models.Moderator, error) {
	if _, err := s.getActive(ctx, communityID); err != nil {
		return nil, err
	}
	return s.communities.ListModerators(ctx, communityID)
}

// Join adds the user to the community, or files a membership request
// when the community requires approval. Returns true when the outcome
// is a pending request rather than an immediate membership.
func (s *CommunityService) Join(ctx context.Context, communityID, userID string) (bool, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return false, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, NotFoundError("user %s not found", userID)
	}

	banned, err := s.IsUserBanned(ctx, communityID, userID)
	if err != nil {
		return false, err
	}
	if banned {
		return false, ForbiddenError("user is banned from this community")
	}

	isMember, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return false, err
	}
	if isMember {
		return false, ConflictError("user is already a member")
	}
	pending, err := s.communities.GetPending(ctx, communityID, userID)
	if err != nil {
		return false, err
	}
	if pending != nil {
		return false, ConflictError("membership request is already pending")
	}

	if community.RequiresApproval {
		request := &models.PendingMember{
			CommunityID: communityID,
			UserID:      userID,
			RequestedAt: time.Now().UTC(),
			UserEmail:   user.Email,
			UserName:    user.Name,
			UserRole:    user.Role,
		}
		if err := s.communities.AddPending(ctx, request); err != nil {
			return false, err
		}
		s.logger.Info("Membership request filed",
			zap.String("community_id", communityID),
			zap.String("user_id", userID))
		return true, nil
	}

	if err := s.communities.AddMember(ctx, communityID, userID); err != nil {
		return false, err
	}
	if err := s.users.IncJoinedForumCount(ctx, userID, 1); err != nil {
		s.logger.Warn("Failed to bump joined count", zap.String("user_id", userID), zap.Error(err))
	}
	s.logger.Info("Member joined",
		zap.String("community_id", communityID),
		zap.String("user_id", userID))
	return false, nil
}

// Leave removes the user's membership. The owner cannot leave; they
// must transfer ownership first.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID == userID {
		return ConflictError("the owner cannot leave; transfer ownership first")
	}
	isMember, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ConflictError("user is not a member")
	}

	if err := s.communities.RemoveMember(ctx, communityID, userID); err != nil {
		return err
	}
	if err := s.communities.RemoveModerator(ctx, communityID, userID); err != nil {
		s.logger.Warn("Failed to drop moderator assignment on leave",
			zap.String("community_id", communityID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	if err := s.users.IncJoinedForumCount(ctx, userID, -1); err != nil {
		s.logger.Warn("Failed to drop joined count", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// ListPendingMembers retrieves the community's membership requests,
// visible to moderators only
func (s *CommunityService) ListPendingMembers(ctx context.Context, communityID, actorID string) ([]*models.PendingMember, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ForbiddenError("moderator permissions required")
	}
	return s.communities.ListPending(ctx, communityID)
}

// ApproveMember promotes a membership request to full membership and
// notifies the new member
func (s *CommunityService) ApproveMember(ctx context.Context, communityID, actorID, targetID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}

	pending, err := s.communities.GetPending(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if pending == nil {
		return NotFoundError("no pending request for user %s", targetID)
	}

	// A ban placed after the request was filed wins over the request.
	banned, err := s.IsUserBanned(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if banned {
		return ForbiddenError("user is banned from this community")
	}

	if err := s.communities.PromotePending(ctx, communityID, targetID); err != nil {
		return err
	}
	if err := s.users.IncJoinedForumCount(ctx, targetID, 1); err != nil {
		s.logger.Warn("Failed to bump joined count", zap.String("user_id", targetID), zap.Error(err))
	}

	s.notifier.SendMembershipApproved(ctx, targetID, communityID, community.Name)
	return nil
}

// RejectMember discards a membership request. The requester is not
// notified of a rejection.
func (s *CommunityService) RejectMember(ctx context.Context, communityID, actorID, targetID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}
	pending, err := s.communities.GetPending(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if pending == nil {
		return NotFoundError("no pending request for user %s", targetID)
	}
	return s.communities.RemovePending(ctx, communityID, targetID)
}

// AddModerator assigns a member as moderator; owner only
func (s *CommunityService) AddModerator(ctx context.Context, communityID, actorID, targetID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID != actorID {
		return ForbiddenError("only the owner can assign moderators")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return NotFoundError("user %s not found", targetID)
	}
	if !target.CanPublish() {
		return ForbiddenError("role %s cannot moderate", target.Role)
	}

	isMember, err := s.communities.IsMember(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if !isMember {
		return ConflictError("user must be a member before becoming a moderator")
	}
	existing, err := s.communities.GetModerator(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ConflictError("user is already a moderator")
	}

	moderator := &models.Moderator{
		CommunityID: communityID,
		UserID:      targetID,
		AddedAt:     time.Now().UTC(),
		AddedBy:     actorID,
	}
	if err := s.communities.AddModerator(ctx, moderator); err != nil {
		return err
	}

	s.notifier.SendModeratorAssigned(ctx, targetID, community.Name)
	return nil
}

// RemoveModerator revokes a moderator assignment; owner only, and the
// owner's own assignment is not revocable
func (s *CommunityService) RemoveModerator(ctx context.Context, communityID, actorID, targetID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID != actorID {
		return ForbiddenError("only the owner can remove moderators")
	}
	if targetID == community.OwnerID {
		return ConflictError("the owner's moderator assignment cannot be removed")
	}
	existing, err := s.communities.GetModerator(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NotFoundError("user %s is not a moderator", targetID)
	}
	return s.communities.RemoveModerator(ctx, communityID, targetID)
}

// BanUser bans a user from the community, revoking any membership,
// pending request and moderator assignment they hold
func (s *CommunityService) BanUser(ctx context.Context, communityID, actorID, targetID, reason, duration string) error {
	if len(strings.TrimSpace(reason)) < 10 {
		return InvalidInputError("ban reason must be at least 10 characters")
	}
	if !validBanDuration(duration) {
		return InvalidInputError("unknown ban duration %q", duration)
	}

	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}
	if targetID == actorID {
		return ConflictError("you cannot ban yourself")
	}
	if targetID == community.OwnerID {
		return ForbiddenError("the owner cannot be banned")
	}

	targetModerator, err := s.communities.GetModerator(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if targetModerator != nil && community.OwnerID != actorID {
		return ForbiddenError("only the owner can ban a moderator")
	}

	banned, err := s.IsUserBanned(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	if banned {
		return ConflictError("user is already banned")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return NotFoundError("user %s not found", targetID)
	}

	wasMember, err := s.communities.IsMember(ctx, communityID, targetID)
	if err != nil {
		return err
	}
	pending, err := s.communities.GetPending(ctx, communityID, targetID)
	if err != nil {
		return err
	}

	ban := &models.Ban{
		CommunityID: communityID,
		UserID:      targetID,
		BannedAt:    time.Now().UTC(),
		BannedBy:    actorID,
		Reason:      strings.TrimSpace(reason),
		Duration:    duration,
		IsActive:    true,
		UserEmail:   target.Email,
		UserName:    target.Name,
		UserRole:    target.Role,
	}
	if err := s.communities.ApplyBan(ctx, ban, wasMember, targetModerator != nil, pending != nil); err != nil {
		return err
	}

	if wasMember {
		if err := s.users.IncJoinedForumCount(ctx, targetID, -1); err != nil {
			s.logger.Warn("Failed to drop joined count", zap.String("user_id", targetID), zap.Error(err))
		}
	}

	s.logger.Info("User banned",
		zap.String("community_id", communityID),
		zap.String("user_id", targetID),
		zap.String("duration", duration))
	s.notifier.SendCommunityBan(ctx, targetID, community.Name, ban.Reason, duration)
	return nil
}

// UnbanUser lifts a ban. Unbanning a user with no ban is a no-op.
func (s *CommunityService) UnbanUser(ctx context.Context, communityID, actorID, targetID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}
	return s.communities.RemoveBans(ctx, communityID, targetID)
}

// ListBans retrieves the community's ban list, compacting expired bans
// as it reads them
func (s *CommunityService) ListBans(ctx context.Context, communityID, actorID string) ([]*models.Ban, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ForbiddenError("moderator permissions required")
	}

	bans, err := s.communities.ListBans(ctx, communityID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	active := make([]*models.Ban, 0, len(bans))
	for _, ban := range bans {
		if banExpired(ban, now) {
			if err := s.communities.RemoveBans(ctx, communityID, ban.UserID); err != nil {
				s.logger.Warn("Failed to compact expired ban",
					zap.String("community_id", communityID),
					zap.String("user_id", ban.UserID),
					zap.Error(err))
			}
			continue
		}
		active = append(active, ban)
	}
	return active, nil
}

// UpdateSettings applies a settings patch; owner only. Relaxing
// requires_post_approval activates every pending post, and relaxing
// requires_approval admits every pending member; the result reports
// both counts.
func (s *CommunityService) UpdateSettings(ctx context.Context, communityID, actorID string, input UpdateSettingsInput) (*SettingsResult, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.OwnerID != actorID {
		return nil, ForbiddenError("only the owner can change settings")
	}

	patch := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, InvalidInputError("community name is required")
		}
		if !strings.EqualFold(name, community.Name) {
			existing, err := s.communities.ListActive(ctx)
			if err != nil {
				return nil, err
			}
			if nameTaken(existing, name, communityID) {
				return nil, ConflictError("a community named %q already exists", name)
			}
		}
		patch["name"] = name
	}
	if input.Description != nil {
		patch["description"] = *input.Description
	}
	if input.Rules != nil {
		patch["rules"] = *input.Rules
	}
	if input.RequiresApproval != nil {
		patch["requires_approval"] = *input.RequiresApproval
	}
	if input.RequiresPostApproval != nil {
		patch["requires_post_approval"] = *input.RequiresPostApproval
	}

	if err := s.communities.Updates(ctx, communityID, patch); err != nil {
		return nil, err
	}

	result := &SettingsResult{}

	if input.RequiresPostApproval != nil && community.RequiresPostApproval && !*input.RequiresPostApproval {
		n, err := s.activatePendingPosts(ctx, community, actorID)
		if err != nil {
			return result, err
		}
		result.ActivatedPosts = n
	}

	if input.RequiresApproval != nil && community.RequiresApproval && !*input.RequiresApproval {
		n, err := s.admitPendingMembers(ctx, community)
		if err != nil {
			return result, err
		}
		result.ApprovedMembers = n
	}

	return result, nil
}

// activatePendingPosts flips every pending post of the community to
// active and settles the counters and notifications that come with it
func (s *CommunityService) activatePendingPosts(ctx context.Context, community *models.Community, actorID string) (int, error) {
	pending, err := s.posts.ListPendingByCommunity(ctx, community.ID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]string, len(pending))
	for i, post := range pending {
		ids[i] = post.ID
	}
	if err := s.posts.ActivateAll(ctx, ids, actorID, time.Now().UTC()); err != nil {
		return 0, err
	}
	if err := s.communities.IncPostCount(ctx, community.ID, int64(len(pending)), true); err != nil {
		s.logger.Warn("Failed to bump post count", zap.String("community_id", community.ID), zap.Error(err))
	}

	for _, post := range pending {
		author, err := s.users.GetByID(ctx, post.AuthorID)
		if err != nil {
			return len(pending), err
		}
		if author == nil {
			continue
		}
		if err := s.users.IncPostStats(ctx, post.AuthorID, 1); err != nil {
			s.logger.Warn("Failed to bump author post stats", zap.String("user_id", post.AuthorID), zap.Error(err))
		}
		s.notifier.SendPostApproved(ctx, post.AuthorID, community.ID, community.Name)
	}
	return len(pending), nil
}

// admitPendingMembers promotes every pending membership request of the community
func (s *CommunityService) admitPendingMembers(ctx context.Context, community *models.Community) (int, error) {
	pending, err := s.communities.ListPending(ctx, community.ID)
	if err != nil {
		return 0, err
	}
	for i, request := range pending {
		if err := s.communities.PromotePending(ctx, community.ID, request.UserID); err != nil {
			return i, err
		}
		if err := s.users.IncJoinedForumCount(ctx, request.UserID, 1); err != nil {
			s.logger.Warn("Failed to bump joined count", zap.String("user_id", request.UserID), zap.Error(err))
		}
		s.notifier.SendMembershipApproved(ctx, request.UserID, community.ID, community.Name)
	}
	return len(pending), nil
}

// TransferOwnershipAndLeave hands the community to its longest-standing
// moderator and removes the departing owner from the community
func (s *CommunityService) TransferOwnershipAndLeave(ctx context.Context, communityID, ownerID string) (string, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return "", err
	}
	if community.OwnerID != ownerID {
		return "", ForbiddenError("only the owner can transfer ownership")
	}

	moderators, err := s.communities.ListModerators(ctx, communityID)
	if err != nil {
		return "", err
	}
	successorID := pickSuccessor(moderators, ownerID)
	if successorID == "" {
		return "", ConflictError("no moderator available to take over ownership")
	}

	if err := s.communities.TransferOwnership(ctx, communityID, ownerID, successorID); err != nil {
		return "", err
	}

	if err := s.users.IncForumCount(ctx, ownerID, -1); err != nil {
		s.logger.Warn("Failed to drop owner forum count", zap.String("user_id", ownerID), zap.Error(err))
	}
	if err := s.users.IncJoinedForumCount(ctx, ownerID, -1); err != nil {
		s.logger.Warn("Failed to drop joined count", zap.String("user_id", ownerID), zap.Error(err))
	}
	if err := s.users.IncForumCount(ctx, successorID, 1); err != nil {
		s.logger.Warn("Failed to bump successor forum count", zap.String("user_id", successorID), zap.Error(err))
	}

	s.logger.Info("Ownership transferred",
		zap.String("community_id", communityID),
		zap.String("previous_owner", ownerID),
		zap.String("new_owner", successorID))
	s.notifier.SendOwnershipTransferred(ctx, successorID, community.Name)
	return successorID, nil
}

// Delete removes the community and everything under it: posts, their
// comment trees, memberships and the community document itself, then
// settles every affected user's counters. Reserved for platform
// moderators; owners dissolve a community by transferring it away, not
// by deleting it. The stated reason goes to the audit log.
func (s *CommunityService) Delete(ctx context.Context, communityID, actorID, reason string) (*DeleteResult, error) {
	if len(strings.TrimSpace(reason)) < 10 {
		return nil, InvalidInputError("deletion reason must be at least 10 characters")
	}

	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.IsSystemModerator() {
		return nil, ForbiddenError("platform moderator role required to delete a community")
	}

	posts, err := s.posts.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{DeletedPosts: len(posts)}
	commentAuthors := make(map[string]int64)
	postAuthors := make(map[string]int64)

	for _, post := range posts {
		comments, err := s.comments.ListByPost(ctx, post.ID)
		if err != nil {
			return result, err
		}
		if len(comments) > 0 {
			ids := make([]string, len(comments))
			for i, comment := range comments {
				ids[i] = comment.ID
				commentAuthors[comment.AuthorID]++
			}
			if err := s.comments.DeleteByIDs(ctx, ids); err != nil {
				return result, err
			}
			result.DeletedComments += len(comments)
		}
		if post.Status == models.PostStatusActive {
			postAuthors[post.AuthorID]++
		}
		if err := s.posts.Delete(ctx, post.ID); err != nil {
			return result, err
		}
	}

	touched := make(map[string]bool)
	for authorID, n := range commentAuthors {
		user, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return result, err
		}
		if user == nil {
			continue
		}
		if err := s.users.IncCommentStats(ctx, authorID, -n); err != nil {
			s.logger.Warn("Failed to drop author comment stats", zap.String("user_id", authorID), zap.Error(err))
			continue
		}
		touched[authorID] = true
	}
	for authorID, n := range postAuthors {
		user, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return result, err
		}
		if user == nil {
			continue
		}
		if err := s.users.IncPostStats(ctx, authorID, -n); err != nil {
			s.logger.Warn("Failed to drop author post stats", zap.String("user_id", authorID), zap.Error(err))
			continue
		}
		touched[authorID] = true
	}

	memberIDs, err := s.communities.ListMemberIDs(ctx, communityID)
	if err != nil {
		return result, err
	}

	if err := s.communities.Delete(ctx, communityID); err != nil {
		return result, err
	}

	// Memberships are gone; recompute rather than decrement so a drifted
	// counter heals here.
	for _, memberID := range memberIDs {
		count, err := s.communities.CountMemberships(ctx, memberID)
		if err != nil {
			return result, err
		}
		if err := s.users.SetJoinedForumCount(ctx, memberID, count); err != nil {
			s.logger.Warn("Failed to recompute joined count", zap.String("user_id", memberID), zap.Error(err))
			continue
		}
		touched[memberID] = true
	}
	if err := s.users.IncForumCount(ctx, community.OwnerID, -1); err != nil {
		s.logger.Warn("Failed to drop owner forum count", zap.String("user_id", community.OwnerID), zap.Error(err))
	} else {
		touched[community.OwnerID] = true
	}

	result.UpdatedUsers = len(touched)
	s.logger.Info("Community deleted",
		zap.String("community_id", communityID),
		zap.String("deleted_by", actorID),
		zap.String("reason", strings.TrimSpace(reason)),
		zap.Int("posts", result.DeletedPosts),
		zap.Int("comments", result.DeletedComments))
	return result, nil
}

// PendingPost is a pending post with its author resolved for the
// moderation queue
type PendingPost struct {
	*models.Post
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
}

// GetPendingPosts retrieves the community's pending posts with author
// details, visible to moderators only
func (s *CommunityService) GetPendingPosts(ctx context.Context, communityID, actorID string) ([]*PendingPost, error) {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ForbiddenError("moderator permissions required")
	}

	posts, err := s.posts.ListPendingByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	pending := make([]*PendingPost, 0, len(posts))
	for _, post := range posts {
		entry := &PendingPost{Post: post}
		author, err := s.users.GetByID(ctx, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if author != nil {
			entry.AuthorName = author.Name
			entry.AuthorEmail = author.Email
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

// ValidatePost activates a pending post, settling the counters the
// pending state withheld
func (s *CommunityService) ValidatePost(ctx context.Context, communityID, postID, actorID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.CommunityID != communityID {
		return NotFoundError("post %s not found in community", postID)
	}
	if post.Status != models.PostStatusPending {
		return ConflictError("post is not pending")
	}

	if err := s.posts.Activate(ctx, postID, actorID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.communities.IncPostCount(ctx, communityID, 1, true); err != nil {
		s.logger.Warn("Failed to bump post count", zap.String("community_id", communityID), zap.Error(err))
	}
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	if author != nil {
		if err := s.users.IncPostStats(ctx, post.AuthorID, 1); err != nil {
			s.logger.Warn("Failed to bump author post stats", zap.String("user_id", post.AuthorID), zap.Error(err))
		}
		s.notifier.SendPostApproved(ctx, post.AuthorID, communityID, community.Name)
	}
	return nil
}

// RejectPost discards a pending post outright and notifies its author
func (s *CommunityService) RejectPost(ctx context.Context, communityID, postID, actorID string) error {
	community, err := s.getActive(ctx, communityID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ForbiddenError("moderator permissions required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.CommunityID != communityID {
		return NotFoundError("post %s not found in community", postID)
	}
	if post.Status != models.PostStatusPending {
		return ConflictError("post is not pending")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.notifier.SendPostRejected(ctx, post.AuthorID, communityID, community.Name)
	return nil
}
