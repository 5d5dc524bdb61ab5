package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/db"
	"github.com/medforo/medforo/internal/models"
	"github.com/medforo/medforo/pkg/config"
	"github.com/medforo/medforo/pkg/logging"
)

// Notifier owns the per-user notification mailbox: it appends business
// event notifications and enforces the retention policy (expiry plus a
// maximum retained count) before every append. Delivery is best-effort;
// callers treat a failed emit as a logged warning, never as an
// operation failure.
type Notifier struct {
	repo          notificationStore
	logger        *zap.Logger
	retentionDays int
	maxRetained   int
}

// NewNotifier creates a new notifier
func NewNotifier(repo *db.Repository, cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		repo:          db.NewNotificationRepository(repo),
		logger:        logging.GetLogger().With(zap.String("component", "notifier")),
		retentionDays: cfg.RetentionDays,
		maxRetained:   cfg.MaxRetained,
	}
}

// planCleanup decides which notifications to drop: everything past its
// expiry, then the oldest beyond the newest max entries. Returns ids in
// no particular order.
func planCleanup(notifications []*models.Notification, now time.Time, max int) []string {
	var doomed []string
	var live []*models.Notification
	for _, n := range notifications {
		if !n.ExpiresAt.After(now) {
			doomed = append(doomed, n.ID)
			continue
		}
		live = append(live, n)
	}
	if len(live) > max {
		sort.Slice(live, func(i, j int) bool {
			return live[i].CreatedAt.After(live[j].CreatedAt)
		})
		for _, n := range live[max:] {
			doomed = append(doomed, n.ID)
		}
	}
	return doomed
}

// cleanup compacts the user's mailbox before a new append
func (n *Notifier) cleanup(ctx context.Context, userID string) error {
	notifications, err := n.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	doomed := planCleanup(notifications, time.Now().UTC(), n.maxRetained)
	if len(doomed) == 0 {
		return nil
	}
	return n.repo.DeleteByIDs(ctx, doomed)
}

func (n *Notifier) emit(ctx context.Context, userID, notifType, title, message string, actionable bool, actionData map[string]interface{}) error {
	if err := n.cleanup(ctx, userID); err != nil {
		n.logger.Warn("Mailbox cleanup failed, appending anyway",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	now := time.Now().UTC()
	notification := &models.Notification{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         notifType,
		Title:        title,
		Message:      message,
		IsActionable: actionable,
		CreatedAt:    now,
		ExpiresAt:    now.AddDate(0, 0, n.retentionDays),
	}
	if actionData != nil {
		raw, err := json.Marshal(actionData)
		if err == nil {
			notification.ActionData = sql.NullString{String: string(raw), Valid: true}
		}
	}

	if err := n.repo.Create(ctx, notification); err != nil {
		n.logger.Warn("Failed to append notification",
			zap.String("user_id", userID),
			zap.String("type", notifType),
			zap.Error(err))
		return err
	}

	n.logger.Info("[NOTIFY]",
		zap.String("type", notifType),
		zap.String("user_id", userID))
	return nil
}

// SendMembershipApproved notifies a user that a membership request was approved
func (n *Notifier) SendMembershipApproved(ctx context.Context, userID, communityID, communityName string) error {
	return n.emit(ctx, userID, models.NotifyMembershipApproved,
		"Request Approved",
		fmt.Sprintf("Your request to join %q has been approved. Welcome!", communityName),
		false,
		map[string]interface{}{"communityId": communityID, "communityName": communityName})
}

// SendModeratorAssigned notifies a user of a new moderator assignment
func (n *Notifier) SendModeratorAssigned(ctx context.Context, userID, communityName string) error {
	return n.emit(ctx, userID, models.NotifyModeratorAssigned,
		"You Are Now a Moderator",
		fmt.Sprintf("You have been assigned as a moderator of %q. You can now manage posts and members.", communityName),
		false,
		map[string]interface{}{"communityName": communityName})
}

// SendOwnershipTransferred notifies the successor of an ownership transfer
func (n *Notifier) SendOwnershipTransferred(ctx context.Context, userID, communityName string) error {
	return n.emit(ctx, userID, models.NotifyOwnershipTransferred,
		"You Are Now the Owner",
		fmt.Sprintf("You have been assigned as the owner of %q. You now have full control.", communityName),
		false,
		map[string]interface{}{"communityName": communityName})
}

// SendCommunityBan notifies a banned user with a readable duration label
func (n *Notifier) SendCommunityBan(ctx context.Context, userID, communityName, reason, duration string) error {
	return n.emit(ctx, userID, models.NotifyCommunityBan,
		"Banned from Community",
		fmt.Sprintf("You have been banned from %q. Reason: %s. Duration: %s", communityName, reason, banDurationLabel(duration)),
		false,
		map[string]interface{}{"communityName": communityName, "reason": reason, "duration": duration})
}

// SendPostApproved notifies a post author that the post went active
func (n *Notifier) SendPostApproved(ctx context.Context, userID, communityID, communityName string) error {
	return n.emit(ctx, userID, models.NotifyPostApproved,
		"Post Approved",
		fmt.Sprintf("Your post in %q has been approved and is now visible to everyone.", communityName),
		false,
		map[string]interface{}{"communityId": communityID, "communityName": communityName})
}

// SendPostRejected notifies a post author of a rejection
func (n *Notifier) SendPostRejected(ctx context.Context, userID, communityID, communityName string) error {
	return n.emit(ctx, userID, models.NotifyPostRejected,
		"Post Rejected",
		fmt.Sprintf("Your post in %q was rejected by a moderator.", communityName),
		true,
		map[string]interface{}{"communityId": communityID, "communityName": communityName})
}

// SendPostDeleted notifies an author that a moderator removed their post
func (n *Notifier) SendPostDeleted(ctx context.Context, userID, postTitle string) error {
	return n.emit(ctx, userID, models.NotifyPostDeleted,
		"Post Deleted",
		fmt.Sprintf("Your post %q was deleted by a moderator.", postTitle),
		false,
		map[string]interface{}{"postTitle": postTitle})
}

// SendCommentDeleted notifies an author that a moderator removed their comment
func (n *Notifier) SendCommentDeleted(ctx context.Context, userID, commentID string) error {
	return n.emit(ctx, userID, models.NotifyCommentDeleted,
		"Comment Deleted",
		"Your comment was deleted by a moderator.",
		false,
		map[string]interface{}{"commentId": commentID})
}

// banDurationLabel renders a ban duration for humans
func banDurationLabel(duration string) string {
	switch duration {
	case models.BanDuration1Day:
		return "1 day"
	case models.BanDuration7Days:
		return "7 days"
	case models.BanDuration30Days:
		return "30 days"
	case models.BanDurationPermanent:
		return "Permanent"
	}
	return duration
}

// List returns the user's mailbox newest-first
func (n *Notifier) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return n.repo.ListByUser(ctx, userID)
}

// MarkRead flips the read flag of one notification
func (n *Notifier) MarkRead(ctx context.Context, id string) error {
	return n.repo.MarkRead(ctx, id)
}

// MarkAllRead marks the whole mailbox read, returning the updated count
func (n *Notifier) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return n.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification
func (n *Notifier) Delete(ctx context.Context, id string) error {
	return n.repo.Delete(ctx, id)
}

// DeleteAll empties the mailbox, returning the removed count
func (n *Notifier) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return n.repo.DeleteByUser(ctx, userID)
}

// DeleteRead removes read notifications, returning the removed count
func (n *Notifier) DeleteRead(ctx context.Context, userID string) (int64, error) {
	return n.repo.DeleteRead(ctx, userID)
}
