package models

import (
	"database/sql"
	"time"
)

// Notification is one mailbox entry. Entries are created, optionally
// marked read, and deleted; nothing else ever mutates them.
type Notification struct {
	ID           string         `gorm:"type:varchar(36);primaryKey;column:id"`
	UserID       string         `gorm:"type:varchar(36);not null;index:forum_notifications_user_ix;column:user_id"`
	Type         string         `gorm:"type:varchar(40);not null;column:type"`
	Title        string         `gorm:"type:varchar(120);not null;column:title"`
	Message      string         `gorm:"type:varchar(1000);not null;column:message"`
	IsRead       bool           `gorm:"not null;default:false;column:is_read"`
	IsActionable bool           `gorm:"not null;default:false;column:is_actionable"`
	ActionData   sql.NullString `gorm:"type:text;column:action_data"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
	ExpiresAt    time.Time      `gorm:"not null;column:expires_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "forum_notifications"
}

// Notification type constants
const (
	NotifyMembershipApproved   = "membership_approved"
	NotifyModeratorAssigned    = "moderator_assigned"
	NotifyOwnershipTransferred = "ownership_transferred"
	NotifyCommunityBan         = "community_ban"
	NotifyPostApproved         = "post_approved"
	NotifyPostRejected         = "post_rejected"
	NotifyPostDeleted          = "post_deleted"
	NotifyCommentDeleted       = "comment_deleted"
)
