package models

import (
	"database/sql"
	"time"
)

// Community represents a professional community ("forum")
type Community struct {
	ID                   string         `gorm:"type:varchar(36);primaryKey;column:id"`
	Name                 string         `gorm:"type:varchar(80);not null;index:forum_communities_name_ix;column:name"`
	Description          string         `gorm:"type:varchar(5000);not null;default:'';column:description"`
	Rules                string         `gorm:"type:text;not null;default:'';column:rules"`
	OwnerID              string         `gorm:"type:varchar(36);not null;column:owner_id"`
	Status               string         `gorm:"type:varchar(16);not null;default:'active';column:status"`
	RequiresApproval     bool           `gorm:"not null;default:false;column:requires_approval"`
	RequiresPostApproval bool           `gorm:"not null;default:false;column:requires_post_approval"`
	MemberCount          int64          `gorm:"not null;default:0;column:member_count"`
	PostCount            int64          `gorm:"not null;default:0;column:post_count"`
	LastPostAt           sql.NullTime   `gorm:"column:last_post_at"`
	IsDeleted            bool           `gorm:"not null;default:false;column:is_deleted"`
	DisabledAt           sql.NullTime   `gorm:"column:disabled_at"`
	DisabledBy           sql.NullString `gorm:"type:varchar(36);column:disabled_by"`
	DisabledReason       sql.NullString `gorm:"type:varchar(500);column:disabled_reason"`
	CreatedAt            time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt            time.Time      `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Community
func (Community) TableName() string {
	return "forum_communities"
}

// Community status constants
const (
	CommunityStatusActive   = "active"
	CommunityStatusDisabled = "disabled"
)

// DefaultRules is applied when a community is created without explicit rules
const DefaultRules = "• Respect every member\n• Verified clinical content only\n• No spam or self-promotion\n• Patient confidentiality at all times\n• Professional language"

// Member is a community membership row
type Member struct {
	CommunityID string    `gorm:"type:varchar(36);primaryKey;column:community_id"`
	UserID      string    `gorm:"type:varchar(36);primaryKey;column:user_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Member
func (Member) TableName() string {
	return "forum_members"
}

// PendingMember is a membership request awaiting moderator action.
// The user's email, name and role are snapshotted at request time so
// moderators can review the request even if the directory entry changes.
type PendingMember struct {
	CommunityID string    `gorm:"type:varchar(36);primaryKey;column:community_id"`
	UserID      string    `gorm:"type:varchar(36);primaryKey;column:user_id"`
	RequestedAt time.Time `gorm:"not null;column:requested_at"`
	UserEmail   string    `gorm:"type:varchar(255);not null;default:'';column:user_email"`
	UserName    string    `gorm:"type:varchar(255);not null;default:'';column:user_name"`
	UserRole    string    `gorm:"type:varchar(20);not null;default:'';column:user_role"`
}

// TableName specifies the table name for PendingMember
func (PendingMember) TableName() string {
	return "forum_pending_members"
}

// Moderator is a community moderator assignment
type Moderator struct {
	CommunityID string    `gorm:"type:varchar(36);primaryKey;column:community_id"`
	UserID      string    `gorm:"type:varchar(36);primaryKey;column:user_id"`
	AddedAt     time.Time `gorm:"not null;column:added_at"`
	AddedBy     string    `gorm:"type:varchar(36);not null;column:added_by"`
}

// TableName specifies the table name for Moderator
func (Moderator) TableName() string {
	return "forum_moderators"
}

// Ban is a community ban record. Expired bans are removed lazily the
// next time the ban list is checked, never by a background sweep.
type Ban struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	CommunityID string    `gorm:"type:varchar(36);not null;index:forum_bans_community_ix;column:community_id"`
	UserID      string    `gorm:"type:varchar(36);not null;column:user_id"`
	BannedAt    time.Time `gorm:"not null;column:banned_at"`
	BannedBy    string    `gorm:"type:varchar(36);not null;column:banned_by"`
	Reason      string    `gorm:"type:varchar(500);not null;column:reason"`
	Duration    string    `gorm:"type:varchar(12);not null;column:duration"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active"`
	UserEmail   string    `gorm:"type:varchar(255);not null;default:'';column:user_email"`
	UserName    string    `gorm:"type:varchar(255);not null;default:'';column:user_name"`
	UserRole    string    `gorm:"type:varchar(20);not null;default:'';column:user_role"`
}

// TableName specifies the table name for Ban
func (Ban) TableName() string {
	return "forum_bans"
}

// Ban duration constants
const (
	BanDuration1Day      = "1d"
	BanDuration7Days     = "7d"
	BanDuration30Days    = "30d"
	BanDurationPermanent = "permanent"
)
