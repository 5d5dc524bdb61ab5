package models

import "time"

// User mirrors the directory entry the forum layer reads and writes.
// The directory owns the schema; only the fields the forum layer
// touches are mapped here.
type User struct {
	ID                string    `gorm:"type:varchar(36);primaryKey;column:id"`
	Email             string    `gorm:"type:varchar(255);not null;default:'';column:email"`
	Name              string    `gorm:"type:varchar(255);not null;default:'';column:name"`
	Role              string    `gorm:"type:varchar(20);not null;default:'unverified';column:role"`
	ForumCount        int64     `gorm:"not null;default:0;column:forum_count"`
	JoinedForumCount  int64     `gorm:"not null;default:0;column:joined_forum_count"`
	PostCount         int64     `gorm:"not null;default:0;column:post_count"`
	CommentCount      int64     `gorm:"not null;default:0;column:comment_count"`
	ContributionCount int64     `gorm:"not null;default:0;column:contribution_count"`
	CreatedAt         time.Time `gorm:"not null;column:created_at"`
	UpdatedAt         time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "forum_users"
}

// Directory role constants
const (
	RoleUnverified = "unverified"
	RoleDoctor     = "doctor"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
)

// CanPublish reports whether the role is allowed to author posts and comments
func (u *User) CanPublish() bool {
	switch u.Role {
	case RoleDoctor, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsSystemModerator reports whether the role carries platform-wide
// moderation permissions, as opposed to per-community ones.
func (u *User) IsSystemModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
