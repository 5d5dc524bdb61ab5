package models

import (
	"database/sql"
	"time"
)

// Post represents a community publication.
//
// A pending post contributes to no counter anywhere; activation (by a
// moderator, or at creation time when the community does not require
// post approval) is the single point where community and author
// counters pick it up.
type Post struct {
	ID           string         `gorm:"type:varchar(36);primaryKey;column:id"`
	Title        string         `gorm:"type:varchar(300);not null;column:title"`
	Content      string         `gorm:"type:text;not null;column:content"`
	AuthorID     string         `gorm:"type:varchar(36);not null;index:forum_posts_author_ix;column:author_id"`
	CommunityID  string         `gorm:"type:varchar(36);not null;index:forum_posts_community_ix;column:community_id"`
	Status       string         `gorm:"type:varchar(12);not null;default:'active';column:status"`
	CommentCount int64          `gorm:"not null;default:0;column:comment_count"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt    sql.NullTime   `gorm:"column:updated_at"`
	ValidatedAt  sql.NullTime   `gorm:"column:validated_at"`
	ValidatedBy  sql.NullString `gorm:"type:varchar(36);column:validated_by"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "forum_posts"
}

// Post status constants
const (
	PostStatusPending = "pending"
	PostStatusActive  = "active"
)

// PostImage is one attached image; Position preserves attachment order
type PostImage struct {
	PostID   string `gorm:"type:varchar(36);primaryKey;column:post_id"`
	Position int    `gorm:"primaryKey;autoIncrement:false;column:position"`
	URL      string `gorm:"type:varchar(1024);not null;column:url"`
}

// TableName specifies the table name for PostImage
func (PostImage) TableName() string {
	return "forum_post_images"
}
