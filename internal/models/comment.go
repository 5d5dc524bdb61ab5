package models

import (
	"database/sql"
	"time"
)

// Comment represents a post comment. Comments form a tree per post via
// ParentCommentID; deleting one must take its whole reply subtree with it.
type Comment struct {
	ID              string         `gorm:"type:varchar(36);primaryKey;column:id"`
	PostID          string         `gorm:"type:varchar(36);not null;index:forum_comments_post_ix;column:post_id"`
	AuthorID        string         `gorm:"type:varchar(36);not null;column:author_id"`
	ParentCommentID sql.NullString `gorm:"type:varchar(36);index:forum_comments_parent_ix;column:parent_comment_id"`
	Content         string         `gorm:"type:text;not null;column:content"`
	Likes           int64          `gorm:"not null;default:0;column:likes"`
	CreatedAt       time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt       sql.NullTime   `gorm:"column:updated_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "forum_comments"
}
