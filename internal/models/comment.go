package models

import (
	"time"
)

// Comment belongs to exactly one post. A comment may reply to another
// comment on the same post; ParentID forms the adjacency of the reply tree.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	IsApproved bool      `gorm:"default:true" json:"is_approved"`
	User       User      `gorm:"foreignKey:UserID" json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Replies is assembled at read time from ParentID adjacency; never stored.
	Replies []*Comment `gorm:"-" json:"replies"`
	// IsReply is derived: true when the comment has a parent.
	IsReply bool `gorm:"-" json:"is_reply"`
}
