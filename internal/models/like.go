package models

import (
	"time"
)

// Like records a single user's vote on a post. IsLike true means like,
// false means dislike. The (post_id, user_id) pair is unique; a repeat vote
// overwrites the stored value instead of inserting a second row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"user_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
