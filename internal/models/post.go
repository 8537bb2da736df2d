package models

import (
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// ValidPostStatus reports whether s is one of the enumerated statuses.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Post is an authored article. The author is immutable after creation.
// PublishedAt is set exactly once, on the first transition into the
// published status, and is never cleared afterwards.
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Content         string     `gorm:"not null" json:"content"`
	Status          PostStatus `gorm:"type:varchar(10);not null;default:draft;index" json:"status"`
	FeaturedImage   string     `json:"featured_image"`
	MetaDescription string     `gorm:"size:160" json:"meta_description"`
	Tags            string     `gorm:"size:200" json:"tags"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"author"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"like_count"`
	// DislikeCount is not persisted; computed at query time
	DislikeCount int `gorm:"->;-:migration" json:"dislike_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->;-:migration" json:"comment_count"`
	// UserVote is the requesting user's vote on this post, if any (computed)
	UserVote *bool `gorm:"-" json:"user_vote,omitempty"`
}
