package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteCounts holds the derived like/dislike tally for a post.
type VoteCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// LikeRepository defines persistence operations for post votes.
type LikeRepository interface {
	Upsert(ctx context.Context, like *models.Like) error
	GetForUser(ctx context.Context, postID, userID uint) (*models.Like, error)
	Counts(ctx context.Context, postID uint) (VoteCounts, error)
	Delete(ctx context.Context, postID, userID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Upsert records a vote, replacing any prior vote by the same user on the
// same post. The (post_id, user_id) unique index makes this a single atomic
// statement on both postgres and sqlite.
func (r *likeRepository) Upsert(ctx context.Context, like *models.Like) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_like", "updated_at"}),
	}).Create(like).Error
	if err != nil {
		return mapStoreErr(err)
	}
	cache.InvalidatePostCounters(ctx, like.PostID)
	return nil
}

// GetForUser returns the user's vote on a post, or (nil, nil) if they have
// not voted.
func (r *likeRepository) GetForUser(ctx context.Context, postID, userID uint) (*models.Like, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var like models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &like, nil
}

// Counts returns the post's like/dislike tally, served cache-aside with a
// short TTL.
func (r *likeRepository) Counts(ctx context.Context, postID uint) (VoteCounts, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var counts VoteCounts
	err := cache.Aside(ctx, cache.PostCountersKey(postID), &counts, cache.CountersTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Like{}).
			Where("post_id = ? AND is_like = ?", postID, true).
			Count(&counts.Likes).Error; err != nil {
			return err
		}
		return r.db.WithContext(ctx).Model(&models.Like{}).
			Where("post_id = ? AND is_like = ?", postID, false).
			Count(&counts.Dislikes).Error
	})
	if err != nil {
		return VoteCounts{}, mapStoreErr(err)
	}
	return counts, nil
}

// Delete removes a user's vote on a post. Missing votes are not an error.
func (r *likeRepository) Delete(ctx context.Context, postID, userID uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return mapStoreErr(err)
	}
	cache.InvalidatePostCounters(ctx, postID)
	return nil
}
