package repository

import (
	"context"

	"inkwell/internal/authz"
	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	Status   models.PostStatus
	AuthorID uint
	Tag      string
	Limit    int
	Offset   int
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetPublishedByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.Post, error)
	List(ctx context.Context, f PostFilter, scope authz.Scope, actorID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	if err := r.attachUserVote(ctx, &post, currentUserID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetPublishedByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.status = ?", models.StatusPublished).
		First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	if err := r.attachUserVote(ctx, &post, currentUserID); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetScoped fetches a post through the actor's management visibility filter;
// rows outside the scope surface as NotFound.
func (r *postRepository) GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := scopePosts(r.db.WithContext(ctx), scope, actorID)
	if db == nil {
		return nil, models.NewNotFoundError("Post", id)
	}

	var post models.Post
	if err := r.applyPostDetails(db).Preload("User").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter, scope authz.Scope, actorID uint) ([]*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := scopePosts(r.db.WithContext(ctx), scope, actorID)
	if db == nil {
		return []*models.Post{}, nil
	}

	db = r.applyPostDetails(db).Preload("User")
	if f.Status != "" {
		db = db.Where("posts.status = ?", f.Status)
	}
	if f.AuthorID != 0 {
		db = db.Where("posts.user_id = ?", f.AuthorID)
	}
	if f.Tag != "" {
		db = db.Where("LOWER(posts.tags) LIKE LOWER(?)", "%"+f.Tag+"%")
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}

	var posts []*models.Post
	if err := db.Order("posts.created_at DESC").Find(&posts).Error; err != nil {
		return nil, mapStoreErr(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Delete removes the post and its comments and likes in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "Post", id)
	}
	cache.InvalidatePostCounters(ctx, id)
	return nil
}

// applyPostDetails adds subqueries that compute the derived counters in the
// same query, scanned into the read-only count fields.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.is_like) AS like_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND NOT likes.is_like) AS dislike_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

func (r *postRepository) attachUserVote(ctx context.Context, post *models.Post, currentUserID uint) error {
	if currentUserID == 0 {
		return nil
	}
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", post.ID, currentUserID).
		First(&like).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return mapStoreErr(err)
	}
	post.UserVote = &like.IsLike
	return nil
}

// scopePosts translates a management visibility scope into a query filter.
// A nil return means the scope yields the empty set.
func scopePosts(db *gorm.DB, scope authz.Scope, actorID uint) *gorm.DB {
	switch scope {
	case authz.ScopeAll:
		return db
	case authz.ScopeOwn:
		return db.Where("posts.user_id = ?", actorID)
	default:
		return nil
	}
}
