package repository

import (
	"context"

	"inkwell/internal/authz"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// maxThreadDepth caps reply nesting when assembling a comment tree. Replies
// below the cap are flattened onto their deepest visible ancestor.
const maxThreadDepth = 10

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// GetScoped fetches a comment through the actor's management visibility
// filter; rows outside the scope surface as NotFound.
func (r *commentRepository) GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := scopeComments(r.db.WithContext(ctx), scope, actorID)
	if db == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}

	var comment models.Comment
	if err := db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns all approved comments on a post, oldest first, as a
// flat slice ready for tree assembly.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Delete removes the comment and its entire reply subtree in one transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Comment{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return deleteCommentSubtrees(tx, []uint{id})
	})
	if err != nil {
		return notFoundOr(err, "Comment", id)
	}
	return nil
}

// deleteCommentSubtrees removes the given comments and all of their
// descendants, level by level, children before parents.
func deleteCommentSubtrees(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	levels := [][]uint{ids}
	frontier := ids
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return err
		}
		if len(children) == 0 {
			break
		}
		levels = append(levels, children)
		frontier = children
	}

	for i := len(levels) - 1; i >= 0; i-- {
		if err := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// BuildCommentTree assembles a flat comment slice into root comments with
// nested Replies, preserving the input order at every level. A comment whose
// parent is missing from the slice is promoted to a root. Nesting beyond
// maxThreadDepth is flattened onto the deepest visible ancestor.
func BuildCommentTree(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		c.Replies = nil
		c.IsReply = c.ParentID != nil
		byID[c.ID] = c
	}

	depth := make(map[uint]int, len(comments))
	var roots []*models.Comment
	for _, c := range comments {
		parent := (*models.Comment)(nil)
		if c.ParentID != nil {
			parent = byID[*c.ParentID]
		}
		if parent == nil {
			depth[c.ID] = 0
			roots = append(roots, c)
			continue
		}
		// Input is ordered oldest first, so a parent's depth is always
		// known before its children are visited.
		d := depth[parent.ID] + 1
		if d > maxThreadDepth {
			d = maxThreadDepth
			parent = ancestorAtDepth(parent, byID, depth, maxThreadDepth-1)
		}
		depth[c.ID] = d
		parent.Replies = append(parent.Replies, c)
	}

	if roots == nil {
		roots = []*models.Comment{}
	}
	return roots
}

func ancestorAtDepth(c *models.Comment, byID map[uint]*models.Comment, depth map[uint]int, want int) *models.Comment {
	for depth[c.ID] > want && c.ParentID != nil {
		parent := byID[*c.ParentID]
		if parent == nil {
			break
		}
		c = parent
	}
	return c
}

// scopeComments translates a management visibility scope into a query
// filter. A nil return means the scope yields the empty set.
func scopeComments(db *gorm.DB, scope authz.Scope, actorID uint) *gorm.DB {
	switch scope {
	case authz.ScopeAll:
		return db
	case authz.ScopeOwn:
		return db.Where("user_id = ?", actorID)
	default:
		return nil
	}
}
