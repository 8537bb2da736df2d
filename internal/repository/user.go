package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/authz"
	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scope authz.Scope, actorID uint, role models.Role, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			field := "username"
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				field = "email"
			}
			return models.NewDuplicateIdentityError(field)
		}
		return mapStoreErr(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &user, nil
}

// GetScoped fetches a user through the actor's visibility filter; rows
// outside the scope surface as NotFound.
func (r *userRepository) GetScoped(ctx context.Context, id uint, scope authz.Scope, actorID uint) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := scopeUsers(r.db.WithContext(ctx), scope, actorID)
	if db == nil {
		return nil, models.NewNotFoundError("User", id)
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateIdentityError("username or email")
		}
		return mapStoreErr(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user and everything they own: likes, comments (with
// reply subtrees), and posts with all their dependents. Runs in a single
// transaction so a failure leaves no partial cascade.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteCommentSubtrees(tx, commentIDs); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, scope authz.Scope, actorID uint, role models.Role, limit, offset int) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := scopeUsers(r.db.WithContext(ctx), scope, actorID)
	if db == nil {
		return []models.User{}, nil
	}
	if role != "" {
		db = db.Where("role = ?", role)
	}

	var users []models.User
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, mapStoreErr(err)
	}
	return users, nil
}

// scopeUsers translates a visibility scope into a query filter. A nil
// return means the scope yields the empty set and no query should run.
func scopeUsers(db *gorm.DB, scope authz.Scope, actorID uint) *gorm.DB {
	switch scope {
	case authz.ScopeAll:
		return db
	case authz.ScopeRoleUser:
		return db.Where("role = ?", models.RoleUser)
	case authz.ScopeOwn:
		return db.Where("id = ?", actorID)
	default:
		return nil
	}
}
