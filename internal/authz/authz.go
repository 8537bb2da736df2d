// Package authz is the authorization engine: pure predicates that decide,
// for an actor and a resource, which rows are visible and which mutations
// are permitted. Every call site consults these functions instead of
// re-deriving role rules.
package authz

import (
	"inkwell/internal/models"
)

// Scope is a visibility restriction resolved from an actor's role. The
// repositories translate a Scope into the matching query filter.
type Scope int

const (
	// ScopeNone yields the empty set.
	ScopeNone Scope = iota
	// ScopeOwn restricts to rows owned by the actor.
	ScopeOwn
	// ScopeRoleUser restricts to users holding the plain user role.
	ScopeRoleUser
	// ScopeAll imposes no restriction.
	ScopeAll
)

// UserListScope resolves which user rows the actor may see in management
// views: admin sees all, manager sees only user-role accounts, everyone
// else sees nothing.
func UserListScope(actor *models.User) Scope {
	if actor == nil {
		return ScopeNone
	}
	switch actor.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleManager:
		return ScopeRoleUser
	default:
		return ScopeNone
	}
}

// PostManageScope resolves which posts the actor may see in management
// views. The public listing bypasses this entirely and always filters to
// published posts.
func PostManageScope(actor *models.User) Scope {
	if actor == nil {
		return ScopeNone
	}
	if actor.CanManagePosts() {
		return ScopeAll
	}
	return ScopeOwn
}

// AdminPostListScope resolves the admin console post listing: admin and
// manager see everything, a plain user sees an empty list.
func AdminPostListScope(actor *models.User) Scope {
	if actor == nil {
		return ScopeNone
	}
	if actor.CanManagePosts() {
		return ScopeAll
	}
	return ScopeNone
}

// CommentManageScope resolves which comments the actor may see in
// management views.
func CommentManageScope(actor *models.User) Scope {
	if actor == nil {
		return ScopeNone
	}
	if actor.CanManagePosts() {
		return ScopeAll
	}
	return ScopeOwn
}

// CanDeleteUser decides whether actor may delete target. Checks run in a
// fixed order and the first matching deny short-circuits: self-deletion is
// always refused, protected roles (manager, admin) may only be deleted by an
// admin, and only admins and managers may delete accounts at all.
func CanDeleteUser(actor, target *models.User) error {
	if actor == nil {
		return models.NewPermissionDeniedError(models.ReasonRoleProtection,
			"You do not have permission to delete users")
	}
	if actor.ID == target.ID {
		return models.NewPermissionDeniedError(models.ReasonSelfDeletion,
			"You cannot delete your own account")
	}
	if (target.IsManager() || target.IsAdmin()) && !actor.IsAdmin() {
		return models.NewPermissionDeniedError(models.ReasonRoleProtection,
			"Only admins can delete manager or admin accounts")
	}
	if !actor.CanManageUsers() {
		return models.NewPermissionDeniedError(models.ReasonRoleProtection,
			"You do not have permission to delete users")
	}
	return nil
}

// CanModifyPost decides whether actor may update or delete the post:
// admins, managers, and the post's author.
func CanModifyPost(actor *models.User, post *models.Post) error {
	if actor != nil && (actor.CanManagePosts() || actor.ID == post.UserID) {
		return nil
	}
	return models.NewPermissionDeniedError(models.ReasonNotOwner,
		"You do not have permission to modify this post")
}

// CanChangePostStatus decides whether actor may change the post's status.
// Same rule as modification: admins, managers, and the author.
func CanChangePostStatus(actor *models.User, post *models.Post) error {
	if actor != nil && (actor.CanManagePosts() || actor.ID == post.UserID) {
		return nil
	}
	return models.NewPermissionDeniedError(models.ReasonNotOwner,
		"You do not have permission to update this post")
}

// CanModifyComment decides whether actor may update or delete the comment.
func CanModifyComment(actor *models.User, comment *models.Comment) error {
	if actor != nil && (actor.CanManagePosts() || actor.ID == comment.UserID) {
		return nil
	}
	return models.NewPermissionDeniedError(models.ReasonNotOwner,
		"You do not have permission to modify this comment")
}

// CanModerateComment decides whether actor may flip a comment's approval
// flag. Authors can edit their own text but never moderate.
func CanModerateComment(actor *models.User) error {
	if actor != nil && actor.CanManagePosts() {
		return nil
	}
	return models.NewPermissionDeniedError(models.ReasonNotOwner,
		"Only admins and managers can moderate comments")
}

// CanChangeRole decides whether actor may change any user's role. Admin only.
func CanChangeRole(actor *models.User) error {
	if actor != nil && actor.IsAdmin() {
		return nil
	}
	return models.NewPermissionDeniedError(models.ReasonRoleChange,
		"Only admins can change user roles")
}
