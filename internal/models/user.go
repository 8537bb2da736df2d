// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the access tier assigned to a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ValidRole reports whether r is one of the three enumerated roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User represents a registered account. Password always holds a bcrypt hash,
// never plaintext.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"unique;not null" json:"username"`
	Email       string     `gorm:"unique;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        Role       `gorm:"type:varchar(10);not null;default:user" json:"role"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Bio         string     `gorm:"size:500" json:"bio"`
	AvatarURL   string     `json:"avatar_url"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool { return u.Role == RoleManager }

// CanManageUsers reports whether the user may access user management views.
func (u *User) CanManageUsers() bool { return u.Role == RoleAdmin || u.Role == RoleManager }

// CanManagePosts reports whether the user may access post management views.
func (u *User) CanManagePosts() bool { return u.Role == RoleAdmin || u.Role == RoleManager }
