// Package models contains data structures for the blog's domain models.
package models

import "time"

// Role is the privilege level of an admin account.
type Role string

const (
	// RoleAdmin has full privileges.
	RoleAdmin Role = "admin"
	// RoleEditor can author posts but cannot manage accounts, messages or stats.
	RoleEditor Role = "editor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Admin is an account that can sign in to the admin panel. It doubles as the
// author identity referenced by posts.
type Admin struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;not null" json:"username"`
	Password      string    `gorm:"not null" json:"-"`
	Role          Role      `gorm:"type:varchar(16);not null;default:editor" json:"role"`
	FullName      string    `json:"fullName"`
	Bio           string    `gorm:"type:text" json:"bio"`
	Email         string    `json:"email"`
	Twitter       string    `json:"twitter"`
	GitHub        string    `gorm:"column:github" json:"github"`
	LinkedIn      string    `gorm:"column:linkedin" json:"linkedin"`
	Pronouns      string    `json:"pronouns"`
	ProfilePicURL string    `gorm:"column:profile_pic_url" json:"profilePicUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
