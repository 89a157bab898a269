// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultUserImage is assigned to users who never uploaded an avatar.
const DefaultUserImage = "/placeholder-user.jpg"

// User represents a registered blog user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Image        string    `json:"image"`
	Bio          string    `json:"bio"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary returns the public author fields embedded in post views.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Image:    u.Image,
		Bio:      u.Bio,
	}
}

// AuthorSummary is the subset of a user shown next to posts and comments.
type AuthorSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Image    string    `json:"image"`
	Bio      string    `json:"bio,omitempty"`
}

// NewUser carries registration input. Password is plaintext and is hashed
// by the store before it is written.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
	Image    string
	Bio      string
	Role     Role
}

// ProfileUpdate holds the self-editable profile fields.
type ProfileUpdate struct {
	Name     string
	Username string
	Bio      string
	Image    string
}
