package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleDeleted   Role = "deleted"
)

// Assignable reports whether r can be set through a role change.
// RoleDeleted is only reachable through a soft delete.
func (r Role) Assignable() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:100;not null" json:"email,omitempty"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:user;check:chk_users_role,role IN ('user','moderator','admin','deleted')" json:"role"`

	// Extended profile
	Nickname          string `gorm:"size:50" json:"nickname"`
	Bio               string `json:"bio"`
	AvatarURL         string `json:"avatar_url"`
	DietaryPreference string `gorm:"size:50" json:"dietary_preference"`
	Region            string `gorm:"size:100" json:"region"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a copy safe to show to other users.
func (u User) Public() User {
	u.Email = ""
	return u
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	// Login accepts either the username or the email address.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// UpdateUserRequest is a full replace of the editable user fields.
type UpdateUserRequest struct {
	Username          string `json:"username" binding:"required,min=2,max=50"`
	Email             string `json:"email" binding:"required,email"`
	Nickname          string `json:"nickname"`
	Bio               string `json:"bio"`
	AvatarURL         string `json:"avatar_url"`
	DietaryPreference string `json:"dietary_preference"`
	Region            string `json:"region"`
}

// ProfileRequest is a partial self-update; nil fields are left alone.
type ProfileRequest struct {
	Nickname          *string `json:"nickname"`
	Bio               *string `json:"bio"`
	AvatarURL         *string `json:"avatar_url"`
	DietaryPreference *string `json:"dietary_preference"`
	Region            *string `json:"region"`
}

type ChangeRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}
