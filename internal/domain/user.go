package domain

import (
	"context"
	"strings"
	"time"
)

// User is an account that can browse, organize and RSVP to events
type User struct {
	ID              string    `json:"id"`
	FirebaseUID     string    `json:"firebase_uid,omitempty"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Roles           []string  `json:"roles"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasRole checks if user has a specific role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UserRepository defines operations for managing users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*User, error)
	UpdateFirebaseUID(ctx context.Context, userID string, firebaseUID string) error
	AddRole(ctx context.Context, userID string, role string) error
}

// Role constants
const (
	RoleMember = "member"
	RoleAdmin  = "admin" // manages OAuth credentials, payment settings and the listing catalog
)
