package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"not null"`
	PasswordHash  string    `json:"-"`
	Image         string    `json:"image,omitempty"`
	IsAdmin       bool      `json:"isAdmin" gorm:"not null;default:false"`
	EmailVerified bool      `json:"emailVerified" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasPassword reports whether the user can sign in with a password.
// Admin-created and bootstrap users start without one; it is set when they
// first sign up against their pre-provisioned email.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
