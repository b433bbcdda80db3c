package domain

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a free-text (markdown) entry owned by exactly one user.
// The owning user id never changes after creation.
type JournalEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
