package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OAuthClient struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID     string         `json:"clientId" gorm:"uniqueIndex;not null"`
	ClientSecret string         `json:"-" gorm:"not null"`
	Name         string         `json:"name" gorm:"not null"`
	RedirectURIs datatypes.JSON `json:"redirectUris" gorm:"not null"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type OAuthToken struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccessToken  string    `json:"-" gorm:"uniqueIndex;not null"`
	RefreshToken string    `json:"-"`
	ClientID     uuid.UUID `json:"clientId" gorm:"type:uuid;not null"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}
