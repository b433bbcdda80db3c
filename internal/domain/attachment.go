package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxAttachmentSize is the upload ceiling in bytes (10 MiB).
const MaxAttachmentSize = 10 * 1024 * 1024

// AllowedMimeTypes lists the attachment content types accepted for upload.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"text/markdown",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func MimeTypeAllowed(mimeType string) bool {
	for _, t := range AllowedMimeTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

type Attachment struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JournalEntryID   uuid.UUID `json:"journalEntryId" gorm:"type:uuid;not null;index"`
	Filename         string    `json:"filename" gorm:"not null"`
	OriginalFilename string    `json:"originalFilename" gorm:"not null"`
	MimeType         string    `json:"mimeType" gorm:"not null"`
	Size             int64     `json:"size" gorm:"not null"`
	StorageKey       string    `json:"-" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
