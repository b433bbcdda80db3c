package service

import (
	"github.com/aki/journal-api/internal/config"
	"github.com/aki/journal-api/internal/repository"
	"github.com/aki/journal-api/internal/storage"
)

type Services struct {
	Auth       *AuthService
	Journal    *JournalService
	Attachment *AttachmentService
	Admin      *AdminService
	User       *UserService
}

func NewServices(repos *repository.Repositories, blobs storage.BlobStore, cfg *config.Config) *Services {
	auth := NewAuthService(repos.User, repos.Session, cfg)
	return &Services{
		Auth:       auth,
		Journal:    NewJournalService(repos.Journal, repos.Attachment, blobs),
		Attachment: NewAttachmentService(repos.Journal, repos.Attachment, blobs),
		Admin:      NewAdminService(repos.User, repos.Attachment, blobs),
		User:       NewUserService(repos.User, repos.Attachment, auth, blobs),
	}
}
