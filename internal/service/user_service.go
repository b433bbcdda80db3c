package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/repository"
	"github.com/aki/journal-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo       repository.UserRepository
	attachmentRepo repository.AttachmentRepository
	auth           *AuthService
	blobs          storage.BlobStore
}

func NewUserService(userRepo repository.UserRepository, attachmentRepo repository.AttachmentRepository, auth *AuthService, blobs storage.BlobStore) *UserService {
	return &UserService{
		userRepo:       userRepo,
		attachmentRepo: attachmentRepo,
		auth:           auth,
		blobs:          blobs,
	}
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// UpdateProfile applies the provided fields. Changing the email resets the
// verified flag.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil && *input.Email != user.Email {
		user.Email = *input.Email
		user.EmailVerified = false
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount is the self-service variant of the cascade: identical
// ordering and atomicity to the admin path, scoped to the caller.
func (s *UserService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	keys, err := s.attachmentRepo.ListKeysByUser(ctx, id)
	if err != nil {
		log.Printf("WARN [service.User] listing attachment keys for %s failed: %v", id, err)
	}
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Printf("WARN [service.User] blob delete failed for %s: %v", key, err)
		}
	}

	if err := s.userRepo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// RequestPasswordReset mints a reset token for the address if it belongs to
// a user. It reports success regardless, so the endpoint can never be used
// to probe which emails exist; failures are only logged.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("ERROR [service.User] password reset lookup failed: %v", err)
		}
		return
	}

	token, err := s.auth.IssueLinkToken(user.ID, LinkTokenPasswordReset)
	if err != nil {
		log.Printf("ERROR [service.User] issuing reset token failed: %v", err)
		return
	}

	// Mail delivery is an external concern; the token is logged for the
	// development setup where no mailer is wired.
	log.Printf("INFO [service.User] password reset token issued for %s: %s", user.ID, token)
}

// ResendVerification mints a fresh email-verification token for the user.
func (s *UserService) ResendVerification(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	token, err := s.auth.IssueLinkToken(user.ID, LinkTokenEmailVerification)
	if err != nil {
		return err
	}

	log.Printf("INFO [service.User] verification token issued for %s: %s", user.ID, token)
	return nil
}
