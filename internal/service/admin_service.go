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

var (
	ErrUserNotFound = errors.New("user not found")
	ErrAdminExists  = errors.New("an admin user already exists")
)

type AdminService struct {
	userRepo       repository.UserRepository
	attachmentRepo repository.AttachmentRepository
	blobs          storage.BlobStore
}

func NewAdminService(userRepo repository.UserRepository, attachmentRepo repository.AttachmentRepository, blobs storage.BlobStore) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		attachmentRepo: attachmentRepo,
		blobs:          blobs,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

type CreateUserInput struct {
	Email   string
	Name    string
	IsAdmin bool
}

// CreateUser provisions a user without a password; the password is set when
// the user first signs up with this email. Admin-created users are
// pre-verified.
func (s *AdminService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:            uuid.New(),
		Email:         input.Email,
		Name:          input.Name,
		IsAdmin:       input.IsAdmin,
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser runs the cascade: best-effort blob cleanup for the user's
// attachments, then one transaction removing attachments, entries, oauth
// tokens, sessions and the user row in that order.
func (s *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.deleteBlobs(ctx, id)

	if err := s.userRepo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *AdminService) deleteBlobs(ctx context.Context, userID uuid.UUID) {
	keys, err := s.attachmentRepo.ListKeysByUser(ctx, userID)
	if err != nil {
		log.Printf("WARN [service.Admin] listing attachment keys for %s failed: %v", userID, err)
		return
	}
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Printf("WARN [service.Admin] blob delete failed for %s: %v", key, err)
		}
	}
}

// BootstrapAdmin creates the first admin. It succeeds only while no admin
// exists; the check is a query followed by a conditional insert, and any
// concurrent double submission is left to the store's unique email index.
func (s *AdminService) BootstrapAdmin(ctx context.Context, email, name string) (*domain.User, error) {
	count, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAdminExists
	}

	user := &domain.User{
		ID:            uuid.New(),
		Email:         email,
		Name:          name,
		IsAdmin:       true,
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckAdmin re-reads the user row and confirms the admin flag; session
// payloads are never trusted for this.
func (s *AdminService) CheckAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}
