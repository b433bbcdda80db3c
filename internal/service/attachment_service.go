package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/repository"
	"github.com/aki/journal-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file size too large")
	ErrFileMissing        = errors.New("no file provided")
)

type AttachmentService struct {
	journalRepo    repository.JournalRepository
	attachmentRepo repository.AttachmentRepository
	blobs          storage.BlobStore
}

func NewAttachmentService(journalRepo repository.JournalRepository, attachmentRepo repository.AttachmentRepository, blobs storage.BlobStore) *AttachmentService {
	return &AttachmentService{
		journalRepo:    journalRepo,
		attachmentRepo: attachmentRepo,
		blobs:          blobs,
	}
}

type UploadInput struct {
	JournalID        uuid.UUID
	OriginalFilename string
	MimeType         string
	Size             int64
	Body             io.Reader
}

// Upload validates and stores one attachment. Validation runs before any
// blob call; a blob write that succeeds but is followed by a failed metadata
// insert is not rolled back, only logged.
func (s *AttachmentService) Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*domain.Attachment, error) {
	if _, err := s.journalRepo.GetByID(ctx, input.JournalID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !domain.MimeTypeAllowed(input.MimeType) {
		return nil, ErrFileTypeNotAllowed
	}
	if input.Size > domain.MaxAttachmentSize {
		return nil, ErrFileTooLarge
	}

	fileID := uuid.New()
	ext := strings.TrimPrefix(filepath.Ext(input.OriginalFilename), ".")
	if ext == "" {
		ext = "bin"
	}
	filename := fmt.Sprintf("%s.%s", fileID, ext)
	key := fmt.Sprintf("attachments/%s/%s/%s", userID, input.JournalID, filename)

	if err := s.blobs.Put(ctx, key, input.Body, input.Size, input.MimeType); err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		ID:               fileID,
		JournalEntryID:   input.JournalID,
		Filename:         filename,
		OriginalFilename: input.OriginalFilename,
		MimeType:         input.MimeType,
		Size:             input.Size,
		StorageKey:       key,
		CreatedAt:        time.Now(),
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		log.Printf("ERROR [service.Attachment] metadata insert failed after blob write %s: %v", key, err)
		return nil, err
	}

	return attachment, nil
}

// Fetch returns the attachment metadata and a reader over its bytes. The
// caller must close the reader.
func (s *AttachmentService) Fetch(ctx context.Context, id, userID uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}

	body, err := s.blobs.Get(ctx, attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}

	return attachment, body, nil
}

// Delete removes the blob first, then the metadata row. A failed blob delete
// is logged and the row is removed anyway.
func (s *AttachmentService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := s.blobs.Delete(ctx, attachment.StorageKey); err != nil {
		log.Printf("WARN [service.Attachment] blob delete failed for %s: %v", attachment.StorageKey, err)
	}

	return s.attachmentRepo.Delete(ctx, id)
}
