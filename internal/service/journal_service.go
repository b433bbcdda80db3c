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
	ErrEmptyContent = errors.New("content is required")
	ErrEmptyQuery   = errors.New("search query is required")
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type JournalService struct {
	journalRepo    repository.JournalRepository
	attachmentRepo repository.AttachmentRepository
	blobs          storage.BlobStore
}

func NewJournalService(journalRepo repository.JournalRepository, attachmentRepo repository.AttachmentRepository, blobs storage.BlobStore) *JournalService {
	return &JournalService{
		journalRepo:    journalRepo,
		attachmentRepo: attachmentRepo,
		blobs:          blobs,
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func paginate(page, limit int, total int64) Pagination {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func (s *JournalService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.JournalEntry, Pagination, error) {
	page, limit = normalizePage(page, limit)

	entries, total, err := s.journalRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return entries, paginate(page, limit, total), nil
}

func (s *JournalService) Search(ctx context.Context, userID uuid.UUID, query string, page, limit int) ([]*domain.JournalEntry, Pagination, error) {
	if query == "" {
		return nil, Pagination{}, ErrEmptyQuery
	}
	page, limit = normalizePage(page, limit)

	entries, total, err := s.journalRepo.SearchByUser(ctx, userID, query, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return entries, paginate(page, limit, total), nil
}

func (s *JournalService) Create(ctx context.Context, userID uuid.UUID, content string) (*domain.JournalEntry, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now()
	entry := &domain.JournalEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.journalRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *JournalService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *JournalService) Update(ctx context.Context, id, userID uuid.UUID, content string) (*domain.JournalEntry, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	entry, err := s.journalRepo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	entry.Content = content
	entry.UpdatedAt = time.Now()
	if err := s.journalRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// Delete removes one entry and its attachment rows. Blob bytes are deleted
// best-effort before the rows go; a blob failure never blocks the delete.
func (s *JournalService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.journalRepo.GetByID(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	attachments, err := s.attachmentRepo.ListByEntry(ctx, id)
	if err == nil {
		for _, a := range attachments {
			if err := s.blobs.Delete(ctx, a.StorageKey); err != nil {
				log.Printf("WARN [service.Journal] blob delete failed for %s: %v", a.StorageKey, err)
			}
		}
	}

	if err := s.journalRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
