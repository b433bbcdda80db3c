package postgres

import (
	"context"

	"github.com/aki/journal-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *attachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	err := r.db.WithContext(ctx).
		Joins("JOIN journal_entries ON journal_entries.id = attachments.journal_entry_id").
		Where("attachments.id = ? AND journal_entries.user_id = ?", id, userID).
		First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Attachment{}, "id = ?", id).Error
}

func (r *attachmentRepository) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	err := r.db.WithContext(ctx).
		Where("journal_entry_id = ?", entryID).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) ListKeysByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&domain.Attachment{}).
		Joins("JOIN journal_entries ON journal_entries.id = attachments.journal_entry_id").
		Where("journal_entries.user_id = ?", userID).
		Pluck("attachments.storage_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
