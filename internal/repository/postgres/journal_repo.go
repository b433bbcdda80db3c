package postgres

import (
	"context"

	"github.com/aki/journal-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *journalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *journalRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := r.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *journalRepository) Update(ctx context.Context, entry *domain.JournalEntry) error {
	res := r.db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Where("id = ? AND user_id = ?", entry.ID, entry.UserID).
		Updates(map[string]interface{}{
			"content":    entry.Content,
			"updated_at": entry.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the entry's attachment rows before the entry itself, in one
// transaction, so no attachment can outlive its parent.
func (r *journalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry domain.JournalEntry
		if err := tx.First(&entry, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		if err := tx.Where("journal_entry_id = ?", id).
			Delete(&domain.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.JournalEntry{}, "id = ?", id).Error
	})
}

func (r *journalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, int64, error) {
	var entries []*domain.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *journalRepository) SearchByUser(ctx context.Context, userID uuid.UUID, query string, limit, offset int) ([]*domain.JournalEntry, int64, error) {
	pattern := "%" + query + "%"

	var entries []*domain.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content LIKE ?", userID, pattern).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Where("user_id = ? AND content LIKE ?", userID, pattern).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
