package postgres

import (
	"context"

	"github.com/aki/journal-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteCascade removes a user and everything that references it. The order
// is children before parents so an aborted run can never leave a surviving
// row pointing at a deleted parent:
//
//  1. attachments of the user's journal entries (subquery on ownership)
//  2. journal entries
//  3. oauth tokens
//  4. sessions
//  5. the user row
//
// Each step is an unconditional delete and safe to re-run; blob cleanup for
// the attachments is the caller's concern and stays outside the transaction.
func (r *userRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entryIDs := tx.Model(&domain.JournalEntry{}).
			Select("id").
			Where("user_id = ?", id)

		if err := tx.Where("journal_entry_id IN (?)", entryIDs).
			Delete(&domain.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).
			Delete(&domain.JournalEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).
			Delete(&domain.OAuthToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).
			Delete(&domain.Session{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&domain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
