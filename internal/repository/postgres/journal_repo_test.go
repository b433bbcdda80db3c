package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/repository/postgres"
	"github.com/aki/journal-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestJournalRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewJournalRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	entry := testutil.NewEntryBuilder().WithUser(owner).Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      uuid.UUID
		userID  uuid.UUID
		wantErr bool
	}{
		{
			name:    "owner reads own entry",
			id:      entry.ID,
			userID:  owner.ID,
			wantErr: false,
		},
		{
			name:    "other user gets not found",
			id:      entry.ID,
			userID:  other.ID,
			wantErr: true,
		},
		{
			name:    "unknown id",
			id:      uuid.New(),
			userID:  owner.ID,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id, tt.userID)
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, entry.ID, got.ID)
			assert.Equal(t, entry.Content, got.Content)
		})
	}
}

func TestJournalRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewJournalRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	entry := testutil.NewEntryBuilder().WithUser(owner).WithContent("original").Build(t, testDB.DB)

	// Another user's update affects nothing and reports not found
	stolen := *entry
	stolen.UserID = other.ID
	stolen.Content = "hijacked"
	stolen.UpdatedAt = time.Now()
	err := repo.Update(ctx, &stolen)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, entry.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)

	// The owner's update lands
	entry.Content = "revised"
	entry.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, entry))

	got, err = repo.GetByID(ctx, entry.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Content)
}

func TestJournalRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewJournalRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	entry := testutil.NewEntryBuilder().WithUser(owner).Build(t, testDB.DB)
	testutil.NewAttachment(t, testDB.DB, entry, "attachments/delete-key-1")
	testutil.NewAttachment(t, testDB.DB, entry, "attachments/delete-key-2")

	// Non-owner delete leaves everything in place
	err := repo.Delete(ctx, entry.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	testDB.DB.Model(&domain.JournalEntry{}).Where("id = ?", entry.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// Owner delete removes the entry and its attachment rows together
	require.NoError(t, repo.Delete(ctx, entry.ID, owner.ID))

	testDB.DB.Model(&domain.JournalEntry{}).Where("id = ?", entry.ID).Count(&count)
	assert.EqualValues(t, 0, count)
	testDB.DB.Model(&domain.Attachment{}).Where("journal_entry_id = ?", entry.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestJournalRepository_ListByUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewJournalRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		testutil.NewEntryBuilder().
			WithUser(owner).
			WithContent("entry").
			WithCreatedAt(base.Add(time.Duration(i) * time.Minute)).
			Build(t, testDB.DB)
	}
	testutil.NewEntryBuilder().WithUser(other).Build(t, testDB.DB)

	entries, total, err := repo.ListByUser(ctx, owner.ID, 3, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total, "total counts only the owner's entries")
	require.Len(t, entries, 3)

	// Newest first
	for i := 1; i < len(entries); i++ {
		assert.True(t, !entries[i-1].CreatedAt.Before(entries[i].CreatedAt))
	}

	entries, total, err = repo.ListByUser(ctx, owner.ID, 3, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, entries, 2)
}

func TestJournalRepository_SearchByUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewJournalRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewEntryBuilder().WithUser(owner).WithContent("walked the dog today").Build(t, testDB.DB)
	testutil.NewEntryBuilder().WithUser(owner).WithContent("dogmatic thoughts").Build(t, testDB.DB)
	testutil.NewEntryBuilder().WithUser(owner).WithContent("nothing relevant").Build(t, testDB.DB)
	testutil.NewEntryBuilder().WithUser(other).WithContent("my dog barks").Build(t, testDB.DB)

	entries, total, err := repo.SearchByUser(ctx, owner.ID, "dog", 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "substring match scoped to the owner")
	assert.Len(t, entries, 2)

	entries, total, err = repo.SearchByUser(ctx, owner.ID, "zebra", 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, entries)
}
